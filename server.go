package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"ai-video-pipeline/config"
	"ai-video-pipeline/types"

	"github.com/gin-gonic/gin"
)

// server exposes the pipeline over HTTP so spreadsheet automations and
// schedulers can trigger runs remotely.
type server struct {
	cfg *config.Config
	mu  sync.Mutex

	// run is swapped out in tests
	run func(ctx context.Context, cfg *config.Config, job types.Job) (*types.PipelineState, error)
}

func newServer(cfg *config.Config) *server {
	return &server{cfg: cfg, run: runPipeline}
}

func (s *server) router() *gin.Engine {
	r := gin.Default()
	r.GET("/health", s.handleHealth)
	r.POST("/run", s.handleRun)
	return r
}

func (s *server) listen() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(s.cfg.Server.Port)
	}
	log.Printf("🌐 Trigger server listening on port %s", port)
	return s.router().Run(":" + port)
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ai-video-pipeline",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRun triggers one pipeline run. Only one run may be active at a time;
// concurrent triggers get 429 so schedulers can back off and retry.
func (s *server) handleRun(c *gin.Context) {
	if !s.mu.TryLock() {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"status":  "busy",
			"message": "Pipeline already running",
		})
		return
	}
	defer s.mu.Unlock()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "could not read request body"})
		return
	}

	job, err := parseJob(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	log.Printf("🌐 Trigger received: topic=%q format=%s upload=%t privacy=%s",
		job.Topic, job.Format, job.Upload, job.Privacy)

	if _, err := s.run(c.Request.Context(), s.cfg, job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Pipeline executed successfully",
	})
}

// runRequest is the wire shape of a trigger. Upload stays loosely typed
// because sheet webhooks send it as a bool, a string or not at all.
type runRequest struct {
	Topic   string      `json:"topic"`
	Format  string      `json:"format"`
	Upload  interface{} `json:"upload"`
	Privacy string      `json:"privacy"`
}

// parseJob turns a trigger body into a Job. Bodies arrive either as a single
// object or as a one-element array, and sheet exports prefix values with "=".
func parseJob(data []byte) (types.Job, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return types.Job{}, fmt.Errorf("invalid JSON body")
		}
		if len(list) == 0 {
			return types.Job{}, fmt.Errorf("Empty array received")
		}
		data = list[0]
	}

	var req runRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return types.Job{}, fmt.Errorf("invalid JSON body")
	}

	job := types.Job{
		Topic:   cleanValue(req.Topic),
		Format:  cleanValue(req.Format),
		Privacy: cleanValue(req.Privacy),
		Upload:  coerceUpload(req.Upload),
	}

	if job.Topic == "" {
		return types.Job{}, fmt.Errorf("Topic is required")
	}
	if job.Format == "" {
		job.Format = "video"
	}
	if job.Format != "short" && job.Format != "video" {
		return types.Job{}, fmt.Errorf("Invalid format: %s. Must be 'short' or 'video'", job.Format)
	}
	if job.Privacy == "" {
		job.Privacy = "private"
	}
	return job, nil
}

// cleanValue strips whitespace and the leading "=" some sheet exports prepend
func cleanValue(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "="))
}

func coerceUpload(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(cleanValue(t))
		return s == "true" || s == "yes" || s == "1"
	default:
		return false
	}
}
