package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"ai-video-pipeline/config"
	"ai-video-pipeline/types"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// Generator creates YouTube metadata via Gemini
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

// New creates a new metadata Generator. GEMINI_API_BASE overrides the
// endpoint for proxies and gateways.
func New(cfg *config.Config) *Generator {
	baseURL := os.Getenv("GEMINI_API_BASE")
	if baseURL == "" {
		baseURL = geminiEndpoint
	}
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// Run generates title, description and tags for the video
func (g *Generator) Run(ctx context.Context, topic, scriptText string) (*types.VideoMetadata, error) {
	log.Println("[metadata] Generating YouTube metadata via Gemini...")

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	prompt := buildMetadataPrompt(topic, scriptText, g.cfg)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	bodyBytes, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.cfg.Metadata.GeminiModel, apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBytes, &geminiResp); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if geminiResp.Error != nil {
		return nil, fmt.Errorf("gemini error %d: %s", geminiResp.Error.Code, geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	raw := geminiResp.Candidates[0].Content.Parts[0].Text
	meta := parseMetadata(raw, topic, g.cfg.Metadata.TitleMaxChars, g.cfg.Metadata.TagsCount)
	meta.CategoryID = g.cfg.Metadata.CategoryID
	meta.PrivacyStatus = g.cfg.Metadata.DefaultPrivacy

	log.Printf("[metadata] ✅ Title: %q", meta.Title)
	log.Printf("[metadata] Tags: %d generated", len(meta.Tags))
	return meta, nil
}

func buildMetadataPrompt(topic, scriptText string, cfg *config.Config) string {
	excerpt := scriptText
	if runes := []rune(excerpt); len(runes) > 500 {
		excerpt = string(runes[:500])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("For a YouTube video about '%s' with this script:\n\n%s\n\n", topic, excerpt))
	sb.WriteString("Generate:\n")
	sb.WriteString(fmt.Sprintf("1. A catchy YouTube title (max %d chars)\n", cfg.Metadata.TitleMaxChars))
	sb.WriteString("2. A YouTube description (2-3 sentences + relevant hashtags)\n")
	sb.WriteString(fmt.Sprintf("3. %d comma-separated tags\n\n", cfg.Metadata.TagsCount))
	sb.WriteString("Format your response EXACTLY like this:\n")
	sb.WriteString("TITLE: <title>\n")
	sb.WriteString("DESCRIPTION: <description>\n")
	sb.WriteString("TAGS: <tag1>, <tag2>, ...")
	return sb.String()
}

// parseMetadata reads TITLE:/DESCRIPTION:/TAGS: lines from the model output.
// Anything the model failed to provide falls back to topic-derived values.
func parseMetadata(raw, topic string, titleMax, tagsMax int) *types.VideoMetadata {
	meta := &types.VideoMetadata{Title: topic}

	for _, line := range strings.Split(raw, "\n") {
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "TITLE:"):
			if v := strings.TrimSpace(line[len("TITLE:"):]); v != "" {
				meta.Title = v
			}
		case strings.HasPrefix(upper, "DESCRIPTION:"):
			meta.Description = strings.TrimSpace(line[len("DESCRIPTION:"):])
		case strings.HasPrefix(upper, "TAGS:"):
			for _, tag := range strings.Split(line[len("TAGS:"):], ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					meta.Tags = append(meta.Tags, tag)
				}
			}
		}
	}

	meta.Title = truncate(meta.Title, titleMax)
	if len(meta.Tags) > tagsMax {
		meta.Tags = meta.Tags[:tagsMax]
	}
	return meta
}

// truncate caps a string at n characters, appending an ellipsis when cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
