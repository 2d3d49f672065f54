package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-video-pipeline/01_topics"
	"ai-video-pipeline/config"
	"ai-video-pipeline/types"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; deployments set real env vars
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		format     = flag.String("format", "video", "output format: short or video")
		doUpload   = flag.Bool("upload", false, "upload the finished video to YouTube")
		privacy    = flag.String("privacy", "", "YouTube privacy status (overrides config default)")
		suggest    = flag.Bool("suggest", false, "print trending topic suggestions and exit")
		serve      = flag.Bool("serve", false, "run the HTTP trigger server")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.Output, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	ctx := context.Background()

	if *suggest {
		suggester, err := topics.New(cfg)
		if err != nil {
			log.Fatalf("Topic suggester: %v", err)
		}
		list, err := suggester.Run(ctx, cfg.Topics.Suggest)
		if err != nil {
			log.Fatalf("Topic suggestions: %v", err)
		}
		fmt.Println("Trending topic suggestions:")
		for i, topic := range list {
			fmt.Printf("  %d. %s\n", i+1, topic)
		}
		return
	}

	if *serve {
		if err := newServer(cfg).listen(); err != nil {
			log.Fatalf("Server: %v", err)
		}
		return
	}

	topic := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if topic == "" {
		fmt.Fprintln(os.Stderr, "Usage: ai-video-pipeline [flags] <topic>")
		fmt.Fprintln(os.Stderr, "       ai-video-pipeline -suggest")
		fmt.Fprintln(os.Stderr, "       ai-video-pipeline -serve")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
		os.Exit(2)
	}

	job := types.Job{
		Topic:   topic,
		Format:  *format,
		Upload:  *doUpload,
		Privacy: *privacy,
	}
	if _, err := runPipeline(ctx, cfg, job); err != nil {
		log.Fatalf("❌ Pipeline failed: %v", err)
	}
}
