package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-video-pipeline/02_script"
	"ai-video-pipeline/03_scenes"
	"ai-video-pipeline/04_metadata"
	"ai-video-pipeline/05_voice"
	"ai-video-pipeline/06_visuals"
	"ai-video-pipeline/07_video"
	"ai-video-pipeline/08_subtitles"
	"ai-video-pipeline/09_thumbnail"
	"ai-video-pipeline/10_upload"
	"ai-video-pipeline/11_cleanup"
	"ai-video-pipeline/config"
	"ai-video-pipeline/types"

	"github.com/google/uuid"
)

// runPipeline executes every stage for one job and returns the final state.
// Hard stages stop the run; subtitle, thumbnail and upload problems are
// recorded as warnings and the run completes with what it has.
func runPipeline(ctx context.Context, cfg *config.Config, job types.Job) (*types.PipelineState, error) {
	if strings.TrimSpace(job.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if job.Format == "" {
		job.Format = "video"
	}
	profile, err := cfg.FormatProfile(job.Format)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()[:8]
	runDir := filepath.Join(cfg.Paths.Output, fmt.Sprintf("run_%s_%s", time.Now().Format("20060102"), runID))
	audioDir := filepath.Join(runDir, "audio")
	imagesDir := filepath.Join(runDir, "images")
	videoDir := filepath.Join(runDir, "video")
	for _, dir := range []string{runDir, audioDir, imagesDir, videoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create run dir: %w", err)
		}
	}

	log.Printf("🎬 Pipeline starting (run %s)", runID)
	log.Printf("📁 Output dir: %s", runDir)
	log.Printf("📝 Topic: %q (format: %s, upload: %t)", job.Topic, job.Format, job.Upload)

	state := &types.PipelineState{
		RunID:     runID,
		Topic:     job.Topic,
		Format:    job.Format,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}

	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveState(state, runDir)
	}()

	fail := func(stage string, err error) (*types.PipelineState, error) {
		state.Error = fmt.Sprintf("%s: %v", stage, err)
		log.Printf("❌ %s", state.Error)
		return state, fmt.Errorf("%s: %w", stage, err)
	}
	warn := func(msg string) {
		log.Printf("⚠️  %s", msg)
		state.Warn(msg)
	}

	// ─────────────────────────────────────────────
	// STAGE 1: Script Writing
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 1: Script Writing ━━━")
	writer := script.New(cfg)
	scriptText, err := writer.Run(ctx, job.Topic, profile)
	if err != nil {
		return fail("Stage 1 Script", err)
	}
	scriptFile := filepath.Join(runDir, "script.txt")
	if err := os.WriteFile(scriptFile, []byte(scriptText), 0644); err != nil {
		return fail("Stage 1 Script", err)
	}
	state.ScriptFile = scriptFile
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 2: Scene Planning
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 2: Scene Planning ━━━")
	splitter := scenes.New(cfg)
	sceneList, err := splitter.Run(ctx, scriptText)
	if err != nil {
		return fail("Stage 2 Scenes", err)
	}
	state.Scenes = sceneList

	keywords, err := splitter.Keywords(ctx, job.Topic, scriptText)
	if err != nil {
		warn(fmt.Sprintf("keyword extraction failed: %v", err))
	} else {
		state.Keywords = keywords
	}
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 3: Metadata Generation
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 3: Metadata Generation ━━━")
	metaGen := metadata.New(cfg)
	meta, err := metaGen.Run(ctx, job.Topic, scriptText)
	if err != nil {
		warn(fmt.Sprintf("metadata generation failed: %v", err))
		meta = &types.VideoMetadata{
			Title:         job.Topic,
			Description:   job.Topic,
			CategoryID:    cfg.Metadata.CategoryID,
			PrivacyStatus: cfg.Metadata.DefaultPrivacy,
		}
	}
	if job.Privacy != "" {
		meta.PrivacyStatus = job.Privacy
	}
	state.Metadata = meta
	saveJSON(filepath.Join(runDir, "metadata.json"), meta)
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 4: Voiceover
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 4: Voiceover ━━━")
	voiceGen := voice.New(cfg)
	audioFile := filepath.Join(audioDir, "voice.mp3")
	if err := voiceGen.Run(ctx, scriptText, audioFile); err != nil {
		return fail("Stage 4 Voice", err)
	}
	duration, err := voice.Duration(audioFile)
	if err != nil {
		return fail("Stage 4 Voice", err)
	}
	state.AudioFile = audioFile
	state.AudioDurationSec = duration
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 5: Visuals
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 5: Visuals ━━━")
	fetcher := visuals.New(cfg)
	images, err := fetcher.FetchForScenes(ctx, sceneList, imagesDir, profile.Orientation)
	if err != nil {
		warn(fmt.Sprintf("scene visuals failed: %v", err))
		images = nil
	}
	if len(images) == 0 && len(state.Keywords) > 0 {
		log.Println("[pipeline] No scene images; retrying with keywords")
		images, err = fetcher.FetchForKeywords(ctx, state.Keywords, imagesDir, profile.Orientation)
		if err != nil {
			warn(fmt.Sprintf("keyword visuals failed: %v", err))
			images = nil
		}
	}
	if len(images) == 0 {
		log.Println("[pipeline] No keyword images; retrying with the topic itself")
		images, err = fetcher.Fetch(ctx, job.Topic, cfg.Scenes.Count, imagesDir, profile.Orientation)
		if err != nil {
			warn(fmt.Sprintf("topic visuals failed: %v", err))
			images = nil
		}
	}
	if len(images) == 0 {
		warn("no images found; video will use a black background")
	}
	state.ImageFiles = images
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 6: Video Composition
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 6: Video Composition ━━━")
	composer := video.New(cfg)
	composed, err := composer.Run(ctx, images, audioFile, duration, profile, videoDir)
	if err != nil {
		return fail("Stage 6 Compose", err)
	}
	state.VideoFile = composed
	state.FinalVideoFile = composed
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 7: Subtitles
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 7: Subtitles ━━━")
	subGen := subtitles.New(cfg)
	srtFile, err := subGen.Run(ctx, audioFile, videoDir)
	if err != nil {
		warn(fmt.Sprintf("subtitle generation failed: %v", err))
	} else {
		state.SubtitleFile = srtFile
		burned, err := subGen.BurnIntoVideo(ctx, composed, srtFile, videoDir)
		if err != nil {
			warn(fmt.Sprintf("subtitle burn failed: %v", err))
		} else {
			state.FinalVideoFile = burned
		}
	}
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 8: Thumbnail
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 8: Thumbnail ━━━")
	if len(images) > 0 {
		creator := thumbnail.New(cfg)
		thumbFile, err := creator.Run(ctx, images[0], meta.Title, videoDir)
		if err != nil {
			warn(fmt.Sprintf("thumbnail failed: %v", err))
		} else {
			state.ThumbnailFile = thumbFile
		}
	} else {
		warn("no images available for a thumbnail")
	}
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 9: YouTube Upload
	// ─────────────────────────────────────────────
	if job.Upload {
		log.Println("\n━━━ STAGE 9: YouTube Upload ━━━")
		uploader := upload.New(cfg)
		videoID, videoURL, err := uploader.Run(ctx, state.FinalVideoFile, meta)
		if err != nil {
			warn(fmt.Sprintf("upload failed: %v", err))
		} else {
			state.YouTubeID = videoID
			state.YouTubeURL = videoURL
			if state.ThumbnailFile != "" {
				if err := uploader.SetThumbnail(ctx, videoID, state.ThumbnailFile); err != nil {
					warn(fmt.Sprintf("thumbnail upload failed: %v", err))
				}
			}
		}
	} else {
		log.Println("\n━━━ STAGE 9: YouTube Upload (skipped) ━━━")
	}
	saveState(state, runDir)

	// ─────────────────────────────────────────────
	// STAGE 10: Cleanup
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 10: Cleanup ━━━")
	removed := cleanup.New().Run(state, runDir)
	state.ImageFiles = nil
	state.AudioFile = ""
	state.SubtitleFile = ""
	if state.VideoFile != state.FinalVideoFile {
		state.VideoFile = ""
	}
	log.Printf("[pipeline] Cleanup removed %d intermediates", len(removed))

	log.Printf("\n✅ Pipeline complete! Final video: %s", state.FinalVideoFile)
	if state.YouTubeURL != "" {
		log.Printf("📺 Watch: %s", state.YouTubeURL)
	}
	for _, warning := range state.Warnings {
		log.Printf("⚠️  %s", warning)
	}
	return state, nil
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func saveState(state *types.PipelineState, dir string) {
	saveJSON(filepath.Join(dir, "state.json"), state)
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
