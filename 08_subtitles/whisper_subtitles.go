package subtitles

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ai-video-pipeline/config"
)

// Generator handles subtitle generation and burning
type Generator struct {
	cfg *config.Config
}

// New creates a new subtitle Generator
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Run transcribes the voiceover with Whisper and produces an SRT file
func (g *Generator) Run(ctx context.Context, audioFile, outputDir string) (string, error) {
	log.Println("[subtitles] Running Whisper transcription...")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx,
		"whisper",
		audioFile,
		"--model", g.cfg.Subtitles.WhisperModel,
		"--output_format", "srt",
		"--output_dir", outputDir,
		"--language", g.cfg.Subtitles.Language,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper failed: %w", err)
	}

	// Whisper names its output after the input file
	base := strings.TrimSuffix(filepath.Base(audioFile), filepath.Ext(audioFile))
	whisperOut := filepath.Join(outputDir, base+".srt")

	srtFile := filepath.Join(outputDir, "subtitles.srt")
	if _, err := os.Stat(whisperOut); err != nil {
		return "", fmt.Errorf("expected SRT not found: %s", whisperOut)
	}
	if whisperOut != srtFile {
		if err := os.Rename(whisperOut, srtFile); err != nil {
			srtFile = whisperOut // use the whisper path directly
		}
	}

	if err := ValidateSRT(srtFile); err != nil {
		return "", err
	}

	log.Printf("[subtitles] ✅ SRT generated: %s", srtFile)
	return srtFile, nil
}

// BurnIntoVideo renders the subtitles into the video frames
func (g *Generator) BurnIntoVideo(ctx context.Context, videoFile, srtFile, outputDir string) (string, error) {
	log.Println("[subtitles] Burning subtitles into video...")

	outFile := filepath.Join(outputDir, "final_subtitled.mp4")

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoFile,
		"-vf", buildBurnFilter(srtFile, g.cfg.Subtitles),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "20",
		"-c:a", "copy",
		outFile,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg subtitle burn: %w", err)
	}

	log.Printf("[subtitles] ✅ Subtitles burned: %s", outFile)
	return outFile, nil
}

// buildBurnFilter styles the burned subtitles: white text, black outline
func buildBurnFilter(srtFile string, cfg config.SubtitlesConfig) string {
	return fmt.Sprintf(
		"subtitles='%s':force_style='FontSize=%d,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,Outline=%d'",
		escapeSubtitlePath(srtFile),
		cfg.FontSize,
		cfg.Outline,
	)
}

// ValidateSRT checks that the SRT file is non-empty and carries timing lines
func ValidateSRT(srtFile string) error {
	f, err := os.Open(srtFile)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineCount := 0
	hasTiming := false
	for scanner.Scan() {
		lineCount++
		if strings.Contains(scanner.Text(), "-->") {
			hasTiming = true
		}
	}

	if lineCount < 4 || !hasTiming {
		return fmt.Errorf("SRT file appears empty or malformed (%d lines)", lineCount)
	}
	return nil
}

func escapeSubtitlePath(path string) string {
	// The subtitles filter needs forward slashes and escaped colons
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	return path
}
