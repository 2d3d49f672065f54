package voice

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ai-video-pipeline/config"
)

// Generator handles TTS voiceover generation
type Generator struct {
	cfg *config.Config
}

// New creates a new Generator
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Run synthesizes the narration to an audio file.
// The engine comes from TTS_COMMAND in the environment, accepting
//
//	--text "..." --output path/to/file.mp3
//
// and falls back to edge-tts (free Microsoft TTS) when unset.
func (g *Generator) Run(ctx context.Context, text, outFile string) error {
	log.Println("[voice] Generating voiceover...")

	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}

	engine := strings.TrimSpace(os.Getenv("TTS_COMMAND"))
	if engine == "" {
		if _, err := exec.LookPath("edge-tts"); err == nil {
			engine = "edge-tts"
		} else {
			return fmt.Errorf("no TTS engine found. Set TTS_COMMAND in .env or install edge-tts: pip install edge-tts")
		}
	}

	bin, args := ttsArgs(engine, g.cfg.Voice.Voice, text, outFile)

	var err error
	for attempt := 1; attempt <= g.cfg.Voice.MaxAttempts; attempt++ {
		cmd := exec.CommandContext(ctx, bin, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err = cmd.Run(); err == nil {
			break
		}
		log.Printf("[voice] ⚠️ TTS attempt %d failed: %v", attempt, err)
		if attempt < g.cfg.Voice.MaxAttempts {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	if err != nil {
		return fmt.Errorf("tts failed after %d attempts: %w", g.cfg.Voice.MaxAttempts, err)
	}

	info, err := os.Stat(outFile)
	if err != nil {
		return fmt.Errorf("tts produced no output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("tts produced an empty file: %s", outFile)
	}

	log.Printf("[voice] ✅ Saved voiceover → %s (%d bytes)", outFile, info.Size())
	return nil
}

// ttsArgs maps a TTS engine to its invocation
func ttsArgs(engine, voiceName, text, outFile string) (string, []string) {
	switch {
	case engine == "edge-tts":
		return "edge-tts", []string{
			"--voice", voiceName,
			"--text", text,
			"--write-media", outFile,
		}
	case strings.HasSuffix(engine, ".py"):
		return "python3", []string{engine, "--text", text, "--output", outFile}
	default:
		return engine, []string{"--text", text, "--output", outFile}
	}
}

// Duration uses ffprobe to measure an audio file's length in seconds
func Duration(audioFile string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioFile,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", audioFile, err)
	}
	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return dur, nil
}
