package thumbnail

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ai-video-pipeline/config"
)

// Creator renders the YouTube thumbnail from the first downloaded visual
type Creator struct {
	cfg *config.Config
}

// New creates a new thumbnail Creator
func New(cfg *config.Config) *Creator {
	return &Creator{cfg: cfg}
}

// Run renders the thumbnail: background image scaled to cover, a dark
// overlay for contrast, and the title drawn centered in bold with a shadow
func (c *Creator) Run(ctx context.Context, imagePath, title, outputDir string) (string, error) {
	log.Println("[thumbnail] Creating thumbnail...")

	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("background image not found: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	outFile := filepath.Join(outputDir, "thumbnail.jpg")

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", imagePath,
		"-vf", buildFilter(title, c.cfg.Thumbnail),
		"-frames:v", "1",
		"-q:v", "2",
		outFile,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg thumbnail: %w", err)
	}

	log.Printf("[thumbnail] ✅ Saved → %s", outFile)
	return outFile, nil
}

// buildFilter assembles the scale/overlay/text filter chain
func buildFilter(title string, cfg config.ThumbnailConfig) string {
	parts := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
			cfg.Width, cfg.Height, cfg.Width, cfg.Height),
		"drawbox=x=0:y=0:w=iw:h=ih:color=black@0.55:t=fill",
	}

	lines := wrapTitle(title, cfg.MaxCharsPerLine)
	totalHeight := len(lines)*cfg.FontSize + (len(lines)-1)*cfg.LineSpacing
	yStart := (cfg.Height - totalHeight) / 2

	for i, line := range lines {
		y := yStart + i*(cfg.FontSize+cfg.LineSpacing)
		parts = append(parts, fmt.Sprintf(
			"drawtext=fontfile='%s':text='%s':fontcolor=white:fontsize=%d:shadowcolor=black:shadowx=3:shadowy=3:x=(w-text_w)/2:y=%d",
			cfg.FontFile, escapeDrawText(line), cfg.FontSize, y,
		))
	}

	return strings.Join(parts, ",")
}

// wrapTitle uppercases the title and greedily wraps it to maxChars per line
func wrapTitle(title string, maxChars int) []string {
	words := strings.Fields(strings.ToUpper(title))
	var lines []string
	current := ""
	for _, word := range words {
		candidate := strings.TrimSpace(current + " " + word)
		if len([]rune(candidate)) <= maxChars {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func escapeDrawText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	s = strings.ReplaceAll(s, ":", `\:`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return s
}
