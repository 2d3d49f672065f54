package thumbnail

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ai-video-pipeline/config"
)

func TestWrapTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		max   int
		want  []string
	}{
		{
			"single line",
			"Deep Sea Secrets",
			25,
			[]string{"DEEP SEA SECRETS"},
		},
		{
			"wraps at limit",
			"The Hidden Life of Giant Pacific Octopuses",
			25,
			[]string{"THE HIDDEN LIFE OF GIANT", "PACIFIC OCTOPUSES"},
		},
		{
			"long single word kept whole",
			"Supercalifragilisticexpialidocious",
			10,
			[]string{"SUPERCALIFRAGILISTICEXPIALIDOCIOUS"},
		},
		{
			"empty title",
			"",
			25,
			[]string{""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapTitle(tt.title, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapTitle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFilter(t *testing.T) {
	cfg := config.Default()
	filter := buildFilter("Two Line Title That Wraps Around Here", cfg.Thumbnail)

	if !strings.Contains(filter, "scale=1280:720:force_original_aspect_ratio=increase,crop=1280:720") {
		t.Errorf("cover-crop missing: %s", filter)
	}
	if !strings.Contains(filter, "drawbox=x=0:y=0:w=iw:h=ih:color=black@0.55:t=fill") {
		t.Errorf("dark overlay missing: %s", filter)
	}
	if strings.Count(filter, "drawtext=") != 2 {
		t.Errorf("want 2 drawtext lines, got filter: %s", filter)
	}
	if !strings.Contains(filter, "shadowx=3:shadowy=3") {
		t.Errorf("shadow missing: %s", filter)
	}
	if !strings.Contains(filter, "x=(w-text_w)/2") {
		t.Errorf("centering missing: %s", filter)
	}
}

func TestEscapeDrawText(t *testing.T) {
	got := escapeDrawText(`IT'S 100%: TRUE`)
	want := `IT\'S 100\%\: TRUE`
	if got != want {
		t.Errorf("escapeDrawText() = %q, want %q", got, want)
	}
}

func TestRunMissingImage(t *testing.T) {
	c := New(config.Default())
	if _, err := c.Run(context.Background(), "/nonexistent/img.jpg", "Title", t.TempDir()); err == nil {
		t.Fatal("Run() expected error for missing background image")
	}
}

func TestRunWritesThumbnail(t *testing.T) {
	bin := t.TempDir()
	script := "#!/bin/sh\nfor last; do :; done\nprintf 'jpg' > \"$last\"\n"
	if err := os.WriteFile(filepath.Join(bin, "ffmpeg"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	dir := t.TempDir()
	img := filepath.Join(dir, "img000.jpg")
	if err := os.WriteFile(img, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := New(config.Default()).Run(context.Background(), img, "My Title", dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if filepath.Base(out) != "thumbnail.jpg" {
		t.Errorf("out = %s, want thumbnail.jpg", out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("thumbnail missing: %v", err)
	}
}
