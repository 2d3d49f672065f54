package video

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-video-pipeline/config"
)

func TestBuildSegmentArgs(t *testing.T) {
	cfg := config.Default()

	t.Run("static landscape", func(t *testing.T) {
		args := buildSegmentArgs("img.jpg", "seg.mp4", 5.0, cfg.Script.Video, cfg.Video)
		joined := strings.Join(args, " ")
		if !strings.Contains(joined, "scale=1920:1080:force_original_aspect_ratio=increase,crop=1920:1080") {
			t.Errorf("missing cover-crop filter: %s", joined)
		}
		if strings.Contains(joined, "zoompan") {
			t.Error("static segment should not use zoompan")
		}
		if !strings.Contains(joined, "-t 5.000") {
			t.Errorf("missing duration: %s", joined)
		}
		if args[len(args)-1] != "seg.mp4" {
			t.Errorf("output not last arg: %v", args)
		}
	})

	t.Run("static portrait", func(t *testing.T) {
		args := buildSegmentArgs("img.jpg", "seg.mp4", 5.0, cfg.Script.Short, cfg.Video)
		if !strings.Contains(strings.Join(args, " "), "crop=1080:1920") {
			t.Errorf("portrait crop missing: %v", args)
		}
	})

	t.Run("ken burns", func(t *testing.T) {
		v := cfg.Video
		v.KenBurns = true
		args := buildSegmentArgs("img.jpg", "seg.mp4", 5.0, cfg.Script.Video, v)
		joined := strings.Join(args, " ")
		if !strings.Contains(joined, "zoompan=z=") {
			t.Errorf("ken burns segment missing zoompan: %s", joined)
		}
		if !strings.Contains(joined, "scale=3840:2160") {
			t.Errorf("ken burns should upscale before zoompan: %s", joined)
		}
	})
}

func TestBuildBlackArgs(t *testing.T) {
	cfg := config.Default()
	args := buildBlackArgs("seg.mp4", 12.5, cfg.Script.Video, cfg.Video)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "color=c=black:s=1920x1080:d=12.500") {
		t.Errorf("black source wrong: %s", joined)
	}
}

func TestBuildMuxArgs(t *testing.T) {
	args := buildMuxArgs("v.mp4", "a.mp3", "out.mp4")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-c:v copy", "-c:a aac", "-b:a 192k", "-shortest", "-movflags +faststart"} {
		if !strings.Contains(joined, want) {
			t.Errorf("mux args missing %q: %s", want, joined)
		}
	}
}

// stubFFmpeg puts a fake ffmpeg on PATH that writes a byte to its last argument
func stubFFmpeg(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\nfor last; do :; done\nprintf 'x' > \"$last\"\n"
	if err := os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRunProducesFinalVideo(t *testing.T) {
	stubFFmpeg(t)
	dir := t.TempDir()

	var images []string
	for _, name := range []string{"img000.jpg", "img001.jpg"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("jpeg"), 0o644); err != nil {
			t.Fatal(err)
		}
		images = append(images, p)
	}
	audio := filepath.Join(dir, "voice.mp3")
	if err := os.WriteFile(audio, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	out, err := New(cfg).Run(context.Background(), images, audio, 10.0, cfg.Script.Video, dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if filepath.Base(out) != "final.mp4" {
		t.Errorf("output = %s, want final.mp4", out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("final video missing: %v", err)
	}

	list, err := os.ReadFile(filepath.Join(dir, "concat_list.txt"))
	if err != nil {
		t.Fatalf("concat list missing: %v", err)
	}
	if !strings.Contains(string(list), "segment_000.mp4") || !strings.Contains(string(list), "segment_001.mp4") {
		t.Errorf("concat list incomplete: %s", list)
	}
}

func TestRunNoImagesFallsBackToBlack(t *testing.T) {
	stubFFmpeg(t)
	dir := t.TempDir()
	audio := filepath.Join(dir, "voice.mp3")
	if err := os.WriteFile(audio, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	out, err := New(cfg).Run(context.Background(), nil, audio, 8.0, cfg.Script.Video, dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("final video missing: %v", err)
	}
}

func TestRunRejectsZeroDuration(t *testing.T) {
	cfg := config.Default()
	if _, err := New(cfg).Run(context.Background(), nil, "a.mp3", 0, cfg.Script.Video, t.TempDir()); err == nil {
		t.Fatal("Run() expected error for zero duration")
	}
}
