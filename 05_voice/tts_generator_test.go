package voice

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ai-video-pipeline/config"
)

func TestTTSArgs(t *testing.T) {
	tests := []struct {
		name     string
		engine   string
		wantBin  string
		wantArgs []string
	}{
		{
			"edge-tts",
			"edge-tts",
			"edge-tts",
			[]string{"--voice", "en-IN-NeerjaNeural", "--text", "hello", "--write-media", "out.mp3"},
		},
		{
			"python script",
			"tools/say.py",
			"python3",
			[]string{"tools/say.py", "--text", "hello", "--output", "out.mp3"},
		},
		{
			"custom binary",
			"/usr/local/bin/mytts",
			"/usr/local/bin/mytts",
			[]string{"--text", "hello", "--output", "out.mp3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, args := ttsArgs(tt.engine, "en-IN-NeerjaNeural", "hello", "out.mp3")
			if bin != tt.wantBin {
				t.Errorf("bin = %q, want %q", bin, tt.wantBin)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %q, want %q", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func writeStub(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-tts")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWithStubEngine(t *testing.T) {
	dir := t.TempDir()
	// Custom engines receive --text <t> --output <o>, so $4 is the output path.
	stub := writeStub(t, dir, `printf 'audio-bytes' > "$4"`)
	t.Setenv("TTS_COMMAND", stub)

	cfg := config.Default()
	out := filepath.Join(dir, "audio", "voice.mp3")
	if err := New(cfg).Run(context.Background(), "hello world", out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("output file is empty")
	}
}

func TestRunFailingEngine(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, `exit 1`)
	t.Setenv("TTS_COMMAND", stub)

	cfg := config.Default()
	cfg.Voice.MaxAttempts = 1
	err := New(cfg).Run(context.Background(), "hello", filepath.Join(dir, "voice.mp3"))
	if err == nil {
		t.Fatal("Run() expected error from failing engine")
	}
}

func TestRunEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, `: > "$4"`)
	t.Setenv("TTS_COMMAND", stub)

	cfg := config.Default()
	cfg.Voice.MaxAttempts = 1
	err := New(cfg).Run(context.Background(), "hello", filepath.Join(dir, "voice.mp3"))
	if err == nil {
		t.Fatal("Run() expected error for empty output file")
	}
}
