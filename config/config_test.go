package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
script:
  gemini_model: gemini-2.5-flash
voice:
  voice: en-US-AriaNeural
server:
  port: 8090
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Voice.Voice != "en-US-AriaNeural" {
		t.Errorf("Voice.Voice = %q, want value from file", cfg.Voice.Voice)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Scenes.Count != 6 {
		t.Errorf("Scenes.Count default = %d, want 6", cfg.Scenes.Count)
	}
	if cfg.Video.FPS != 24 {
		t.Errorf("Video.FPS default = %d, want 24", cfg.Video.FPS)
	}
	if cfg.Visuals.FallbackQuery != "nature landscape" {
		t.Errorf("Visuals.FallbackQuery default = %q", cfg.Visuals.FallbackQuery)
	}
	if cfg.Metadata.CategoryID != "22" {
		t.Errorf("Metadata.CategoryID default = %q, want 22", cfg.Metadata.CategoryID)
	}
	if cfg.Script.Short.Orientation != "portrait" || cfg.Script.Video.Orientation != "landscape" {
		t.Errorf("format profile defaults wrong: short=%q video=%q",
			cfg.Script.Short.Orientation, cfg.Script.Video.Orientation)
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("script: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for malformed yaml, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"zero width", func(c *Config) { c.Script.Video.Width = -1 }, true},
		{"inverted duration range", func(c *Config) { c.Script.Short.MaxSeconds = 10 }, true},
		{"unknown orientation", func(c *Config) { c.Script.Video.Orientation = "square" }, true},
		{"negative scene count", func(c *Config) { c.Scenes.Count = -3 }, true},
		{"zero fps", func(c *Config) { c.Video.FPS = -1 }, true},
		{"crf too high", func(c *Config) { c.Video.CRF = 99 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatProfile(t *testing.T) {
	cfg := Default()
	tests := []struct {
		name        string
		format      string
		wantErr     bool
		orientation string
	}{
		{"short", "short", false, "portrait"},
		{"video", "video", false, "landscape"},
		{"empty defaults to video", "", false, "landscape"},
		{"unknown", "square", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cfg.FormatProfile(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatProfile(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err == nil && p.Orientation != tt.orientation {
				t.Errorf("FormatProfile(%q).Orientation = %q, want %q", tt.format, p.Orientation, tt.orientation)
			}
		})
	}
}
