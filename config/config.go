package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Script    ScriptConfig    `yaml:"script"`
	Scenes    ScenesConfig    `yaml:"scenes"`
	Metadata  MetadataConfig  `yaml:"metadata"`
	Voice     VoiceConfig     `yaml:"voice"`
	Visuals   VisualsConfig   `yaml:"visuals"`
	Video     VideoConfig     `yaml:"video"`
	Subtitles SubtitlesConfig `yaml:"subtitles"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Upload    UploadConfig    `yaml:"upload"`
	Server    ServerConfig    `yaml:"server"`
	Topics    TopicsConfig    `yaml:"topics"`
	Paths     PathsConfig     `yaml:"paths"`
}

// FormatProfile describes one output format (script length + geometry)
type FormatProfile struct {
	MinSeconds  int    `yaml:"min_seconds"`
	MaxSeconds  int    `yaml:"max_seconds"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Orientation string `yaml:"orientation"` // portrait | landscape
}

type ScriptConfig struct {
	GeminiModel string        `yaml:"gemini_model"`
	TimeoutSec  int           `yaml:"timeout_sec"`
	Short       FormatProfile `yaml:"short"`
	Video       FormatProfile `yaml:"video"`
}

type ScenesConfig struct {
	Count        int `yaml:"count"`
	KeywordCount int `yaml:"keyword_count"`
}

type MetadataConfig struct {
	GeminiModel    string `yaml:"gemini_model"`
	TitleMaxChars  int    `yaml:"title_max_chars"`
	TagsCount      int    `yaml:"tags_count"`
	CategoryID     string `yaml:"youtube_category_id"`
	DefaultPrivacy string `yaml:"default_privacy"`
}

type VoiceConfig struct {
	Voice       string `yaml:"voice"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type VisualsConfig struct {
	PerPage       int    `yaml:"per_page"`
	FallbackQuery string `yaml:"fallback_query"`
	TimeoutSec    int    `yaml:"timeout_sec"`
}

type VideoConfig struct {
	FPS                int     `yaml:"fps"`
	CRF                int     `yaml:"crf"`
	Preset             string  `yaml:"preset"`
	KenBurns           bool    `yaml:"ken_burns"`
	KenBurnsZoomFactor float64 `yaml:"ken_burns_zoom_factor"`
}

type SubtitlesConfig struct {
	WhisperModel string `yaml:"whisper_model"`
	Language     string `yaml:"language"`
	FontSize     int    `yaml:"font_size"`
	Outline      int    `yaml:"outline"`
}

type ThumbnailConfig struct {
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	FontFile        string `yaml:"font_file"`
	FontSize        int    `yaml:"font_size"`
	MaxCharsPerLine int    `yaml:"max_chars_per_line"`
	LineSpacing     int    `yaml:"line_spacing"`
}

type UploadConfig struct {
	ChunkSizeKB int  `yaml:"chunk_size_kb"`
	MadeForKids bool `yaml:"made_for_kids"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type TopicsConfig struct {
	Subreddits []string `yaml:"subreddits"`
	Limit      int      `yaml:"limit"`
	MinScore   int      `yaml:"min_score"`
	Suggest    int      `yaml:"suggest"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
}

// Load reads a YAML config file, fills defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with every default applied, no file needed
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Script.GeminiModel == "" {
		c.Script.GeminiModel = "gemini-2.5-flash"
	}
	if c.Script.TimeoutSec == 0 {
		c.Script.TimeoutSec = 60
	}
	if c.Script.Short.MinSeconds == 0 {
		c.Script.Short = FormatProfile{MinSeconds: 30, MaxSeconds: 45, Width: 1080, Height: 1920, Orientation: "portrait"}
	}
	if c.Script.Video.MinSeconds == 0 {
		c.Script.Video = FormatProfile{MinSeconds: 60, MaxSeconds: 90, Width: 1920, Height: 1080, Orientation: "landscape"}
	}
	if c.Scenes.Count == 0 {
		c.Scenes.Count = 6
	}
	if c.Scenes.KeywordCount == 0 {
		c.Scenes.KeywordCount = 6
	}
	if c.Metadata.GeminiModel == "" {
		c.Metadata.GeminiModel = c.Script.GeminiModel
	}
	if c.Metadata.TitleMaxChars == 0 {
		c.Metadata.TitleMaxChars = 70
	}
	if c.Metadata.TagsCount == 0 {
		c.Metadata.TagsCount = 8
	}
	if c.Metadata.CategoryID == "" {
		c.Metadata.CategoryID = "22" // People & Blogs
	}
	if c.Metadata.DefaultPrivacy == "" {
		c.Metadata.DefaultPrivacy = "private"
	}
	if c.Voice.Voice == "" {
		c.Voice.Voice = "en-IN-NeerjaNeural"
	}
	if c.Voice.MaxAttempts == 0 {
		c.Voice.MaxAttempts = 3
	}
	if c.Visuals.PerPage == 0 {
		c.Visuals.PerPage = 6
	}
	if c.Visuals.FallbackQuery == "" {
		c.Visuals.FallbackQuery = "nature landscape"
	}
	if c.Visuals.TimeoutSec == 0 {
		c.Visuals.TimeoutSec = 30
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 24
	}
	if c.Video.CRF == 0 {
		c.Video.CRF = 22
	}
	if c.Video.Preset == "" {
		c.Video.Preset = "fast"
	}
	if c.Video.KenBurnsZoomFactor == 0 {
		c.Video.KenBurnsZoomFactor = 1.15
	}
	if c.Subtitles.WhisperModel == "" {
		c.Subtitles.WhisperModel = "tiny"
	}
	if c.Subtitles.Language == "" {
		c.Subtitles.Language = "en"
	}
	if c.Subtitles.FontSize == 0 {
		c.Subtitles.FontSize = 24
	}
	if c.Subtitles.Outline == 0 {
		c.Subtitles.Outline = 2
	}
	if c.Thumbnail.Width == 0 {
		c.Thumbnail.Width = 1280
	}
	if c.Thumbnail.Height == 0 {
		c.Thumbnail.Height = 720
	}
	if c.Thumbnail.FontFile == "" {
		c.Thumbnail.FontFile = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	}
	if c.Thumbnail.FontSize == 0 {
		c.Thumbnail.FontSize = 72
	}
	if c.Thumbnail.MaxCharsPerLine == 0 {
		c.Thumbnail.MaxCharsPerLine = 25
	}
	if c.Thumbnail.LineSpacing == 0 {
		c.Thumbnail.LineSpacing = 15
	}
	if c.Upload.ChunkSizeKB == 0 {
		c.Upload.ChunkSizeKB = 256
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if len(c.Topics.Subreddits) == 0 {
		c.Topics.Subreddits = []string{"todayilearned", "interestingasfuck", "Damnthatsinteresting"}
	}
	if c.Topics.Limit == 0 {
		c.Topics.Limit = 25
	}
	if c.Topics.MinScore == 0 {
		c.Topics.MinScore = 500
	}
	if c.Topics.Suggest == 0 {
		c.Topics.Suggest = 5
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
}

// Validate rejects values the pipeline cannot work with
func (c *Config) Validate() error {
	for _, p := range []struct {
		name    string
		profile FormatProfile
	}{
		{"short", c.Script.Short},
		{"video", c.Script.Video},
	} {
		if p.profile.Width <= 0 || p.profile.Height <= 0 {
			return fmt.Errorf("config: format %q has invalid dimensions %dx%d", p.name, p.profile.Width, p.profile.Height)
		}
		if p.profile.MinSeconds <= 0 || p.profile.MaxSeconds < p.profile.MinSeconds {
			return fmt.Errorf("config: format %q has invalid duration range %d-%d", p.name, p.profile.MinSeconds, p.profile.MaxSeconds)
		}
		if p.profile.Orientation != "portrait" && p.profile.Orientation != "landscape" {
			return fmt.Errorf("config: format %q has unknown orientation %q", p.name, p.profile.Orientation)
		}
	}
	if c.Scenes.Count <= 0 {
		return fmt.Errorf("config: scenes.count must be positive, got %d", c.Scenes.Count)
	}
	if c.Video.FPS <= 0 {
		return fmt.Errorf("config: video.fps must be positive, got %d", c.Video.FPS)
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return fmt.Errorf("config: video.crf out of range 0-51, got %d", c.Video.CRF)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port out of range, got %d", c.Server.Port)
	}
	return nil
}

// FormatProfile resolves a job format name to its profile
func (c *Config) FormatProfile(name string) (FormatProfile, error) {
	switch name {
	case "short":
		return c.Script.Short, nil
	case "video", "":
		return c.Script.Video, nil
	default:
		return FormatProfile{}, fmt.Errorf("unknown format %q (must be 'short' or 'video')", name)
	}
}
