package types

// Job carries the inputs for one pipeline run, whether it arrives
// via CLI flags or the HTTP trigger endpoint.
type Job struct {
	Topic   string `json:"topic"`
	Format  string `json:"format"`  // short | video
	Upload  bool   `json:"upload"`
	Privacy string `json:"privacy"` // private | unlisted | public
}

// Scene is one visual beat of the script with its stock image
type Scene struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	ImageFile   string `json:"image_file,omitempty"`
}

// VideoMetadata holds all YouTube upload metadata
type VideoMetadata struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	CategoryID    string   `json:"category_id"`
	PrivacyStatus string   `json:"privacy_status"`
}

// PipelineState tracks the full state of one pipeline run.
// It is persisted to state.json in the run directory after every stage.
type PipelineState struct {
	RunID            string         `json:"run_id"`
	Topic            string         `json:"topic"`
	Format           string         `json:"format"`
	StartedAt        string         `json:"started_at"`
	CompletedAt      string         `json:"completed_at"`
	ScriptFile       string         `json:"script_file"`
	Scenes           []Scene        `json:"scenes"`
	Keywords         []string       `json:"keywords,omitempty"`
	Metadata         *VideoMetadata `json:"metadata"`
	AudioFile        string         `json:"audio_file"`
	AudioDurationSec float64        `json:"audio_duration_sec"`
	ImageFiles       []string       `json:"image_files"`
	VideoFile        string         `json:"video_file"`
	SubtitleFile     string         `json:"subtitle_file,omitempty"`
	FinalVideoFile   string         `json:"final_video_file"`
	ThumbnailFile    string         `json:"thumbnail_file,omitempty"`
	YouTubeID        string         `json:"youtube_id,omitempty"`
	YouTubeURL       string         `json:"youtube_url,omitempty"`
	Warnings         []string       `json:"warnings,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// Warn records a non-fatal stage problem on the run state
func (s *PipelineState) Warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}
