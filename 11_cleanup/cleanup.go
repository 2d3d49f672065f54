package cleanup

import (
	"log"
	"os"
	"path/filepath"

	"ai-video-pipeline/types"
)

// Runner removes intermediate artifacts once the final deliverables exist
type Runner struct{}

// New creates a new Runner
func New() *Runner {
	return &Runner{}
}

// Run deletes the intermediates recorded in state, keeping the final video,
// the thumbnail and the run's text artifacts. Missing files are skipped, so
// running it twice is a no-op. Returns the paths that were removed.
func (r *Runner) Run(state *types.PipelineState, runDir string) []string {
	log.Println("[cleanup] Removing intermediate files...")

	keep := map[string]bool{
		state.FinalVideoFile: true,
		state.ThumbnailFile:  true,
	}

	var removed []string

	videoDir := filepath.Join(runDir, "video")
	dirs := []string{
		filepath.Join(runDir, "images"),
		filepath.Join(runDir, "audio"),
		filepath.Join(videoDir, "segments"),
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("[cleanup] ⚠️ %s: %v", dir, err)
			continue
		}
		removed = append(removed, dir)
	}

	files := []string{
		state.AudioFile,
		state.SubtitleFile,
		filepath.Join(videoDir, "slideshow.mp4"),
		filepath.Join(videoDir, "concat_list.txt"),
	}
	files = append(files, state.ImageFiles...)
	if state.VideoFile != "" && state.VideoFile != state.FinalVideoFile {
		files = append(files, state.VideoFile)
	}

	for _, file := range files {
		if file == "" || keep[file] {
			continue
		}
		if err := os.Remove(file); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("[cleanup] ⚠️ %s: %v", file, err)
			}
			continue
		}
		removed = append(removed, file)
	}

	log.Printf("[cleanup] ✅ Removed %d intermediate artifacts", len(removed))
	return removed
}
