package cleanup

import (
	"os"
	"path/filepath"
	"testing"

	"ai-video-pipeline/types"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func buildRunDir(t *testing.T) (string, *types.PipelineState) {
	t.Helper()
	runDir := t.TempDir()

	state := &types.PipelineState{
		AudioFile:      touch(t, filepath.Join(runDir, "audio", "voice.mp3")),
		SubtitleFile:   touch(t, filepath.Join(runDir, "video", "subtitles.srt")),
		VideoFile:      touch(t, filepath.Join(runDir, "video", "final.mp4")),
		FinalVideoFile: touch(t, filepath.Join(runDir, "video", "final_subtitled.mp4")),
		ThumbnailFile:  touch(t, filepath.Join(runDir, "video", "thumbnail.jpg")),
		ImageFiles: []string{
			touch(t, filepath.Join(runDir, "images", "img000.jpg")),
			touch(t, filepath.Join(runDir, "images", "img001.jpg")),
		},
	}
	touch(t, filepath.Join(runDir, "video", "segments", "segment_000.mp4"))
	touch(t, filepath.Join(runDir, "video", "slideshow.mp4"))
	touch(t, filepath.Join(runDir, "video", "concat_list.txt"))
	touch(t, filepath.Join(runDir, "script.txt"))
	touch(t, filepath.Join(runDir, "metadata.json"))

	return runDir, state
}

func TestRunRemovesIntermediates(t *testing.T) {
	runDir, state := buildRunDir(t)

	removed := New().Run(state, runDir)
	if len(removed) == 0 {
		t.Fatal("Run() removed nothing")
	}

	gone := []string{
		filepath.Join(runDir, "images"),
		filepath.Join(runDir, "audio"),
		filepath.Join(runDir, "video", "segments"),
		filepath.Join(runDir, "video", "slideshow.mp4"),
		filepath.Join(runDir, "video", "concat_list.txt"),
		filepath.Join(runDir, "video", "subtitles.srt"),
		filepath.Join(runDir, "video", "final.mp4"),
	}
	for _, path := range gone {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s should be gone", path)
		}
	}

	kept := []string{
		state.FinalVideoFile,
		state.ThumbnailFile,
		filepath.Join(runDir, "script.txt"),
		filepath.Join(runDir, "metadata.json"),
	}
	for _, path := range kept {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s should survive cleanup: %v", path, err)
		}
	}
}

func TestRunKeepsUnsubtitledFinal(t *testing.T) {
	runDir, state := buildRunDir(t)

	// subtitles failed: the composer output doubles as the final video
	state.FinalVideoFile = state.VideoFile
	os.Remove(filepath.Join(runDir, "video", "final_subtitled.mp4"))

	New().Run(state, runDir)

	if _, err := os.Stat(state.VideoFile); err != nil {
		t.Errorf("final video should survive: %v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	runDir, state := buildRunDir(t)

	New().Run(state, runDir)
	removed := New().Run(state, runDir)
	if len(removed) != 0 {
		t.Errorf("second Run() removed %v, want nothing", removed)
	}

	if _, err := os.Stat(state.FinalVideoFile); err != nil {
		t.Errorf("final video should survive repeat cleanup: %v", err)
	}
}
