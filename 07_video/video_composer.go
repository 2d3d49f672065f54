package video

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

// Composer builds the slideshow video from still images and the voiceover
type Composer struct {
	cfg *config.Config
}

// New creates a new Composer
func New(cfg *config.Config) *Composer {
	return &Composer{cfg: cfg}
}

// Run builds the video:
//  1. encode each image as a segment covering the target frame, shown for
//     an equal share of the voiceover duration
//  2. join the segments with the concat demuxer
//  3. mux the voiceover on top
//
// With no images at all it falls back to a single black frame so the
// narration still ships.
func (c *Composer) Run(ctx context.Context, images []string, audioFile string, totalDuration float64, profile config.FormatProfile, outputDir string) (string, error) {
	if totalDuration <= 0 {
		return "", fmt.Errorf("invalid audio duration %.2f", totalDuration)
	}

	segDir := filepath.Join(outputDir, "segments")
	if err := os.MkdirAll(segDir, 0755); err != nil {
		return "", fmt.Errorf("create segments dir: %w", err)
	}

	var segments []string
	if len(images) == 0 {
		log.Println("[video] ⚠️ No images available, rendering black background")
		seg := filepath.Join(segDir, "segment_000.mp4")
		if err := runFFmpeg(ctx, buildBlackArgs(seg, totalDuration, profile, c.cfg.Video)); err != nil {
			return "", fmt.Errorf("ffmpeg black frame: %w", err)
		}
		segments = append(segments, seg)
	} else {
		perImage := totalDuration / float64(len(images))
		log.Printf("[video] Audio duration: %.1fs", totalDuration)
		log.Printf("[video] %d images × %.1fs each", len(images), perImage)

		for i, img := range images {
			seg := filepath.Join(segDir, fmt.Sprintf("segment_%03d.mp4", i))
			if err := runFFmpeg(ctx, buildSegmentArgs(img, seg, perImage, profile, c.cfg.Video)); err != nil {
				return "", fmt.Errorf("ffmpeg segment %d: %w", i, err)
			}
			segments = append(segments, seg)
		}
	}

	listFile := filepath.Join(outputDir, "concat_list.txt")
	var lines []string
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("file '%s'", seg))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return "", err
	}

	silent := filepath.Join(outputDir, "slideshow.mp4")
	if err := runFFmpeg(ctx, buildConcatArgs(listFile, silent)); err != nil {
		return "", fmt.Errorf("ffmpeg concat: %w", err)
	}

	outFile := filepath.Join(outputDir, "final.mp4")
	if err := runFFmpeg(ctx, buildMuxArgs(silent, audioFile, outFile)); err != nil {
		return "", fmt.Errorf("ffmpeg mux: %w", err)
	}

	log.Printf("[video] ✅ Video ready: %s", outFile)
	return outFile, nil
}

// buildSegmentArgs encodes one still image as a video segment. The image is
// scaled to cover the frame and center-cropped; with Ken Burns enabled a
// slow zoompan runs over the segment instead of a static frame.
func buildSegmentArgs(imgPath, outFile string, duration float64, p config.FormatProfile, v config.VideoConfig) []string {
	var vf string
	if v.KenBurns {
		totalFrames := int(duration * float64(v.FPS))
		if totalFrames < 1 {
			totalFrames = 1
		}
		zoomStep := (v.KenBurnsZoomFactor - 1.0) / float64(totalFrames)
		vf = fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,"+
				"zoompan=z='min(zoom+%.6f,%.3f)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:fps=%d,scale=%d:%d,setsar=1",
			p.Width*2, p.Height*2, p.Width*2, p.Height*2,
			zoomStep, v.KenBurnsZoomFactor, totalFrames, v.FPS,
			p.Width, p.Height,
		)
	} else {
		vf = fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
			p.Width, p.Height, p.Width, p.Height,
		)
	}

	return []string{
		"-y",
		"-loop", "1",
		"-i", imgPath,
		"-vf", vf,
		"-t", fmt.Sprintf("%.3f", duration),
		"-r", fmt.Sprintf("%d", v.FPS),
		"-c:v", "libx264",
		"-preset", v.Preset,
		"-crf", fmt.Sprintf("%d", v.CRF),
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	}
}

// buildBlackArgs renders a solid black segment for the full duration
func buildBlackArgs(outFile string, duration float64, p config.FormatProfile, v config.VideoConfig) []string {
	return []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%dx%d:d=%.3f", p.Width, p.Height, duration),
		"-r", fmt.Sprintf("%d", v.FPS),
		"-c:v", "libx264",
		"-preset", v.Preset,
		"-crf", fmt.Sprintf("%d", v.CRF),
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	}
}

// buildConcatArgs joins uniformly encoded segments without re-encoding
func buildConcatArgs(listFile, outFile string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outFile,
	}
}

// buildMuxArgs attaches the voiceover to the silent slideshow
func buildMuxArgs(videoFile, audioFile, outFile string) []string {
	return []string{
		"-y",
		"-i", videoFile,
		"-i", audioFile,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart", // optimize for web streaming
		outFile,
	}
}

func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
