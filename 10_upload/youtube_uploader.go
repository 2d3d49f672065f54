package upload

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"ai-video-pipeline/config"
	"ai-video-pipeline/types"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Uploader pushes the finished video to YouTube via Data API v3
type Uploader struct {
	cfg *config.Config
	svc *youtube.Service

	// opts overrides service construction in tests
	opts []option.ClientOption
}

// New creates a new Uploader
func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Run uploads the video with its metadata and returns the video ID and watch URL
func (u *Uploader) Run(ctx context.Context, videoFile string, metadata *types.VideoMetadata) (string, string, error) {
	log.Println("[upload] Authenticating with YouTube API...")

	svc, err := u.service(ctx)
	if err != nil {
		return "", "", err
	}

	log.Printf("[upload] Uploading: %q", metadata.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           metadata.PrivacyStatus,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
			// false must still reach the wire
			ForceSendFields: []string{"SelfDeclaredMadeForKids"},
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", "", fmt.Errorf("stat video file: %w", err)
	}
	log.Printf("[upload] File size: %.1f MB", float64(fi.Size())/1024/1024)

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f, googleapi.ChunkSize(u.cfg.Upload.ChunkSizeKB*1024))
	call.ProgressUpdater(func(current, total int64) {
		if total > 0 {
			log.Printf("[upload] Progress: %d%%", current*100/total)
		}
	})

	uploaded, err := call.Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	videoID := uploaded.Id
	videoURL := fmt.Sprintf("https://youtube.com/watch?v=%s", videoID)

	log.Printf("[upload] ✅ Uploaded successfully!")
	log.Printf("[upload] Video ID: %s", videoID)
	log.Printf("[upload] Video URL: %s", videoURL)

	return videoID, videoURL, nil
}

// SetThumbnail attaches a custom thumbnail to an already uploaded video
func (u *Uploader) SetThumbnail(ctx context.Context, videoID, thumbnailFile string) error {
	svc, err := u.service(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(thumbnailFile)
	if err != nil {
		return fmt.Errorf("open thumbnail: %w", err)
	}
	defer f.Close()

	if _, err := svc.Thumbnails.Set(videoID).Media(f).Context(ctx).Do(); err != nil {
		return fmt.Errorf("set thumbnail: %w", err)
	}

	log.Println("[upload] ✅ Custom thumbnail set")
	return nil
}

// service builds the YouTube client once and reuses it across calls
func (u *Uploader) service(ctx context.Context) (*youtube.Service, error) {
	if u.svc != nil {
		return u.svc, nil
	}

	opts := u.opts
	if opts == nil {
		client, err := u.oauthClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("youtube auth: %w", err)
		}
		opts = []option.ClientOption{option.WithHTTPClient(client)}
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}

	u.svc = svc
	return svc, nil
}

// oauthClient creates an OAuth2 HTTP client from env credentials
func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}

	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token)), nil
}
