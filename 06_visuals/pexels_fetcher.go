package visuals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ai-video-pipeline/config"
	"ai-video-pipeline/types"
)

const pexelsEndpoint = "https://api.pexels.com/v1/search"

// Fetcher downloads stock photos from Pexels
type Fetcher struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

// New creates a new Fetcher. PEXELS_API_BASE overrides the endpoint for
// proxies and gateways.
func New(cfg *config.Config) *Fetcher {
	baseURL := os.Getenv("PEXELS_API_BASE")
	if baseURL == "" {
		baseURL = pexelsEndpoint
	}
	return &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Visuals.TimeoutSec) * time.Second},
		baseURL:    baseURL,
	}
}

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

// FetchForScenes downloads one image per scene description, writing
// images/imgNNN.jpg and recording the path on each scene. Scenes whose
// searches come up empty are retried with a shortened query, then skipped.
func (f *Fetcher) FetchForScenes(ctx context.Context, scenes []types.Scene, outputDir, orientation string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}

	var saved []string
	for i := range scenes {
		scene := &scenes[i]

		urls, err := f.search(ctx, scene.Description, 1, orientation)
		if err != nil {
			return saved, err
		}
		if len(urls) == 0 {
			// Simplify the query by taking the first 3 words as fallback
			words := strings.Fields(scene.Description)
			short := strings.Join(words[:min(3, len(words))], " ")
			log.Printf("[visuals] No result for scene %d, retrying with %q...", scene.Index+1, short)
			if urls, err = f.search(ctx, short, 1, orientation); err != nil {
				return saved, err
			}
		}
		if len(urls) == 0 {
			log.Printf("[visuals] ⚠️ No image found for scene %d: %q, skipping", scene.Index+1, scene.Description)
			continue
		}

		outFile := filepath.Join(outputDir, fmt.Sprintf("img%03d.jpg", scene.Index))
		if err := f.downloadImage(ctx, urls[0], outFile); err != nil {
			log.Printf("[visuals] ⚠️ Download failed for scene %d: %v", scene.Index+1, err)
			continue
		}
		scene.ImageFile = outFile
		saved = append(saved, outFile)
		log.Printf("[visuals] img%03d.jpg ← Scene %d: %q", scene.Index, scene.Index+1, scene.Description)
	}
	return saved, nil
}

// FetchForKeywords downloads one image per keyword for extra variety
func (f *Fetcher) FetchForKeywords(ctx context.Context, keywords []string, outputDir, orientation string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}

	var saved []string
	for i, keyword := range keywords {
		urls, err := f.search(ctx, keyword, 1, orientation)
		if err != nil {
			return saved, err
		}
		if len(urls) == 0 {
			log.Printf("[visuals] No result for %q, skipping", keyword)
			continue
		}
		outFile := filepath.Join(outputDir, fmt.Sprintf("img%03d.jpg", i))
		if err := f.downloadImage(ctx, urls[0], outFile); err != nil {
			log.Printf("[visuals] ⚠️ Download failed for %q: %v", keyword, err)
			continue
		}
		saved = append(saved, outFile)
		log.Printf("[visuals] img%03d.jpg ← %q", i, keyword)
	}
	return saved, nil
}

// Fetch searches for a single query and downloads up to count images.
// An empty result set triggers one retry with the configured fallback query.
func (f *Fetcher) Fetch(ctx context.Context, query string, count int, outputDir, orientation string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}

	urls, err := f.search(ctx, query, count, orientation)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		log.Printf("[visuals] No photos found for %q, trying fallback query %q...", query, f.cfg.Visuals.FallbackQuery)
		if urls, err = f.search(ctx, f.cfg.Visuals.FallbackQuery, count, orientation); err != nil {
			return nil, err
		}
	}

	var saved []string
	for i, u := range urls {
		if i >= count {
			break
		}
		outFile := filepath.Join(outputDir, fmt.Sprintf("img%03d.jpg", i))
		if err := f.downloadImage(ctx, u, outFile); err != nil {
			log.Printf("[visuals] ⚠️ Download %d failed: %v", i, err)
			continue
		}
		saved = append(saved, outFile)
		log.Printf("[visuals] Downloaded img%03d.jpg (%s)", i, u)
	}
	return saved, nil
}

func (f *Fetcher) search(ctx context.Context, query string, perPage int, orientation string) ([]string, error) {
	apiKey := os.Getenv("PEXELS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY not set")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("orientation", orientation)

	req, err := http.NewRequestWithContext(ctx, "GET", f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("pexels status %d: %s", resp.StatusCode, body)
	}

	var parsed pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse pexels response: %w", err)
	}

	urls := make([]string, 0, len(parsed.Photos))
	for _, p := range parsed.Photos {
		if p.Src.Large != "" {
			urls = append(urls, p.Src.Large)
		}
	}
	return urls, nil
}

func (f *Fetcher) downloadImage(ctx context.Context, imageURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d fetching image", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes), likely an error page", len(data))
	}

	return os.WriteFile(outFile, data, 0644)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
