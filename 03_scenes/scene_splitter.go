package scenes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"ai-video-pipeline/config"
	"ai-video-pipeline/types"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

var listNumbering = regexp.MustCompile(`^\d+[\.\)]\s*`)

// Splitter breaks a script into visual scenes using the Gemini API
type Splitter struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

// New creates a new scene Splitter. GEMINI_API_BASE overrides the endpoint
// for proxies and gateways.
func New(cfg *config.Config) *Splitter {
	baseURL := os.Getenv("GEMINI_API_BASE")
	if baseURL == "" {
		baseURL = geminiEndpoint
	}
	return &Splitter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Script.TimeoutSec) * time.Second},
		baseURL:    baseURL,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Run splits the script into short image-search scene descriptions
func (s *Splitter) Run(ctx context.Context, scriptText string) ([]types.Scene, error) {
	n := s.cfg.Scenes.Count
	log.Printf("[scenes] Splitting script into %d visual scenes...", n)

	prompt := fmt.Sprintf(
		"Split the following video script into %d visual scenes.\n"+
			"For each scene, give a short (3-8 word) image search description "+
			"that would find a good stock photo for that part of the script.\n\n"+
			"Script:\n%s\n\n"+
			"Return ONLY a JSON array of strings, nothing else. Example:\n"+
			`["student studying with laptop", "online learning dashboard"]`,
		n, scriptText)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	descriptions := parseSceneList(raw, n)
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("no scenes could be parsed from response: %s", raw[:min(200, len(raw))])
	}

	result := make([]types.Scene, 0, len(descriptions))
	for i, desc := range descriptions {
		log.Printf("[scenes]   Scene %d: %s", i+1, desc)
		result = append(result, types.Scene{Index: i, Description: desc})
	}
	log.Printf("[scenes] ✅ %d scenes extracted", len(result))
	return result, nil
}

// Keywords pulls image-search keywords from the script, one per line.
// Used as a fallback visual source when scene extraction yields nothing usable.
func (s *Splitter) Keywords(ctx context.Context, topic, scriptText string) ([]string, error) {
	n := s.cfg.Scenes.KeywordCount
	prompt := fmt.Sprintf(
		"Given this YouTube script about '%s':\n\n%s\n\n"+
			"Return exactly %d short image search keywords (one per line) "+
			"that would make great background visuals for this video. "+
			"Only return the keywords, nothing else.",
		topic, scriptText, n)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	keywords := cleanLines(raw)
	if len(keywords) > n {
		keywords = keywords[:n]
	}
	log.Printf("[scenes] %d fallback keywords extracted", len(keywords))
	return keywords, nil
}

func (s *Splitter) generate(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.cfg.Script.GeminiModel, apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBytes, &geminiResp); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}
	if geminiResp.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", geminiResp.Error.Code, geminiResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini status %d", resp.StatusCode)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return strings.TrimSpace(geminiResp.Candidates[0].Content.Parts[0].Text), nil
}

// parseSceneList parses a JSON array of scene descriptions, falling back
// to line splitting when the model ignores the JSON instruction.
func parseSceneList(raw string, limit int) []string {
	raw = cleanJSON(raw)

	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		out := make([]string, 0, len(parsed))
		for _, s := range parsed {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	lines := cleanLines(raw)
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return lines
}

// cleanLines turns bulleted or numbered model output into bare strings
func cleanLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `-•*"`)
		line = strings.TrimSpace(line)
		line = listNumbering.ReplaceAllString(line, "")
		if line != "" && !strings.HasPrefix(line, "```") {
			out = append(out, line)
		}
	}
	return out
}

// cleanJSON strips markdown fences if Gemini wraps the response in ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
