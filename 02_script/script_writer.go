package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"ai-video-pipeline/config"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// Writer generates narration scripts using the Gemini API
type Writer struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

// New creates a new script Writer. GEMINI_API_BASE overrides the endpoint
// for proxies and gateways.
func New(cfg *config.Config) *Writer {
	baseURL := os.Getenv("GEMINI_API_BASE")
	if baseURL == "" {
		baseURL = geminiEndpoint
	}
	return &Writer{
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

// Run generates the spoken narration for a topic in the given format
func (w *Writer) Run(ctx context.Context, topic string, profile config.FormatProfile) (string, error) {
	log.Printf("[script] Generating script via Gemini (%s)...", w.cfg.Script.GeminiModel)

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	prompt := buildPrompt(topic, profile)

	text, err := w.generate(ctx, apiKey, prompt)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty script")
	}

	words := len(strings.Fields(text))
	log.Printf("[script] ✅ Script ready: %d words, ~%.0f seconds at narration pace", words, float64(words)/130.0*60.0)
	return text, nil
}

func (w *Writer) generate(ctx context.Context, apiKey, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", w.baseURL, w.cfg.Script.GeminiModel, apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
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
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, respBytes[:min(200, len(respBytes))])
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(topic string, profile config.FormatProfile) string {
	var sb strings.Builder
	if profile.Orientation == "portrait" {
		sb.WriteString(fmt.Sprintf("Write a %d-%d second YouTube Shorts video script.\n", profile.MinSeconds, profile.MaxSeconds))
		sb.WriteString(fmt.Sprintf("Topic: %s\n", topic))
		sb.WriteString("Requirements:\n")
		sb.WriteString(fmt.Sprintf("- Maximum %d-%d seconds when read aloud\n", profile.MinSeconds, profile.MaxSeconds))
		sb.WriteString("- Fast-paced, punchy, and attention-grabbing\n")
		sb.WriteString("- Include a hook in the first 3 seconds\n")
		sb.WriteString("- Use very short sentences suitable for voiceover\n")
		sb.WriteString("- Keep it concise: this is a Short, not a full video\n")
		sb.WriteString("- Do NOT include stage directions, timestamps, or formatting marks\n")
		sb.WriteString("- Just return the spoken narration text")
	} else {
		sb.WriteString(fmt.Sprintf("Write a %d-%d second YouTube video script.\n", profile.MinSeconds, profile.MaxSeconds))
		sb.WriteString(fmt.Sprintf("Topic: %s\n", topic))
		sb.WriteString("Requirements:\n")
		sb.WriteString("- Clear, engaging, and educational tone\n")
		sb.WriteString("- Include a hook in the first 5 seconds\n")
		sb.WriteString("- Use short sentences suitable for voiceover\n")
		sb.WriteString("- Do NOT include stage directions, timestamps, or formatting marks\n")
		sb.WriteString("- Just return the spoken narration text")
	}
	return sb.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
