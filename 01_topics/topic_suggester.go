package topics

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"ai-video-pipeline/config"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// Suggester finds trending Reddit posts worth turning into videos
type Suggester struct {
	cfg    *config.Config
	client *reddit.Client
}

// New creates a Suggester backed by Reddit's read-only API
func New(cfg *config.Config) (*Suggester, error) {
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &Suggester{cfg: cfg, client: client}, nil
}

// newWithClient wires a preconfigured client, used by tests
func newWithClient(cfg *config.Config, client *reddit.Client) *Suggester {
	return &Suggester{cfg: cfg, client: client}
}

// Run returns up to n topic suggestions ranked by post score
func (s *Suggester) Run(ctx context.Context, n int) ([]string, error) {
	log.Println("[topics] Scanning subreddits for trending topics...")

	var candidates []*reddit.Post
	for _, sub := range s.cfg.Topics.Subreddits {
		posts, _, err := s.client.Subreddit.HotPosts(ctx, sub, &reddit.ListOptions{
			Limit: s.cfg.Topics.Limit,
		})
		if err != nil {
			log.Printf("[topics] ⚠️ r/%s: %v", sub, err)
			continue
		}
		log.Printf("[topics] r/%s: %d posts", sub, len(posts))
		candidates = append(candidates, posts...)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no posts found in any configured subreddit")
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	seen := make(map[string]bool)
	var suggestions []string
	for _, post := range candidates {
		if !usable(post, s.cfg.Topics.MinScore) {
			continue
		}
		topic := cleanTitle(post.Title)
		key := strings.ToLower(topic)
		if seen[key] {
			continue
		}
		seen[key] = true
		suggestions = append(suggestions, topic)
		if len(suggestions) >= n {
			break
		}
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("no posts passed the topic filters")
	}

	log.Printf("[topics] ✅ %d topic suggestions ready", len(suggestions))
	return suggestions, nil
}

// usable filters out posts that make poor video topics
func usable(post *reddit.Post, minScore int) bool {
	if post.Stickied || post.NSFW {
		return false
	}
	if post.Score < minScore {
		return false
	}
	length := utf8.RuneCountInString(post.Title)
	return length >= 20 && length <= 130
}

// cleanTitle strips subreddit prefixes that read poorly as video topics
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, prefix := range []string{"TIL that ", "TIL: ", "TIL "} {
		if strings.HasPrefix(title, prefix) {
			title = strings.TrimPrefix(title, prefix)
			break
		}
	}
	if title != "" {
		r, size := utf8.DecodeRuneInString(title)
		title = string(unicode.ToUpper(r)) + title[size:]
	}
	return strings.TrimSuffix(strings.TrimSpace(title), ".")
}
