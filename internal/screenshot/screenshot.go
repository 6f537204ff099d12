// Package screenshot attaches embed screenshot images to social-post
// content items via an external imaging API. Everything here is
// best-effort decoration: a missing credential, a bad URL, or a failed
// request leaves the item untouched and never surfaces an error.
package screenshot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/logger"
)

var (
	tweetIDRe      = regexp.MustCompile(`(?:twitter\.com|x\.com)/\w+/status/(\d+)`)
	authorHandleRe = regexp.MustCompile(`(?:twitter\.com|x\.com)/(\w+)/status/`)
)

// ExtractTweetID returns the numeric status ID from a twitter.com or x.com
// status URL, or "" when the URL does not match.
func ExtractTweetID(url string) string {
	if m := tweetIDRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// ExtractAuthorHandle returns the @username from a twitter.com or x.com
// status URL, or "" when the URL does not match.
func ExtractAuthorHandle(url string) string {
	if m := authorHandleRe.FindStringSubmatch(url); m != nil {
		return "@" + m[1]
	}
	return ""
}

// Service requests screenshot images from a TweetPik-style imaging API.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewService creates a screenshot service. An empty API key is allowed; the
// service then reports every screenshot as unavailable.
func NewService(cfg config.Screenshot) *Service {
	return &Service{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: config.ParseDuration(cfg.Timeout, 30*time.Second),
		},
	}
}

// TweetScreenshot requests a screenshot image URL for a tweet. It returns
// "" when the service is unconfigured, the URL is not a status URL, or the
// API call fails.
func (s *Service) TweetScreenshot(ctx context.Context, tweetURL string) string {
	if s.apiKey == "" {
		return ""
	}
	if ExtractTweetID(tweetURL) == "" {
		return ""
	}

	payload, err := json.Marshal(map[string]string{"url": tweetURL})
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/images", bytes.NewReader(payload))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn("screenshot request failed", "url", tweetURL, "error", err.Error())
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("screenshot API returned non-200", "status", resp.StatusCode)
		return ""
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return body.URL
}

// RedditScreenshot requests a screenshot image URL for a reddit post.
// No imaging backend is wired for reddit yet, so it always reports
// unavailable; reddit items fall back to their HTML card.
func (s *Service) RedditScreenshot(ctx context.Context, redditURL string) string {
	_ = ctx
	_ = redditURL
	return ""
}

// DecorateItems attaches screenshot URLs to tweet and reddit items in
// place and returns the same slice. Failures are silent.
func (s *Service) DecorateItems(ctx context.Context, items []core.ContentItem) []core.ContentItem {
	for i := range items {
		if items[i].URL == "" {
			continue
		}
		switch items[i].SourceType {
		case core.SourceTweet:
			if u := s.TweetScreenshot(ctx, items[i].URL); u != "" {
				items[i].ScreenshotURL = u
				logger.Debug("screenshot attached", "url", items[i].URL)
			}
		case core.SourceReddit:
			if u := s.RedditScreenshot(ctx, items[i].URL); u != "" {
				items[i].ScreenshotURL = u
			}
		}
	}
	return items
}
