package screenshot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
)

func TestExtractTweetID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://twitter.com/wojespn/status/1234567890", "1234567890"},
		{"https://x.com/ShamsCharania/status/987654321", "987654321"},
		{"https://x.com/user/status/42?s=20", "42"},
		{"https://twitter.com/wojespn", ""},
		{"https://example.com/article", ""},
		{"", ""},
	}

	for _, c := range cases {
		if got := ExtractTweetID(c.url); got != c.want {
			t.Errorf("ExtractTweetID(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestExtractAuthorHandle(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://twitter.com/wojespn/status/1234567890", "@wojespn"},
		{"https://x.com/ShamsCharania/status/987654321", "@ShamsCharania"},
		{"https://example.com/article", ""},
	}

	for _, c := range cases {
		if got := ExtractAuthorHandle(c.url); got != c.want {
			t.Errorf("ExtractAuthorHandle(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestTweetScreenshotUnconfigured(t *testing.T) {
	s := NewService(config.Screenshot{})
	if got := s.TweetScreenshot(context.Background(), "https://x.com/a/status/1"); got != "" {
		t.Errorf("Expected empty URL when unconfigured, got %q", got)
	}
}

func TestTweetScreenshotSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images" {
			t.Errorf("Expected POST /images, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("Expected Authorization header, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url": "https://img.example/shot.png"}`))
	}))
	defer srv.Close()

	s := NewService(config.Screenshot{APIKey: "test-key", BaseURL: srv.URL})
	got := s.TweetScreenshot(context.Background(), "https://x.com/a/status/1")
	if got != "https://img.example/shot.png" {
		t.Errorf("Expected screenshot URL, got %q", got)
	}
}

func TestTweetScreenshotNonStatusURL(t *testing.T) {
	s := NewService(config.Screenshot{APIKey: "test-key", BaseURL: "http://unused.invalid"})
	if got := s.TweetScreenshot(context.Background(), "https://example.com/article"); got != "" {
		t.Errorf("Expected empty URL for non-status URL, got %q", got)
	}
}

func TestTweetScreenshotAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewService(config.Screenshot{APIKey: "test-key", BaseURL: srv.URL})
	if got := s.TweetScreenshot(context.Background(), "https://x.com/a/status/1"); got != "" {
		t.Errorf("Expected empty URL on API failure, got %q", got)
	}
}

func TestRedditScreenshotAlwaysUnavailable(t *testing.T) {
	s := NewService(config.Screenshot{APIKey: "test-key", BaseURL: "http://unused.invalid"})
	if got := s.RedditScreenshot(context.Background(), "https://reddit.com/r/nba/comments/abc"); got != "" {
		t.Errorf("Expected empty URL for reddit, got %q", got)
	}
}

func TestDecorateItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url": "https://img.example/shot.png"}`))
	}))
	defer srv.Close()

	s := NewService(config.Screenshot{APIKey: "test-key", BaseURL: srv.URL})
	items := []core.ContentItem{
		{SourceType: core.SourceTweet, URL: "https://x.com/a/status/1"},
		{SourceType: core.SourceArticle, URL: "https://example.com/article"},
		{SourceType: core.SourceReddit, URL: "https://reddit.com/r/nba/comments/abc"},
		{SourceType: core.SourceTweet},
	}

	got := s.DecorateItems(context.Background(), items)

	if got[0].ScreenshotURL != "https://img.example/shot.png" {
		t.Errorf("Expected tweet decorated, got %q", got[0].ScreenshotURL)
	}
	if got[1].ScreenshotURL != "" {
		t.Error("Expected article left undecorated")
	}
	if got[2].ScreenshotURL != "" {
		t.Error("Expected reddit left undecorated")
	}
	if got[3].ScreenshotURL != "" {
		t.Error("Expected URL-less tweet left undecorated")
	}
}
