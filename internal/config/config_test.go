package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.App.NewsletterName != "Your Sports Digest" {
		t.Errorf("Expected default newsletter name, got %q", cfg.App.NewsletterName)
	}
	if cfg.AI.Gemini.SearchModel != "gemini-2.5-flash" {
		t.Errorf("Expected default search model, got %q", cfg.AI.Gemini.SearchModel)
	}
	if cfg.AI.Perplexity.BaseURL != "https://api.perplexity.ai" {
		t.Errorf("Expected default perplexity base URL, got %q", cfg.AI.Perplexity.BaseURL)
	}
	if cfg.Server.BindAddr != ":8000" {
		t.Errorf("Expected default bind addr, got %q", cfg.Server.BindAddr)
	}
	if cfg.Email.SMTP.Port != 587 {
		t.Errorf("Expected default SMTP port, got %d", cfg.Email.SMTP.Port)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("BIND_ADDR", ":9000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AI.Gemini.APIKey != "test-gemini-key" {
		t.Errorf("Expected API key from environment, got %q", cfg.AI.Gemini.APIKey)
	}
	if cfg.Server.BindAddr != ":9000" {
		t.Errorf("Expected bind addr from environment, got %q", cfg.Server.BindAddr)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  newsletter_name: Custom Digest
server:
  bind_addr: ":9999"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.App.NewsletterName != "Custom Digest" {
		t.Errorf("Expected name from file, got %q", cfg.App.NewsletterName)
	}
	if cfg.Server.BindAddr != ":9999" {
		t.Errorf("Expected bind addr from file, got %q", cfg.Server.BindAddr)
	}
	// Untouched keys keep their defaults.
	if cfg.AI.Perplexity.Model != "sonar" {
		t.Errorf("Expected default perplexity model, got %q", cfg.AI.Perplexity.Model)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing explicit config file")
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		value    string
		fallback time.Duration
		want     time.Duration
	}{
		{"90s", time.Minute, 90 * time.Second},
		{"2m", time.Minute, 2 * time.Minute},
		{"", time.Minute, time.Minute},
		{"not-a-duration", 30 * time.Second, 30 * time.Second},
	}

	for _, c := range cases {
		if got := ParseDuration(c.value, c.fallback); got != c.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", c.value, got, c.want)
		}
	}
}
