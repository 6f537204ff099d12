package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/logger"
	"github.com/seanmtli/personalnewsletter/internal/parsing"
)

// PerplexityProvider fetches content in a single request against the
// Perplexity API, which speaks the OpenAI chat-completion protocol. Unlike
// the Gemini provider there is no verification stage, no reordering
// guarantee, and the freshness window is enforced by prompt only; the
// reply's dates are not independently re-checked.
type PerplexityProvider struct {
	client *openai.Client
	model  string
}

// NewPerplexityProvider creates the Perplexity provider. It returns
// ErrNotConfigured when no API key is present.
func NewPerplexityProvider(cfg config.PerplexityConfig) (*PerplexityProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{
		Timeout: config.ParseDuration(cfg.Timeout, 60*time.Second),
	}

	return &PerplexityProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Name returns the provider name used for logging and attribution.
func (p *PerplexityProvider) Name() string {
	return string(ProviderTypePerplexity)
}

// Fetch issues one chat-completion request and parses the JSON array reply.
func (p *PerplexityProvider) Fetch(ctx context.Context, interests []string) ([]core.ContentItem, error) {
	prompt := fmt.Sprintf(perplexityPromptTemplate, strings.Join(interests, ", "))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a sports news curator. Return only valid JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("perplexity request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("perplexity returned no choices")
	}

	return parsePerplexityResponse(resp.Choices[0].Message.Content), nil
}

// parsePerplexityResponse extracts and normalizes the JSON array reply.
// A malformed reply degrades to zero items.
func parsePerplexityResponse(text string) []core.ContentItem {
	payload := parsing.ExtractJSON(text, true)

	var records []map[string]any
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		logger.Warn("failed to parse perplexity response", "error", err.Error())
		return nil
	}

	items := make([]core.ContentItem, 0, len(records))
	for _, record := range records {
		items = append(items, NormalizeItem(record))
	}
	return items
}
