package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/logger"
	"github.com/seanmtli/personalnewsletter/internal/parsing"
	"github.com/seanmtli/personalnewsletter/internal/screenshot"
)

// GeminiProvider fetches content through a two-stage pipeline against the
// Gemini API: a search stage with the GoogleSearch tool enabled, followed
// by a verification stage that re-scores each item for genuine relevance.
type GeminiProvider struct {
	searchModel string
	verifyModel string
	timeout     time.Duration
	shots       *screenshot.Service
	gClient     *genai.Client

	// generate is swappable for tests; the default issues a real
	// GenerateContent call.
	generate func(ctx context.Context, model, prompt string, withSearch bool) (string, error)
}

// NewGeminiProvider creates the Gemini provider. It returns
// ErrNotConfigured when no API key is present.
func NewGeminiProvider(cfg config.GeminiConfig, shots *screenshot.Service) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p := &GeminiProvider{
		searchModel: cfg.SearchModel,
		verifyModel: cfg.VerifyModel,
		timeout:     config.ParseDuration(cfg.Timeout, 90*time.Second),
		shots:       shots,
		gClient:     gClient,
	}
	p.generate = p.generateContent
	return p, nil
}

// Name returns the provider name used for logging and attribution.
func (p *GeminiProvider) Name() string {
	return string(ProviderTypeGemini)
}

// Fetch runs the two-stage pipeline: search, verify, reorder, decorate.
func (p *GeminiProvider) Fetch(ctx context.Context, interests []string) ([]core.ContentItem, error) {
	items, err := p.searchStage(ctx, interests)
	if err != nil {
		return nil, fmt.Errorf("gemini search stage: %w", err)
	}
	if len(items) == 0 {
		logger.Info("gemini search stage found no items")
		return []core.ContentItem{}, nil
	}
	logger.Info("gemini search stage complete", "items", len(items))

	verified := p.verifyStage(ctx, items, interests)
	if len(verified) < core.MinItemsThreshold && len(items) >= core.MinItemsThreshold {
		logger.Warn("verification filtered aggressively", "before", len(items), "after", len(verified))
	}

	verified = moveSocialItemToFront(verified)

	decorateCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.shots.DecorateItems(decorateCtx, verified), nil
}

// searchStage issues the search request and parses the JSON array reply.
// A transport failure is a provider failure; a malformed reply degrades to
// zero items.
func (p *GeminiProvider) searchStage(ctx context.Context, interests []string) ([]core.ContentItem, error) {
	prompt := fmt.Sprintf(searchPromptTemplate,
		strings.Join(interests, ", "),
		time.Now().UTC().Format("2006-01-02"),
		core.MaxContentAgeDays,
	)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.generate(ctx, p.searchModel, prompt, true)
	if err != nil {
		return nil, err
	}

	return parseSearchResponse(text, time.Now().UTC()), nil
}

// parseSearchResponse extracts the JSON array from the search reply,
// normalizes each record, and drops items whose resolvable published_at is
// outside the freshness window.
func parseSearchResponse(text string, now time.Time) []core.ContentItem {
	payload := parsing.ExtractJSON(text, true)

	var records []map[string]any
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		logger.Warn("failed to parse search response", "error", err.Error())
		return nil
	}

	cutoff := core.FreshnessCutoff(now)
	items := make([]core.ContentItem, 0, len(records))
	for _, record := range records {
		item := NormalizeItem(record)
		if item.PublishedAt != nil && item.PublishedAt.Before(cutoff) {
			logger.Debug("dropping stale item", "headline", item.Headline, "published_at", item.PublishedAt)
			continue
		}
		items = append(items, item)
	}
	return items
}

// verifyResult is the verification stage's reply envelope.
type verifyResult struct {
	VerifiedItems  []map[string]any `json:"verified_items"`
	RejectedCount  int              `json:"rejected_count"`
	QualityWarning string           `json:"quality_warning"`
}

// verifyStage submits the stage-1 items for relevance scoring and keeps
// only items scoring 7 or higher. If verification itself fails, the
// unverified input is returned rather than failing the provider.
func (p *GeminiProvider) verifyStage(ctx context.Context, items []core.ContentItem, interests []string) []core.ContentItem {
	itemsJSON, err := json.MarshalIndent(serializeForVerification(items), "", "  ")
	if err != nil {
		return items
	}

	prompt := fmt.Sprintf(verifyPromptTemplate, strings.Join(interests, ", "), string(itemsJSON))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.generate(ctx, p.verifyModel, prompt, false)
	if err != nil {
		logger.Warn("verification failed, keeping unverified items", "error", err.Error())
		return items
	}

	var result verifyResult
	if err := json.Unmarshal([]byte(parsing.ExtractJSON(text, false)), &result); err != nil {
		logger.Warn("failed to parse verification response, keeping unverified items", "error", err.Error())
		return items
	}

	if result.QualityWarning != "" {
		logger.Warn("verification quality warning", "warning", result.QualityWarning)
	}
	if result.RejectedCount > 0 {
		logger.Info("verification rejected items", "count", result.RejectedCount)
	}

	verified := make([]core.ContentItem, 0, len(result.VerifiedItems))
	for _, record := range result.VerifiedItems {
		verified = append(verified, NormalizeItem(record))
	}
	return verified
}

// serializeForVerification strips the derived fields (tweet ID, screenshot,
// relevance score) before resubmitting items to the verification stage.
func serializeForVerification(items []core.ContentItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		var publishedAt any
		if item.PublishedAt != nil {
			publishedAt = item.PublishedAt.Format(time.RFC3339)
		}
		out = append(out, map[string]any{
			"headline":      item.Headline,
			"summary":       item.Summary,
			"source_type":   item.SourceType,
			"source_name":   item.SourceName,
			"url":           item.URL,
			"relevance":     item.Relevance,
			"published_at":  publishedAt,
			"thumbnail_url": item.ThumbnailURL,
			"author_handle": item.AuthorHandle,
		})
	}
	return out
}

// moveSocialItemToFront moves the first social-post item to index 0 so the
// newsletter leads with an embed. The relative order of everything else is
// preserved. Tweets win over reddit posts when both exist.
func moveSocialItemToFront(items []core.ContentItem) []core.ContentItem {
	idx := -1
	for i, item := range items {
		if item.SourceType == core.SourceTweet {
			idx = i
			break
		}
	}
	if idx == -1 {
		for i, item := range items {
			if item.SourceType == core.SourceReddit {
				idx = i
				break
			}
		}
	}
	if idx <= 0 {
		return items
	}

	reordered := make([]core.ContentItem, 0, len(items))
	reordered = append(reordered, items[idx])
	reordered = append(reordered, items[:idx]...)
	reordered = append(reordered, items[idx+1:]...)
	return reordered
}

// generateContent issues a single GenerateContent call, optionally with
// the GoogleSearch tool enabled.
func (p *GeminiProvider) generateContent(ctx context.Context, model, prompt string, withSearch bool) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	var genCfg *genai.GenerateContentConfig
	if withSearch {
		genCfg = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}

	resp, err := p.gClient.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
