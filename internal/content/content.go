// Package content implements the content providers that turn a user's
// interests into curated content items. Three strategies exist: a
// two-stage Gemini search-and-verify pipeline, a single-stage Perplexity
// search, and a deterministic RSS aggregator that needs no credentials
// and serves as the always-available fallback.
package content

import (
	"context"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/screenshot"
)

// Provider is a strategy that fetches content items for a set of interests.
type Provider interface {
	// Fetch returns content items relevant to the given interests.
	// Provider-internal parse problems degrade to fewer (or zero) items;
	// an error means the provider as a whole failed and the caller should
	// fall back.
	Fetch(ctx context.Context, interests []string) ([]core.ContentItem, error)

	// Name returns the provider name used for logging and attribution.
	Name() string
}

// ProviderType identifies a provider strategy.
type ProviderType string

const (
	ProviderTypeGemini     ProviderType = "gemini"
	ProviderTypePerplexity ProviderType = "perplexity"
	ProviderTypeRSS        ProviderType = "rss"
	ProviderTypeMock       ProviderType = "mock"
)

// KnownProviderTypes returns every provider type a caller may request by
// name, in fallback priority order.
func KnownProviderTypes() []ProviderType {
	return []ProviderType{ProviderTypeGemini, ProviderTypePerplexity, ProviderTypeRSS}
}

// ProviderFactory creates content providers from configuration.
type ProviderFactory struct {
	cfg   config.Config
	shots *screenshot.Service
}

// NewProviderFactory creates a factory that builds providers against the
// given configuration and screenshot service.
func NewProviderFactory(cfg config.Config, shots *screenshot.Service) *ProviderFactory {
	return &ProviderFactory{cfg: cfg, shots: shots}
}

// CreateProvider creates a provider of the specified type. Credential-gated
// providers return ErrNotConfigured when their API key is absent.
func (f *ProviderFactory) CreateProvider(providerType ProviderType) (Provider, error) {
	switch providerType {
	case ProviderTypeGemini:
		return NewGeminiProvider(f.cfg.AI.Gemini, f.shots)
	case ProviderTypePerplexity:
		return NewPerplexityProvider(f.cfg.AI.Perplexity)
	case ProviderTypeRSS:
		return NewRSSProvider(f.cfg.Feeds), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnknownProvider
	}
}
