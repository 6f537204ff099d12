// Package curator orchestrates the content providers with fallback logic:
// try providers in priority order, accept the first adequate result, and
// degrade to best-effort when every provider disappoints.
package curator

import (
	"context"
	"time"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/content"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/logger"
	"github.com/seanmtli/personalnewsletter/internal/screenshot"
)

// Curator tries providers in fixed priority order: Gemini (when
// credentialed), then Perplexity (when credentialed), then RSS, which is
// always present. Providers run strictly sequentially; a later provider is
// only paid for after the current one's result is judged inadequate.
type Curator struct {
	providers []content.Provider
	factory   *content.ProviderFactory
}

// New builds a curator from configuration. Providers whose credentials are
// absent are skipped at construction; that never fails the curator itself.
func New(cfg config.Config, shots *screenshot.Service) *Curator {
	factory := content.NewProviderFactory(cfg, shots)

	var providers []content.Provider
	for _, providerType := range content.KnownProviderTypes() {
		provider, err := factory.CreateProvider(providerType)
		if err != nil {
			logger.Debug("provider unavailable", "provider", string(providerType), "reason", err.Error())
			continue
		}
		providers = append(providers, provider)
	}

	return &Curator{providers: providers, factory: factory}
}

// NewWithProviders builds a curator over an explicit provider list,
// bypassing credential checks. Intended for tests and tooling.
func NewWithProviders(cfg config.Config, shots *screenshot.Service, providers ...content.Provider) *Curator {
	return &Curator{
		providers: providers,
		factory:   content.NewProviderFactory(cfg, shots),
	}
}

// Providers returns the names of the configured providers in priority
// order.
func (c *Curator) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Curate fetches content from the best available provider. It never
// returns an error: total failure degrades to an empty newsletter with
// provider_used set to "none".
func (c *Curator) Curate(ctx context.Context, interests []string) core.CuratedNewsletter {
	var items []core.ContentItem
	providerUsed := "none"
	bestEffort := "none"

	for _, provider := range c.providers {
		logger.Info("trying provider", "provider", provider.Name())
		fetched, err := provider.Fetch(ctx, interests)
		if err != nil {
			logger.Warn("provider failed", "provider", provider.Name(), "error", err.Error())
			continue
		}

		if len(fetched) >= core.MinItemsThreshold {
			items = fetched
			providerUsed = provider.Name()
			logger.Info("provider accepted", "provider", provider.Name(), "items", len(fetched))
			break
		}

		logger.Info("provider below threshold, trying next",
			"provider", provider.Name(), "items", len(fetched), "threshold", core.MinItemsThreshold)
		if len(fetched) > 0 {
			// Keep the sub-threshold result so a later total failure
			// does not erase it.
			items = fetched
			bestEffort = provider.Name()
		}
	}

	if providerUsed == "none" && len(items) > 0 {
		providerUsed = bestEffort
	}

	return newNewsletter(items, interests, providerUsed)
}

// CurateWith bypasses fallback and curates with the named provider only.
// An unrecognized name fails with content.ErrUnknownProvider; a known but
// unconfigured provider fails with content.ErrNotConfigured.
func (c *Curator) CurateWith(ctx context.Context, interests []string, name string) (core.CuratedNewsletter, error) {
	if !isKnownProvider(name) {
		return core.CuratedNewsletter{}, content.ErrUnknownProvider
	}

	provider, err := c.factory.CreateProvider(content.ProviderType(name))
	if err != nil {
		return core.CuratedNewsletter{}, err
	}

	items, err := provider.Fetch(ctx, interests)
	if err != nil {
		return core.CuratedNewsletter{}, err
	}

	return newNewsletter(items, interests, name), nil
}

// Debug runs every known provider independently and reports per-provider
// outcomes. Unlike Curate it never short-circuits, and providers lacking
// credentials are reported as configuration failures rather than skipped.
func (c *Curator) Debug(ctx context.Context, interests []string) []core.ProviderDebugResult {
	const sampleSize = 3

	var results []core.ProviderDebugResult
	for _, providerType := range content.KnownProviderTypes() {
		result := core.ProviderDebugResult{
			Provider: string(providerType),
			Items:    []core.ContentItem{},
		}

		provider, err := c.factory.CreateProvider(providerType)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		items, err := provider.Fetch(ctx, interests)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		result.Success = true
		result.ItemsCount = len(items)
		if len(items) > sampleSize {
			items = items[:sampleSize]
		}
		result.Items = items
		results = append(results, result)
	}
	return results
}

func isKnownProvider(name string) bool {
	for _, providerType := range content.KnownProviderTypes() {
		if string(providerType) == name {
			return true
		}
	}
	return false
}

func newNewsletter(items []core.ContentItem, interests []string, providerUsed string) core.CuratedNewsletter {
	if items == nil {
		items = []core.ContentItem{}
	}
	return core.CuratedNewsletter{
		Items:         items,
		GeneratedAt:   time.Now().UTC(),
		InterestsUsed: interests,
		ProviderUsed:  providerUsed,
	}
}
