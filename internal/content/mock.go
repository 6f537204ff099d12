package content

import (
	"context"

	"github.com/seanmtli/personalnewsletter/internal/core"
)

// MockProvider implements Provider for testing purposes.
type MockProvider struct {
	name  string
	items []core.ContentItem
	err   error
}

// NewMockProvider creates a mock provider with a small fixed result set.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: string(ProviderTypeMock),
		items: []core.ContentItem{
			{
				Headline:   "Example Headline 1",
				Summary:    "A mock content item for testing purposes.",
				SourceType: core.SourceArticle,
				SourceName: "Mock",
				URL:        "https://example.com/article1",
				Relevance:  "Matches a mock interest",
			},
			{
				Headline:   "Example Headline 2",
				Summary:    "Another mock content item with different content.",
				SourceType: core.SourceVideo,
				SourceName: "Mock",
				URL:        "https://example.com/video2",
				Relevance:  "Matches a mock interest",
			},
			{
				Headline:   "Example Headline 3",
				Summary:    "Third mock item to simulate a full result.",
				SourceType: core.SourceArticle,
				SourceName: "Mock",
				URL:        "https://example.com/article3",
				Relevance:  "Matches a mock interest",
			},
		},
	}
}

// Name returns the provider name used for logging and attribution.
func (m *MockProvider) Name() string {
	return m.name
}

// Fetch returns the configured items or error.
func (m *MockProvider) Fetch(ctx context.Context, interests []string) ([]core.ContentItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	items := make([]core.ContentItem, len(m.items))
	copy(items, m.items)
	return items, nil
}

// SetItems customizes the mock's result set for a test.
func (m *MockProvider) SetItems(items []core.ContentItem) {
	m.items = items
}

// SetError makes every Fetch fail with the given error.
func (m *MockProvider) SetError(err error) {
	m.err = err
}

// SetName customizes the provider name for a test.
func (m *MockProvider) SetName(name string) {
	m.name = name
}
