package core

import "time"

const (
	// MaxContentAgeDays is the content-freshness window: items older than
	// this many days are excluded by providers that can determine age.
	MaxContentAgeDays = 10

	// MinItemsThreshold is the minimum item count a provider's result must
	// meet before the curator accepts it without trying the next provider.
	MinItemsThreshold = 3
)

// SourceType classifies where a content item came from.
type SourceType string

const (
	SourceArticle SourceType = "article"
	SourceTweet   SourceType = "tweet"
	SourceVideo   SourceType = "video"
	SourceReddit  SourceType = "reddit"
)

// FreshnessCutoff returns the oldest publication time still eligible for
// inclusion, relative to now.
func FreshnessCutoff(now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -MaxContentAgeDays)
}

// ContentItem is the canonical unit of curated content.
type ContentItem struct {
	Headline      string     `json:"headline"`
	Summary       string     `json:"summary"`
	SourceType    SourceType `json:"source_type"`
	SourceName    string     `json:"source_name"`
	URL           string     `json:"url"` // Opaque identifier, also the dedup key
	Relevance     string     `json:"relevance"`
	PublishedAt   *time.Time `json:"published_at,omitempty"` // Timezone-aware UTC when present
	ThumbnailURL  string     `json:"thumbnail_url,omitempty"`
	TweetID       string     `json:"tweet_id,omitempty"`       // Derived from the URL for tweets
	ScreenshotURL string     `json:"screenshot_url,omitempty"` // Populated post-hoc by embed decoration
	AuthorHandle  string     `json:"author_handle,omitempty"`  // @username, only meaningful for tweets
}

// CuratedNewsletter is the curator's output for one curation request.
// It is constructed once and not mutated afterwards.
type CuratedNewsletter struct {
	Items         []ContentItem `json:"items"`
	GeneratedAt   time.Time     `json:"generated_at"`   // Stamped at orchestration time, UTC
	InterestsUsed []string      `json:"interests_used"` // The exact input, unmodified
	ProviderUsed  string        `json:"provider_used"`  // "none" if every provider failed
}

// ProviderDebugResult reports one provider's outcome in diagnostic mode.
type ProviderDebugResult struct {
	Provider   string        `json:"provider"`
	Success    bool          `json:"success"`
	ItemsCount int           `json:"items_count"`
	Error      string        `json:"error,omitempty"`
	Items      []ContentItem `json:"items"` // Bounded sample, first 3 at most
}

// User identifies a newsletter recipient.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Preference is one interest a user follows.
type Preference struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	InterestType string    `json:"interest_type"`           // "team", "athlete", or "custom"
	InterestName string    `json:"interest_name"`           // e.g. "Dallas Cowboys"
	InterestData string    `json:"interest_data,omitempty"` // Optional JSON blob (logo URL, league, ...)
	CreatedAt    time.Time `json:"created_at"`
}

// Newsletter is a persisted, rendered newsletter for one user.
type Newsletter struct {
	ID            string     `json:"id"`
	UserID        int64      `json:"user_id"`
	Content       string     `json:"content"` // Rendered HTML
	ContentJSON   string     `json:"content_json,omitempty"`
	InterestsUsed []string   `json:"interests_used"`
	ProviderUsed  string     `json:"provider_used"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
