package content

import (
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/parsing"
	"github.com/seanmtli/personalnewsletter/internal/screenshot"
)

// NormalizeItem converts a loosely-typed JSON record from a generative
// provider into a ContentItem. Missing fields get safe defaults, dates are
// normalized to UTC instants, citation markup is stripped, and tweet
// identifiers are derived from the URL. Normalizing an already-clean
// record is a no-op.
func NormalizeItem(record map[string]any) core.ContentItem {
	sourceType := core.SourceType(stringField(record, "source_type"))
	if sourceType == "" {
		sourceType = core.SourceArticle
	}

	sourceName := stringField(record, "source_name")
	if sourceName == "" {
		sourceName = "Unknown"
	}

	url := stringField(record, "url")
	authorHandle := stringField(record, "author_handle")

	var tweetID string
	if sourceType == core.SourceTweet && url != "" {
		tweetID = screenshot.ExtractTweetID(url)
		if authorHandle == "" {
			authorHandle = screenshot.ExtractAuthorHandle(url)
		}
	}

	return core.ContentItem{
		Headline:     parsing.StripCitations(stringField(record, "headline")),
		Summary:      parsing.StripCitations(stringField(record, "summary")),
		SourceType:   sourceType,
		SourceName:   sourceName,
		URL:          url,
		Relevance:    parsing.StripCitations(stringField(record, "relevance")),
		PublishedAt:  parsing.ParseDateTime(stringField(record, "published_at")),
		ThumbnailURL: stringField(record, "thumbnail_url"),
		TweetID:      tweetID,
		AuthorHandle: authorHandle,
	}
}

// stringField reads a string value from an untyped record, returning ""
// for absent, null, or non-string values.
func stringField(record map[string]any, key string) string {
	if v, ok := record[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
