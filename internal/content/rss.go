package content

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/logger"
)

const (
	rssMaxEntriesPerFeed = 20
	rssMaxItems          = 7
	rssSummaryMaxLen     = 200
)

// rssFeedURLs maps sport categories to their feed sources.
var rssFeedURLs = map[string]string{
	"general": "https://www.espn.com/espn/rss/news",
	"nfl":     "https://www.espn.com/espn/rss/nfl/news",
	"nba":     "https://www.espn.com/espn/rss/nba/news",
	"mlb":     "https://www.espn.com/espn/rss/mlb/news",
	"nhl":     "https://www.espn.com/espn/rss/nhl/news",
	"soccer":  "https://www.espn.com/espn/rss/soccer/news",
}

// rssFeedOrder fixes the merge order so dedup across feeds is
// deterministic regardless of fetch completion order.
var rssFeedOrder = []string{"general", "nfl", "nba", "mlb", "nhl", "soccer"}

// sportKeywords routes interests to sport categories by case-insensitive
// substring match: team names, player surnames, league names.
var sportKeywords = map[string][]string{
	"nfl": {"nfl", "football", "patriots", "cowboys", "packers", "chiefs", "49ers", "eagles",
		"bills", "dolphins", "jets", "ravens", "steelers", "bengals", "browns", "texans",
		"colts", "jaguars", "titans", "broncos", "chargers", "raiders", "seahawks",
		"cardinals", "rams", "saints", "buccaneers", "falcons", "panthers", "bears",
		"lions", "vikings", "commanders", "giants", "mahomes", "burrow", "allen"},
	"nba": {"nba", "basketball", "lakers", "celtics", "warriors", "nets", "knicks", "bulls",
		"heat", "bucks", "suns", "clippers", "mavericks", "nuggets", "76ers", "grizzlies",
		"timberwolves", "pelicans", "kings", "thunder", "lebron", "curry", "durant",
		"giannis", "jokic", "doncic", "tatum", "embiid"},
	"mlb": {"mlb", "baseball", "yankees", "red sox", "dodgers", "cubs", "astros", "braves",
		"mets", "phillies", "padres", "mariners", "cardinals", "giants", "rangers",
		"angels", "tigers", "twins", "rays", "brewers", "ohtani", "trout", "judge"},
	"nhl": {"nhl", "hockey", "bruins", "rangers", "maple leafs", "canadiens", "blackhawks",
		"penguins", "capitals", "red wings", "flyers", "avalanche", "lightning",
		"golden knights", "oilers", "flames", "mcdavid", "crosby", "ovechkin"},
	"soccer": {"soccer", "premier league", "la liga", "mls", "manchester united", "liverpool",
		"chelsea", "arsenal", "manchester city", "barcelona", "real madrid", "inter miami",
		"messi", "ronaldo", "haaland", "mbappe"},
}

// RSSProvider aggregates ESPN RSS feeds. It needs no credentials and is
// the always-available fallback: interests route to sport-specific feeds
// by keyword, entries are filtered by interest match and freshness,
// deduplicated by URL, and ranked by how many interests they mention.
type RSSProvider struct {
	parser *gofeed.Parser

	// feedURLs maps feed names to their source URLs. Defaults to the ESPN
	// table; swappable for tests.
	feedURLs map[string]string
}

// NewRSSProvider creates the RSS fallback provider.
func NewRSSProvider(cfg config.Feeds) *RSSProvider {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	parser.Client = &http.Client{Timeout: config.ParseDuration(cfg.Timeout, 30*time.Second)}
	return &RSSProvider{parser: parser, feedURLs: rssFeedURLs}
}

// Name returns the provider name used for logging and attribution.
func (p *RSSProvider) Name() string {
	return string(ProviderTypeRSS)
}

// Fetch selects the relevant feeds, fetches them concurrently, and merges
// the results deterministically.
func (p *RSSProvider) Fetch(ctx context.Context, interests []string) ([]core.ContentItem, error) {
	selected := relevantFeeds(interests)
	cutoff := core.FreshnessCutoff(time.Now())

	// Feed fetches share no mutable state, so they run in parallel; the
	// merge below walks feeds in fixed order to keep dedup deterministic.
	results := make([][]core.ContentItem, len(selected))
	var wg sync.WaitGroup
	for i, name := range selected {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			items, err := p.fetchFeed(ctx, p.feedURLs[name], interests, cutoff)
			if err != nil {
				logger.Warn("feed fetch failed", "feed", name, "error", err.Error())
				return
			}
			results[i] = items
		}(i, name)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var all []core.ContentItem
	for _, items := range results {
		for _, item := range items {
			if item.URL == "" || seen[item.URL] {
				continue
			}
			seen[item.URL] = true
			all = append(all, item)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return relevanceScore(all[i], interests) > relevanceScore(all[j], interests)
	})

	if len(all) > rssMaxItems {
		all = all[:rssMaxItems]
	}
	return all, nil
}

// relevantFeeds returns the feed names to fetch: always the general feed,
// plus any sport whose keyword list matches an interest.
func relevantFeeds(interests []string) []string {
	selected := []string{"general"}
	for _, sport := range rssFeedOrder {
		if sport == "general" {
			continue
		}
		if sportMatchesInterests(sport, interests) {
			selected = append(selected, sport)
		}
	}
	return selected
}

func sportMatchesInterests(sport string, interests []string) bool {
	for _, interest := range interests {
		lowered := strings.ToLower(interest)
		for _, kw := range sportKeywords[sport] {
			if strings.Contains(lowered, kw) {
				return true
			}
		}
	}
	return false
}

// fetchFeed fetches one feed and converts its matching entries.
func (p *RSSProvider) fetchFeed(ctx context.Context, feedURL string, interests []string, cutoff time.Time) ([]core.ContentItem, error) {
	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	entries := feed.Items
	if len(entries) > rssMaxEntriesPerFeed {
		entries = entries[:rssMaxEntriesPerFeed]
	}

	var items []core.ContentItem
	for _, entry := range entries {
		var publishedAt *time.Time
		if entry.PublishedParsed != nil {
			utc := entry.PublishedParsed.UTC()
			if utc.Before(cutoff) {
				continue
			}
			publishedAt = &utc
		}

		matched := matchingInterests(entry.Title+" "+entry.Description, interests)
		if len(matched) == 0 {
			continue
		}

		items = append(items, core.ContentItem{
			Headline:     entry.Title,
			Summary:      cleanSummary(entry.Description),
			SourceType:   core.SourceArticle,
			SourceName:   "ESPN",
			URL:          entry.Link,
			Relevance:    "Matches your interest in " + strings.Join(matched, ", "),
			PublishedAt:  publishedAt,
			ThumbnailURL: entryThumbnail(entry),
		})
	}
	return items, nil
}

// matchingInterests returns the interests an entry's text mentions. A match
// is a case-insensitive substring of the whole interest, or, for
// multi-word interests, of any individual word longer than 3 characters
// (so "Mahomes" satisfies the interest "Patrick Mahomes").
func matchingInterests(entryText string, interests []string) []string {
	text := strings.ToLower(entryText)

	var matched []string
	for _, interest := range interests {
		lowered := strings.ToLower(interest)
		if strings.Contains(text, lowered) {
			matched = append(matched, lowered)
			continue
		}

		words := strings.Fields(lowered)
		if len(words) < 2 {
			continue
		}
		for _, word := range words {
			if len(word) > 3 && strings.Contains(text, word) {
				matched = append(matched, lowered)
				break
			}
		}
	}
	return matched
}

// relevanceScore counts how many distinct interests an item's text
// mentions; items matching more interests rank higher.
func relevanceScore(item core.ContentItem, interests []string) int {
	return len(matchingInterests(item.Headline+" "+item.Summary, interests))
}

// cleanSummary strips HTML markup and truncates long summaries. Truncation
// counts runes so a multi-byte character at the boundary is never split.
func cleanSummary(summary string) string {
	clean := summary
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary)); err == nil {
		clean = doc.Text()
	}
	clean = strings.TrimSpace(clean)
	if runes := []rune(clean); len(runes) > rssSummaryMaxLen {
		clean = string(runes[:rssSummaryMaxLen-3]) + "..."
	}
	return clean
}

func entryThumbnail(entry *gofeed.Item) string {
	if entry.Image != nil {
		return entry.Image.URL
	}
	if media, ok := entry.Extensions["media"]; ok {
		for _, ext := range media["thumbnail"] {
			if url, ok := ext.Attrs["url"]; ok {
				return url
			}
		}
		for _, ext := range media["content"] {
			if url, ok := ext.Attrs["url"]; ok {
				return url
			}
		}
	}
	return ""
}
