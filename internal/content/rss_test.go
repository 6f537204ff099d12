package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
)

type feedEntry struct {
	title   string
	link    string
	pubDate time.Time
}

func rssXML(entries ...feedEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Test Feed</title>`)
	for _, e := range entries {
		fmt.Fprintf(&b, "<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>",
			e.title, e.link, e.pubDate.Format(time.RFC1123Z))
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRelevantFeedsAlwaysIncludesGeneral(t *testing.T) {
	feeds := relevantFeeds([]string{"curling"})
	if len(feeds) != 1 || feeds[0] != "general" {
		t.Errorf("Expected only the general feed, got %v", feeds)
	}
}

func TestRelevantFeedsRoutesByKeyword(t *testing.T) {
	feeds := relevantFeeds([]string{"Kansas City Chiefs", "LeBron James"})

	want := map[string]bool{"general": false, "nfl": false, "nba": false}
	for _, f := range feeds {
		if _, ok := want[f]; !ok {
			t.Errorf("Unexpected feed %q selected", f)
			continue
		}
		want[f] = true
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("Expected feed %q to be selected", f)
		}
	}
}

func TestRelevantFeedsPlayerSurname(t *testing.T) {
	feeds := relevantFeeds([]string{"Mahomes highlights"})
	found := false
	for _, f := range feeds {
		if f == "nfl" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected nfl feed for Mahomes, got %v", feeds)
	}
}

func TestMatchingInterestsWholeMatch(t *testing.T) {
	matched := matchingInterests("The Lakers beat the Celtics in overtime", []string{"Lakers", "Warriors"})
	if len(matched) != 1 || matched[0] != "lakers" {
		t.Errorf("Expected [lakers], got %v", matched)
	}
}

func TestMatchingInterestsWordFallback(t *testing.T) {
	matched := matchingInterests("Mahomes throws five touchdowns", []string{"Patrick Mahomes"})
	if len(matched) != 1 || matched[0] != "patrick mahomes" {
		t.Errorf("Expected word fallback match, got %v", matched)
	}
}

func TestMatchingInterestsNoWordFallbackForSingleWord(t *testing.T) {
	matched := matchingInterests("A story about mahomeland security", []string{"NFL"})
	if len(matched) != 0 {
		t.Errorf("Expected no match, got %v", matched)
	}
}

func TestMatchingInterestsShortWordsIgnored(t *testing.T) {
	// "the" is under the length floor and must not match on its own.
	matched := matchingInterests("the game was close", []string{"the Spurs"})
	if len(matched) != 0 {
		t.Errorf("Expected short words ignored, got %v", matched)
	}
}

func TestRelevanceScoreCountsInterests(t *testing.T) {
	item := core.ContentItem{
		Headline: "Lakers trade watch",
		Summary:  "LeBron and the Warriors react",
	}
	score := relevanceScore(item, []string{"Lakers", "Warriors", "Celtics"})
	if score != 2 {
		t.Errorf("Expected score 2, got %d", score)
	}
}

func TestCleanSummaryStripsHTML(t *testing.T) {
	got := cleanSummary(`<p>Big <b>win</b> for the <a href="#">home team</a></p>`)
	if got != "Big win for the home team" {
		t.Errorf("Expected HTML stripped, got %q", got)
	}
}

func TestCleanSummaryTruncates(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := cleanSummary(long)
	if len(got) != rssSummaryMaxLen {
		t.Errorf("Expected length %d, got %d", rssSummaryMaxLen, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", got[len(got)-10:])
	}
}

func TestCleanSummaryTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 300)
	got := cleanSummary(long)

	if !utf8.ValidString(got) {
		t.Fatal("Expected valid UTF-8 after truncation")
	}
	if n := len([]rune(got)); n != rssSummaryMaxLen {
		t.Errorf("Expected %d runes, got %d", rssSummaryMaxLen, n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected ellipsis suffix")
	}
}

func TestCleanSummaryShortUntouched(t *testing.T) {
	if got := cleanSummary("short"); got != "short" {
		t.Errorf("Expected unchanged summary, got %q", got)
	}
}

func TestRSSProviderName(t *testing.T) {
	p := NewRSSProvider(config.Feeds{})
	if p.Name() != "rss" {
		t.Errorf("Expected provider name rss, got %q", p.Name())
	}
}

func TestFetchDeduplicatesAcrossFeeds(t *testing.T) {
	now := time.Now().UTC()
	shared := "https://espn.example/story/chiefs-trade"

	general := serveFeed(t, rssXML(
		feedEntry{"Chiefs make a trade", shared, now.Add(-time.Hour)},
		feedEntry{"Chiefs sign a kicker", "https://espn.example/story/kicker", now.Add(-2 * time.Hour)},
	))
	nfl := serveFeed(t, rssXML(
		feedEntry{"Chiefs trade, NFL edition", shared, now.Add(-time.Hour)},
		feedEntry{"Chiefs injury report", "https://espn.example/story/injury", now.Add(-3 * time.Hour)},
	))

	p := NewRSSProvider(config.Feeds{})
	p.feedURLs = map[string]string{"general": general.URL, "nfl": nfl.URL}

	items, err := p.Fetch(context.Background(), []string{"Chiefs"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items after dedup, got %d", len(items))
	}

	var sharedCount int
	for _, item := range items {
		if item.URL == shared {
			sharedCount++
			// The general feed merges first, so its version wins.
			if item.Headline != "Chiefs make a trade" {
				t.Errorf("Expected the general feed's entry kept, got %q", item.Headline)
			}
		}
	}
	if sharedCount != 1 {
		t.Errorf("Expected shared URL to contribute one item, got %d", sharedCount)
	}
}

func TestFetchSkipsStaleEntries(t *testing.T) {
	now := time.Now().UTC()
	general := serveFeed(t, rssXML(
		feedEntry{"Chiefs fresh news", "https://espn.example/story/fresh", now.Add(-time.Hour)},
		feedEntry{"Chiefs old news", "https://espn.example/story/old", now.AddDate(0, 0, -(core.MaxContentAgeDays + 5))},
	))

	p := NewRSSProvider(config.Feeds{})
	p.feedURLs = map[string]string{"general": general.URL, "nfl": general.URL}

	items, err := p.Fetch(context.Background(), []string{"Chiefs"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected only the fresh item, got %d", len(items))
	}
	if items[0].Headline != "Chiefs fresh news" {
		t.Errorf("Expected fresh item kept, got %q", items[0].Headline)
	}
}

func TestFetchContinuesPastFailingFeed(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	now := time.Now().UTC()
	nfl := serveFeed(t, rssXML(
		feedEntry{"Chiefs clinch the division", "https://espn.example/story/clinch", now.Add(-time.Hour)},
	))

	p := NewRSSProvider(config.Feeds{})
	p.feedURLs = map[string]string{"general": failing.URL, "nfl": nfl.URL}

	items, err := p.Fetch(context.Background(), []string{"Chiefs"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected the healthy feed's item, got %d items", len(items))
	}
	if items[0].Headline != "Chiefs clinch the division" {
		t.Errorf("Unexpected item %q", items[0].Headline)
	}
}

func TestFetchCapsItemCount(t *testing.T) {
	now := time.Now().UTC()
	entries := make([]feedEntry, 0, rssMaxItems+3)
	for i := 0; i < rssMaxItems+3; i++ {
		entries = append(entries, feedEntry{
			title:   fmt.Sprintf("Chiefs story %d", i),
			link:    fmt.Sprintf("https://espn.example/story/%d", i),
			pubDate: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	general := serveFeed(t, rssXML(entries...))

	p := NewRSSProvider(config.Feeds{})
	p.feedURLs = map[string]string{"general": general.URL}

	items, err := p.Fetch(context.Background(), []string{"Chiefs"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != rssMaxItems {
		t.Errorf("Expected at most %d items, got %d", rssMaxItems, len(items))
	}
}

func TestFetchSetsItemFields(t *testing.T) {
	now := time.Now().UTC()
	general := serveFeed(t, rssXML(
		feedEntry{"Chiefs win again", "https://espn.example/story/win", now.Add(-time.Hour)},
	))

	p := NewRSSProvider(config.Feeds{})
	p.feedURLs = map[string]string{"general": general.URL}

	items, err := p.Fetch(context.Background(), []string{"Chiefs"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.SourceType != core.SourceArticle {
		t.Errorf("Expected article source type, got %s", item.SourceType)
	}
	if item.SourceName != "ESPN" {
		t.Errorf("Expected source ESPN, got %q", item.SourceName)
	}
	if item.PublishedAt == nil {
		t.Error("Expected published_at parsed from pubDate")
	}
	if !strings.Contains(item.Relevance, "chiefs") {
		t.Errorf("Expected relevance to name the interest, got %q", item.Relevance)
	}
}
