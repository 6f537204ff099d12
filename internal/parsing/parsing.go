// Package parsing holds the shared text utilities used to recover
// structured data from generative-model output: JSON extraction from
// free-form text, tolerant ISO-8601 datetime parsing, and removal of
// web-search citation markup.
package parsing

import (
	"regexp"
	"strings"
	"time"
)

var (
	citeClosedRe   = regexp.MustCompile(`<cite[^>]*>([^<]*)</cite>`)
	citeOpenRe     = regexp.MustCompile(`<cite[^>]*>`)
	citeCloseRe    = regexp.MustCompile(`</cite>`)
	fencedJSONMark = "```json"
	fencedMark     = "```"
)

// ExtractJSON pulls a JSON payload out of free-form model output. The text
// may wrap the payload in a markdown fence, surround it with prose, or be
// clean JSON already. Fallback order matters and is tuned against the
// prompts: fenced block tagged json, any fenced block, bracket scan, then
// the trimmed original. ExtractJSON never parses the JSON itself; callers
// must treat a downstream parse failure as zero results.
func ExtractJSON(raw string, expectArray bool) string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, fencedJSONMark); idx != -1 {
		inner := text[idx+len(fencedJSONMark):]
		if end := strings.Index(inner, fencedMark); end != -1 {
			inner = inner[:end]
		}
		return strings.TrimSpace(inner)
	}

	if idx := strings.Index(text, fencedMark); idx != -1 {
		inner := text[idx+len(fencedMark):]
		if end := strings.Index(inner, fencedMark); end != -1 {
			inner = inner[:end]
		}
		return strings.TrimSpace(inner)
	}

	open, close := "{", "}"
	if expectArray {
		open, close = "[", "]"
	}
	start := strings.Index(text, open)
	end := strings.LastIndex(text, close)
	if start != -1 && end != -1 && end > start {
		return strings.TrimSpace(text[start : end+1])
	}

	return text
}

// ParseDateTime parses an ISO-8601 datetime string into a timezone-aware
// UTC instant. A trailing Z is tolerated, and values without an offset are
// assumed to be UTC. Any parse failure yields nil, not an error.
func ParseDateTime(value string) *time.Time {
	if value == "" {
		return nil
	}

	s := strings.TrimSpace(value)
	s = strings.Replace(s, "Z", "+00:00", 1)

	layouts := []string{
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// StripCitations removes web-search citation tags the search stage leaves
// behind, e.g. `<cite index="23-3">text</cite>`. Closed pairs collapse to
// their inner text; dangling open or close tags are deleted outright.
func StripCitations(text string) string {
	if text == "" {
		return text
	}
	text = citeClosedRe.ReplaceAllString(text, "$1")
	text = citeOpenRe.ReplaceAllString(text, "")
	text = citeCloseRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
