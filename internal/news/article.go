// Package news turns raw provider results into a clean, scored, ranked and
// deduplicated article set.
package news

import (
	"strings"
	"time"
)

// RawArticle is a search result as reported by a provider. Only URL is required.
type RawArticle struct {
	Title        string
	URL          string
	Source       string
	SourceDomain string
	Content      string
	PublishedAt  *time.Time
}

// Article is a normalized article. QualityScore is attached by the Processor.
type Article struct {
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	SourceName   string     `json:"source_name"`
	SourceDomain string     `json:"source_domain"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	Snippet      string     `json:"snippet,omitempty"`
	QualityScore float64    `json:"quality_score"`
}

// HoursSince returns the age of the article at now, or false if it is undated.
func (a Article) HoursSince(now time.Time) (float64, bool) {
	if a.PublishedAt == nil {
		return 0, false
	}
	return now.Sub(*a.PublishedAt).Hours(), true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// ParseTimestamp parses the timestamp shapes providers emit. Layouts without a
// zone are read as UTC. The result is always in UTC; nil means unparseable.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
