package news

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// IsValid is the minimum bar an article must clear to be kept.
func IsValid(a Article) bool {
	if utf8.RuneCountInString(strings.TrimSpace(a.Title)) < 10 {
		return false
	}
	if !strings.HasPrefix(a.URL, "http://") && !strings.HasPrefix(a.URL, "https://") {
		return false
	}
	if IsUnknownSource(a.SourceDomain) {
		return false
	}
	return a.QualityScore >= minQualityScore
}

// RankKey blends quality with a linear one-week recency decay.
func RankKey(a Article, now time.Time) float64 {
	recency := 0.0
	if hours, ok := a.HoursSince(now); ok {
		recency = max(0, 1-hours/168)
	}
	return 0.7*a.QualityScore + 0.3*recency
}

// RankByQuality returns a copy sorted by RankKey descending. Ties keep input order.
func RankByQuality(articles []Article, now time.Time) []Article {
	ranked := slices.Clone(articles)
	slices.SortStableFunc(ranked, func(x, y Article) int {
		return cmp.Compare(RankKey(y, now), RankKey(x, now))
	})
	return ranked
}
