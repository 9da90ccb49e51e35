package news

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	weightSource  = 0.40
	weightTitle   = 0.25
	weightContent = 0.20
	weightRecency = 0.15
)

// Score rates an article in [0,1] from source reputation, title shape,
// snippet length and age at now.
func Score(a Article, now time.Time) float64 {
	score := Reliability(a.SourceDomain) * weightSource
	score += titleQuality(a.Title) * weightTitle
	score += contentQuality(a.Snippet) * weightContent
	if hours, ok := a.HoursSince(now); ok {
		score += recencyQuality(hours) * weightRecency
	}
	return clamp01(score)
}

func titleQuality(title string) float64 {
	if title == "" {
		return 0
	}
	q := min(1, float64(utf8.RuneCountInString(title))/100)
	if strings.Count(title, "!") <= 1 && strings.Count(title, "?") <= 1 {
		q += 0.2
	}
	return min(1, q)
}

func contentQuality(snippet string) float64 {
	if snippet == "" {
		return 0
	}
	n := utf8.RuneCountInString(snippet)
	q := min(1, float64(n)/200)
	if n < 50 {
		q *= 0.5
	}
	return q
}

func recencyQuality(hours float64) float64 {
	switch {
	case hours <= 24:
		return 1.0
	case hours <= 48:
		return 0.8
	case hours <= 168:
		return 0.6
	default:
		return 0.3
	}
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
