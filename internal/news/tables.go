package news

import "strings"

// Process-wide lookup tables. Never mutated after init.

const (
	defaultReliability = 0.5
	minQualityScore    = 0.3
	maxSnippetRunes    = 500
)

var reliableDomains = map[string]float64{
	"reuters.com":        0.95,
	"apnews.com":         0.95,
	"bbc.com":            0.9,
	"npr.org":            0.9,
	"washingtonpost.com": 0.85,
	"nytimes.com":        0.85,
	"wsj.com":            0.85,
	"bloomberg.com":      0.85,
	"economist.com":      0.85,
	"cnn.com":            0.8,
	"abcnews.go.com":     0.8,
	"nbcnews.com":        0.8,
	"cbsnews.com":        0.8,
	"theguardian.com":    0.8,
	"usatoday.com":       0.75,
	"foxnews.com":        0.7,
}

var domainNames = map[string]string{
	"reuters.com":        "Reuters",
	"apnews.com":         "Associated Press",
	"bbc.com":            "BBC News",
	"npr.org":            "NPR",
	"washingtonpost.com": "The Washington Post",
	"nytimes.com":        "The New York Times",
	"wsj.com":            "The Wall Street Journal",
	"cnn.com":            "CNN",
	"abcnews.go.com":     "ABC News",
	"nbcnews.com":        "NBC News",
	"cbsnews.com":        "CBS News",
	"theguardian.com":    "The Guardian",
	"usatoday.com":       "USA Today",
	"foxnews.com":        "Fox News",
	"bloomberg.com":      "Bloomberg",
	"economist.com":      "The Economist",
}

// unknownSources are placeholder values providers use for a missing source.
var unknownSources = map[string]bool{
	"":            true,
	"unknown":     true,
	"n/a":         true,
	"unknown.com": true,
}

// titlePrefixes are stripped in order before title comparison.
var titlePrefixes = []string{"breaking:", "update:", "exclusive:", "live:"}

// Reliability returns the reputation of domain, or the neutral default.
func Reliability(domain string) float64 {
	if v, ok := reliableDomains[domain]; ok {
		return v
	}
	return defaultReliability
}

// IsUnknownSource reports whether s is empty or a placeholder, ignoring case.
func IsUnknownSource(s string) bool {
	return unknownSources[strings.ToLower(strings.TrimSpace(s))]
}
