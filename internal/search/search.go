// Package search provides the article search providers the pipeline
// collects raw results from.
package search

import (
	"context"
	"strings"

	"github.com/deusflow/newslens/internal/news"
)

// Query describes one article search.
type Query struct {
	Text           string
	MaxResults     int
	TimeRange      string
	IncludeDomains []string
	ExcludeDomains []string
}

// Provider is an article search backend. Failures are reported as
// *apperr.ExternalServiceError so callers can decide whether to retry.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]news.RawArticle, error)
	HealthCheck(ctx context.Context) error
}

var timeRangeDays = map[string]float64{
	"1h":  0.04,
	"6h":  0.25,
	"12h": 0.5,
	"24h": 1,
	"48h": 2,
	"7d":  7,
	"30d": 30,
}

// TimeRanges lists the accepted time range values.
var TimeRanges = []string{"1h", "6h", "12h", "24h", "48h", "7d", "30d"}

// TimeRangeDays converts a time range to the fractional day window search
// backends expect. Unknown values map to one day.
func TimeRangeDays(tr string) float64 {
	if d, ok := timeRangeDays[tr]; ok {
		return d
	}
	return 1
}

// domainMatches reports whether domain is d or a subdomain of it.
func domainMatches(domain, d string) bool {
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	d = strings.TrimPrefix(strings.ToLower(d), "www.")
	return domain == d || strings.HasSuffix(domain, "."+d)
}

func domainAllowed(domain string, include, exclude []string) bool {
	for _, d := range exclude {
		if domainMatches(domain, d) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, d := range include {
		if domainMatches(domain, d) {
			return true
		}
	}
	return false
}
