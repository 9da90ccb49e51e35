package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/deusflow/newslens/internal/news"
)

const (
	keywordCandidates   = 20
	keywordMinCount     = 2
	keywordInsightCount = 5
	keywordInsightMin   = 3

	breakingWindow = 6 * time.Hour
	peakHourMin    = 3

	diversityMinDomains = 5
)

var stopWords = map[string]bool{
	"news": true, "said": true, "says": true, "also": true, "after": true,
	"that": true, "this": true, "with": true, "from": true, "they": true,
	"their": true, "have": true, "been": true, "were": true, "will": true,
	"would": true, "could": true, "should": true, "about": true, "other": true,
	"which": true, "what": true, "when": true,
}

var internationalOutlets = []string{
	"reuters.com", "bbc.com", "aljazeera.com", "dw.com", "france24.com",
}

// SignificantKeywords counts keywords across all titles and snippets and
// returns the non stop-words among the 20 most frequent that occur at least
// twice.
func SignificantKeywords(articles []news.Article) []KeywordCount {
	var words []string
	for _, a := range articles {
		words = append(words, keywords(articleText(a))...)
	}

	top := countOrdered(words)
	if len(top) > keywordCandidates {
		top = top[:keywordCandidates]
	}

	var out []KeywordCount
	for _, c := range top {
		if stopWords[c.key] || c.count < keywordMinCount {
			continue
		}
		out = append(out, KeywordCount{Word: c.key, Count: c.count})
	}
	return out
}

// FrequencyInsights reports the top keywords mentioned at least three times.
func FrequencyInsights(articles []news.Article, significant []KeywordCount) []Insight {
	n := len(articles)
	if n == 0 {
		return nil
	}

	var insights []Insight
	for i, kw := range significant {
		if i == keywordInsightCount {
			break
		}
		if kw.Count < keywordInsightMin {
			continue
		}

		var mentioning []string
		for _, a := range articles {
			if strings.Contains(articleText(a), kw.Word) {
				mentioning = append(mentioning, a.SourceDomain)
			}
		}

		insights = append(insights, Insight{
			Point:      fmt.Sprintf("Frequent mention of '%s' across multiple sources", kw.Word),
			Frequency:  min(kw.Count, n),
			Confidence: min(0.8, float64(kw.Count)/float64(n)),
			Sources:    distinct(mentioning, 3),
			Category:   CategoryKeywordAnalysis,
		})
	}
	return insights
}

// TemporalInsights reports a breaking-news burst and the busiest hour of day.
func TemporalInsights(articles []news.Article, now time.Time) []Insight {
	var dated []news.Article
	for _, a := range articles {
		if a.PublishedAt != nil {
			dated = append(dated, a)
		}
	}
	if len(dated) == 0 {
		return nil
	}

	var insights []Insight

	var recent []news.Article
	for _, a := range dated {
		if now.Sub(*a.PublishedAt) < breakingWindow {
			recent = append(recent, a)
		}
	}
	if len(recent) > 0 {
		insights = append(insights, Insight{
			Point:      fmt.Sprintf("Breaking: %d articles published in last 6 hours", len(recent)),
			Frequency:  len(recent),
			Confidence: 0.9,
			Sources:    distinct(domains(recent), 3),
			Category:   CategoryBreakingNews,
		})
	}

	hours := make([]string, 0, len(dated))
	for _, a := range dated {
		hours = append(hours, fmt.Sprintf("%02d", a.PublishedAt.Hour()))
	}
	peak := countOrdered(hours)[0]
	if peak.count >= peakHourMin {
		var inPeak []string
		for _, a := range dated {
			if fmt.Sprintf("%02d", a.PublishedAt.Hour()) == peak.key {
				inPeak = append(inPeak, a.SourceDomain)
			}
		}
		insights = append(insights, Insight{
			Point:      fmt.Sprintf("Peak coverage during %s:00 hour", peak.key),
			Frequency:  peak.count,
			Confidence: 0.7,
			Sources:    distinct(inPeak, 3),
			Category:   CategoryTemporalPattern,
		})
	}
	return insights
}

// DiversityInsights reports broad source coverage and international outlets.
func DiversityInsights(articles []news.Article) []Insight {
	var insights []Insight

	unique := distinct(domains(articles), 0)
	if len(unique) >= diversityMinDomains {
		insights = append(insights, Insight{
			Point:      fmt.Sprintf("Comprehensive coverage from %d different news sources", len(unique)),
			Frequency:  len(unique),
			Confidence: 0.85,
			Sources:    unique[:maxInsightSources],
			Category:   CategorySourceDiversity,
		})
	}

	var international []string
	for _, a := range articles {
		if isInternational(a.SourceDomain) {
			international = append(international, a.SourceDomain)
		}
	}
	if len(international) > 0 {
		insights = append(insights, Insight{
			Point:      fmt.Sprintf("International perspective from %d global sources", len(international)),
			Frequency:  len(international),
			Confidence: 0.8,
			Sources:    distinct(international, 3),
			Category:   CategoryInternationalCoverage,
		})
	}
	return insights
}

func isInternational(domain string) bool {
	for _, outlet := range internationalOutlets {
		if strings.Contains(domain, outlet) {
			return true
		}
	}
	return false
}
