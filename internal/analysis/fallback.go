package analysis

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deusflow/newslens/internal/news"
)

const (
	fallbackFullConfidenceAt = 15
	highQualityScore         = 0.8
	summaryExcerptRunes      = 500
)

// Synthesize builds a deterministic analysis from the articles alone. It is
// used when the AI provider fails or is out of budget.
func Synthesize(query string, articles []news.Article, now time.Time) AnalysisResult {
	return synthesize(templateSummary(query, articles, now), articles, now)
}

// SynthesizeFromText is Synthesize for an AI response that could not be
// parsed: the start of the raw text becomes the summary.
func SynthesizeFromText(text string, articles []news.Article, now time.Time) AnalysisResult {
	summary := excerpt(text, summaryExcerptRunes)
	if strings.TrimSpace(summary) == "" {
		summary = fmt.Sprintf("Analysis of recent news articles covering the requested topic. %d articles were processed.", len(articles))
	}
	return synthesize(summary, articles, now)
}

func synthesize(summary string, articles []news.Article, now time.Time) AnalysisResult {
	return AnalysisResult{
		Origin:                OriginFallback,
		Summary:               summary,
		Insights:              fallbackInsights(articles, now),
		ConfidenceScore:       min(1, float64(len(articles))/fallbackFullConfidenceAt),
		CoverageAssessment:    CoverageEnhancedBasic,
		ConflictingViewpoints: false,
	}
}

func templateSummary(query string, articles []news.Article, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analysis of %d articles regarding %q from %d sources reveals significant coverage across multiple news outlets.",
		len(articles), query, len(distinct(domains(articles), 0)))

	names := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.SourceName != "" {
			names = append(names, a.SourceName)
		}
	}
	top := countOrdered(names)
	if len(top) > 3 {
		top = top[:3]
	}
	for i, c := range top {
		switch {
		case i == 0:
			b.WriteString("\n\nTop sources include ")
		case i == 2:
			b.WriteString(", and ")
		default:
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (%d articles)", c.key, c.count)
		if i == len(top)-1 {
			b.WriteString(".")
		}
	}

	highQuality := 0
	for _, a := range articles {
		if a.QualityScore > highQualityScore {
			highQuality++
		}
	}

	fmt.Fprintf(&b, "\n\nThere are %d articles published within the last 24 hours, indicating a timely and ongoing discussion of the topic.", len(publishedToday(articles, now)))
	fmt.Fprintf(&b, "\nAdditionally, %d articles were identified from high-quality sources.", highQuality)
	return b.String()
}

func fallbackInsights(articles []news.Article, now time.Time) []Insight {
	unique := distinct(domains(articles), 0)

	insights := []Insight{{
		Point:      fmt.Sprintf("Coverage from %d different news sources", len(unique)),
		Frequency:  len(unique),
		Confidence: 0.9,
		Sources:    distinct(unique, maxInsightSources),
		Category:   CategoryCoverage,
	}}

	if today := publishedToday(articles, now); len(today) > 0 {
		insights = append(insights, Insight{
			Point:      fmt.Sprintf("%d articles published within the last 24 hours", len(today)),
			Frequency:  len(today),
			Confidence: 0.8,
			Sources:    distinct(domains(today), 3),
			Category:   CategoryTimeline,
		})
	}

	if top := countOrdered(domains(articles)); len(top) > 0 {
		insights = append(insights, Insight{
			Point:      fmt.Sprintf("Most coverage from %s with %d articles", top[0].key, top[0].count),
			Frequency:  top[0].count,
			Confidence: 0.7,
			Sources:    []string{top[0].key},
			Category:   CategorySourceAnalysis,
		})
	}
	return insights
}

// publishedToday returns articles published in the 24 hours before now.
func publishedToday(articles []news.Article, now time.Time) []news.Article {
	var out []news.Article
	for _, a := range articles {
		if a.PublishedAt == nil {
			continue
		}
		if age := now.Sub(*a.PublishedAt); age >= 0 && age < 24*time.Hour {
			out = append(out, a)
		}
	}
	return out
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
