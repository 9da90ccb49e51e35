package analysis

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/deusflow/newslens/internal/news"
)

var (
	positiveKeywords = []string{"success", "growth", "improvement", "progress", "positive", "good", "better"}
	negativeKeywords = []string{"crisis", "problem", "decline", "negative", "bad", "worse", "concern", "threat"}

	highCredibilityDomains = map[string]bool{
		"reuters.com":        true,
		"apnews.com":         true,
		"bbc.com":            true,
		"npr.org":            true,
		"washingtonpost.com": true,
		"nytimes.com":        true,
		"wsj.com":            true,
	}
)

const highCoverageBucket = 3

// Sentiment is a keyword-count polarity over all titles and snippets.
// Keywords are counted as substrings.
func Sentiment(articles []news.Article) SentimentMetrics {
	var pos, neg int
	for _, a := range articles {
		text := articleText(a)
		for _, kw := range positiveKeywords {
			pos += strings.Count(text, kw)
		}
		for _, kw := range negativeKeywords {
			neg += strings.Count(text, kw)
		}
	}

	m := SentimentMetrics{
		OverallSentiment:   "neutral",
		PositiveIndicators: pos,
		NegativeIndicators: neg,
	}
	total := pos + neg
	if total > 0 {
		m.SentimentScore = float64(pos-neg) / float64(total)
	}
	switch {
	case m.SentimentScore > 0.1:
		m.OverallSentiment = "positive"
	case m.SentimentScore < -0.1:
		m.OverallSentiment = "negative"
	}
	if len(articles) > 0 {
		m.Confidence = min(1, float64(total)/float64(len(articles)))
	}
	return m
}

// Timeline buckets dated articles by UTC hour, oldest first.
func Timeline(articles []news.Article) []TimelinePoint {
	counts := make(map[time.Time]int)
	for _, a := range articles {
		if a.PublishedAt == nil {
			continue
		}
		counts[a.PublishedAt.UTC().Truncate(time.Hour)]++
	}

	points := make([]TimelinePoint, 0, len(counts))
	for ts, n := range counts {
		p := TimelinePoint{Timestamp: ts, ArticleCount: n}
		if n >= highCoverageBucket {
			p.KeyEvents = []string{fmt.Sprintf("High coverage period - %d articles", n)}
		}
		points = append(points, p)
	}
	slices.SortFunc(points, func(x, y TimelinePoint) int {
		return x.Timestamp.Compare(y.Timestamp)
	})
	return points
}

// DomainCredibility scores a single domain.
func DomainCredibility(domain string) float64 {
	switch {
	case highCredibilityDomains[domain]:
		return 0.9
	case strings.HasSuffix(domain, ".gov"), strings.HasSuffix(domain, ".edu"):
		return 0.85
	default:
		return 0.7
	}
}

// Credibility averages DomainCredibility over the distinct domains present.
func Credibility(articles []news.Article) CredibilityMetrics {
	scores := make(map[string]float64)
	high := 0
	for _, d := range distinct(domains(articles), 0) {
		scores[d] = DomainCredibility(d)
		if highCredibilityDomains[d] {
			high++
		}
	}

	avg := 0.7
	if len(scores) > 0 {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		avg = sum / float64(len(scores))
	}

	assessment := "low"
	switch {
	case avg > 0.8:
		assessment = "high"
	case avg > 0.6:
		assessment = "medium"
	}

	return CredibilityMetrics{
		AverageCredibility:     avg,
		HighCredibilitySources: high,
		SourceScores:           scores,
		ReliabilityAssessment:  assessment,
	}
}

// Coverage measures source, temporal and content spread. aiInsights is the
// number of insights the analysis carried before enrichment.
func Coverage(articles []news.Article, aiInsights int) CoverageMetrics {
	uniqueDomains := len(distinct(domains(articles), 0))

	var earliest, latest time.Time
	for _, a := range articles {
		if a.PublishedAt == nil {
			continue
		}
		t := *a.PublishedAt
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
		if latest.IsZero() || t.After(latest) {
			latest = t
		}
	}

	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title)
	}

	m := CoverageMetrics{
		SourceDiversityScore:  min(1, float64(uniqueDomains)/10),
		TemporalCoverageHours: latest.Sub(earliest).Hours(),
		TotalInsights:         aiInsights,
		CoverageQuality:       "fair",
	}
	if len(articles) > 0 {
		m.ContentDiversityScore = float64(len(distinct(titles, 0))) / float64(len(articles))
	}
	switch {
	case uniqueDomains >= 8:
		m.CoverageQuality = "excellent"
	case uniqueDomains >= 5:
		m.CoverageQuality = "good"
	}
	return m
}
