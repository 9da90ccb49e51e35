package app

import (
	"slices"
	"strings"
	"time"

	"github.com/deusflow/newslens/internal/analysis"
	"github.com/deusflow/newslens/internal/news"
)

const (
	maxSourcesUsed       = 10
	defaultCoverageScore = 0.7
)

type SearchResponse struct {
	Query                 string                       `json:"query"`
	Summary               string                       `json:"summary"`
	KeyInsights           []analysis.Insight           `json:"key_insights"`
	ArticlesProcessed     int                          `json:"articles_processed"`
	ProcessingTimeMS      float64                      `json:"processing_time_ms"`
	AnalysisConfidence    float64                      `json:"analysis_confidence"`
	CoverageScore         float64                      `json:"coverage_score"`
	Visualization         Visualization                `json:"visualization"`
	SourcesUsed           []news.Article               `json:"sources_used"`
	TotalSources          int                          `json:"total_sources"`
	DateRange             string                       `json:"date_range"`
	CoverageAssessment    string                       `json:"coverage_assessment"`
	AnalysisOrigin        analysis.Origin              `json:"analysis_origin"`
	ConflictingViewpoints bool                         `json:"conflicting_viewpoints"`
	SourceAnalysis        *analysis.SourceAnalysis     `json:"source_analysis,omitempty"`
	Sentiment             *analysis.SentimentMetrics   `json:"sentiment,omitempty"`
	Credibility           *analysis.CredibilityMetrics `json:"credibility,omitempty"`
	CoverageMetrics       *analysis.CoverageMetrics    `json:"coverage_metrics,omitempty"`
}

// Visualization holds chart-ready series.
type Visualization struct {
	SourceBreakdown      map[string]float64 `json:"source_breakdown"`
	Timeline             []TimelineEntry    `json:"timeline"`
	ComponentFrequencies map[string]int     `json:"component_frequencies"`
	ReliabilityScores    map[string]float64 `json:"reliability_scores"`
	HourlyTimeline       []HourlyPoint      `json:"hourly_timeline"`
}

type TimelineEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Relevance float64   `json:"relevance"`
}

type HourlyPoint struct {
	Timestamp    string   `json:"timestamp"`
	ArticleCount int      `json:"article_count"`
	KeyEvents    []string `json:"key_events,omitempty"`
}

func buildResponse(query string, articles []news.Article, result analysis.AnalysisResult, elapsed time.Duration) *SearchResponse {
	insights := result.Insights
	if insights == nil {
		insights = []analysis.Insight{}
	}
	coverageScore := defaultCoverageScore
	if result.Coverage != nil {
		coverageScore = result.Coverage.SourceDiversityScore
	}

	return &SearchResponse{
		Query:                 query,
		Summary:               result.Summary,
		KeyInsights:           insights,
		ArticlesProcessed:     len(articles),
		ProcessingTimeMS:      round(float64(elapsed.Microseconds())/1000, 2),
		AnalysisConfidence:    result.ConfidenceScore,
		CoverageScore:         coverageScore,
		Visualization:         buildVisualization(articles, result),
		SourcesUsed:           articles[:min(maxSourcesUsed, len(articles))],
		TotalSources:          countDomains(articles),
		DateRange:             dateRange(articles),
		CoverageAssessment:    result.CoverageAssessment,
		AnalysisOrigin:        result.Origin,
		ConflictingViewpoints: result.ConflictingViewpoints,
		SourceAnalysis:        result.SourceAnalysis,
		Sentiment:             result.Sentiment,
		Credibility:           result.Credibility,
		CoverageMetrics:       result.Coverage,
	}
}

func buildVisualization(articles []news.Article, result analysis.AnalysisResult) Visualization {
	return Visualization{
		SourceBreakdown:      sourceBreakdown(articles),
		Timeline:             articleTimeline(articles),
		ComponentFrequencies: componentFrequencies(result.Keywords),
		ReliabilityScores:    reliabilityScores(articles, result.Credibility),
		HourlyTimeline:       hourlyTimeline(articles, result),
	}
}

// sourceBreakdown is each source's share of the articles in percent.
func sourceBreakdown(articles []news.Article) map[string]float64 {
	counts := make(map[string]int)
	for _, a := range articles {
		name := a.SourceName
		if name == "" {
			name = a.SourceDomain
		}
		counts[name]++
	}
	out := make(map[string]float64, len(counts))
	for name, n := range counts {
		out[name] = round(float64(n)/float64(len(articles))*100, 1)
	}
	return out
}

func articleTimeline(articles []news.Article) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(articles))
	for _, a := range articles {
		if a.PublishedAt == nil {
			continue
		}
		entries = append(entries, TimelineEntry{
			Timestamp: *a.PublishedAt,
			Title:     a.Title,
			Source:    a.SourceName,
			Relevance: a.QualityScore,
		})
	}
	slices.SortStableFunc(entries, func(x, y TimelineEntry) int {
		return x.Timestamp.Compare(y.Timestamp)
	})
	return entries
}

func componentFrequencies(keywords []analysis.KeywordCount) map[string]int {
	out := make(map[string]int, len(keywords))
	for _, k := range keywords {
		out[k.Word] = k.Count
	}
	return out
}

func reliabilityScores(articles []news.Article, cred *analysis.CredibilityMetrics) map[string]float64 {
	if cred != nil && cred.SourceScores != nil {
		return cred.SourceScores
	}
	out := make(map[string]float64)
	for _, a := range articles {
		out[a.SourceDomain] = analysis.DomainCredibility(a.SourceDomain)
	}
	return out
}

// hourlyTimeline buckets articles by hour. AI timeline events attach to the
// buckets whose RFC 3339 timestamp starts with the event timestamp.
func hourlyTimeline(articles []news.Article, result analysis.AnalysisResult) []HourlyPoint {
	buckets := result.Timeline
	if buckets == nil {
		buckets = analysis.Timeline(articles)
	}

	points := make([]HourlyPoint, len(buckets))
	for i, b := range buckets {
		points[i] = HourlyPoint{
			Timestamp:    b.Timestamp.UTC().Format(time.RFC3339),
			ArticleCount: b.ArticleCount,
			KeyEvents:    slices.Clone(b.KeyEvents),
		}
	}
	for _, ev := range result.TimelineEvents {
		ts := strings.TrimSpace(ev.Timestamp)
		if ts == "" || ev.Event == "" {
			continue
		}
		for i := range points {
			if strings.HasPrefix(points[i].Timestamp, ts) {
				points[i].KeyEvents = append(points[i].KeyEvents, ev.Event)
			}
		}
	}
	return points
}

func countDomains(articles []news.Article) int {
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		seen[a.SourceDomain] = struct{}{}
	}
	return len(seen)
}

// dateRange renders the publication span as "YYYY-MM-DD" or
// "YYYY-MM-DD to YYYY-MM-DD".
func dateRange(articles []news.Article) string {
	var dates []time.Time
	for _, a := range articles {
		if a.PublishedAt != nil {
			dates = append(dates, a.PublishedAt.UTC())
		}
	}
	if len(dates) == 0 {
		return "Unknown date range"
	}
	first := slices.MinFunc(dates, func(x, y time.Time) int { return x.Compare(y) })
	last := slices.MaxFunc(dates, func(x, y time.Time) int { return x.Compare(y) })

	from, to := first.Format(time.DateOnly), last.Format(time.DateOnly)
	if from == to {
		return from
	}
	return from + " to " + to
}
