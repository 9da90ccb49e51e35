// Package analysis derives insights and metrics from a processed article set
// and merges them with an AI-generated (or synthesized) analysis.
package analysis

import "time"

// Insight categories.
const (
	CategoryKeywordAnalysis       = "keyword_analysis"
	CategoryBreakingNews          = "breaking_news"
	CategoryTemporalPattern       = "temporal_pattern"
	CategorySourceDiversity       = "source_diversity"
	CategoryInternationalCoverage = "international_coverage"
	CategoryCoverage              = "coverage"
	CategoryTimeline              = "timeline"
	CategorySourceAnalysis        = "source_analysis"
	CategoryGeneral               = "general"
)

var knownCategories = map[string]bool{
	CategoryKeywordAnalysis:       true,
	CategoryBreakingNews:          true,
	CategoryTemporalPattern:       true,
	CategorySourceDiversity:       true,
	CategoryInternationalCoverage: true,
	CategoryCoverage:              true,
	CategoryTimeline:              true,
	CategorySourceAnalysis:        true,
	CategoryGeneral:               true,
}

// Coverage assessments.
const (
	CoverageComprehensive = "comprehensive"
	CoveragePartial       = "partial"
	CoverageLimited       = "limited"
	CoverageEnhancedBasic = "enhanced_basic"
)

// Origin records which path produced an AnalysisResult.
type Origin string

const (
	OriginAI       Origin = "ai"
	OriginFallback Origin = "fallback"
)

const (
	maxInsights       = 15
	maxInsightSources = 5
)

type Insight struct {
	Point      string   `json:"point"`
	Frequency  int      `json:"frequency"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
	Category   string   `json:"category"`
}

type TimelineEvent struct {
	Event     string   `json:"event"`
	Timestamp string   `json:"timestamp"`
	Sources   []string `json:"sources"`
}

type SourceAnalysis struct {
	UniqueContributions map[string]string `json:"unique_contributions,omitempty"`
	Corroborations      []string          `json:"corroborations,omitempty"`
	ReliabilityNotes    string            `json:"reliability_notes,omitempty"`
}

type SentimentMetrics struct {
	OverallSentiment   string  `json:"overall_sentiment"`
	SentimentScore     float64 `json:"sentiment_score"`
	PositiveIndicators int     `json:"positive_indicators"`
	NegativeIndicators int     `json:"negative_indicators"`
	Confidence         float64 `json:"confidence"`
}

type CredibilityMetrics struct {
	AverageCredibility     float64            `json:"average_credibility"`
	HighCredibilitySources int                `json:"high_credibility_sources"`
	SourceScores           map[string]float64 `json:"source_scores"`
	ReliabilityAssessment  string             `json:"reliability_assessment"`
}

type CoverageMetrics struct {
	SourceDiversityScore  float64 `json:"source_diversity_score"`
	TemporalCoverageHours float64 `json:"temporal_coverage_hours"`
	ContentDiversityScore float64 `json:"content_diversity_score"`
	TotalInsights         int     `json:"total_insights"`
	CoverageQuality       string  `json:"coverage_quality"`
}

// TimelinePoint is one hour-aligned bucket of dated articles.
type TimelinePoint struct {
	Timestamp    time.Time `json:"timestamp"`
	ArticleCount int       `json:"article_count"`
	KeyEvents    []string  `json:"key_events,omitempty"`
}

type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// AnalysisResult is built once per request, from AI output or the fallback
// synthesizer. The metric fields are nil until Enrich fills them.
type AnalysisResult struct {
	Origin                Origin
	Summary               string
	Insights              []Insight
	ConfidenceScore       float64
	CoverageAssessment    string
	ConflictingViewpoints bool
	SourceAnalysis        *SourceAnalysis
	TimelineEvents        []TimelineEvent

	Sentiment   *SentimentMetrics
	Credibility *CredibilityMetrics
	Coverage    *CoverageMetrics
	Timeline    []TimelinePoint
	Keywords    []KeywordCount
}

// Enriched reports whether the derived metrics are present.
func (r AnalysisResult) Enriched() bool {
	return r.Coverage != nil
}
