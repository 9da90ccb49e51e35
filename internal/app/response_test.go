package app

import (
	"testing"
	"time"

	"github.com/deusflow/newslens/internal/analysis"
	"github.com/deusflow/newslens/internal/news"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceBreakdown(t *testing.T) {
	articles := []news.Article{
		{SourceName: "Reuters"}, {SourceName: "Reuters"}, {SourceName: "BBC News"},
	}
	assert.Equal(t, map[string]float64{"Reuters": 66.7, "BBC News": 33.3}, sourceBreakdown(articles))
}

func TestDateRange(t *testing.T) {
	assert.Equal(t, "Unknown date range", dateRange([]news.Article{{}}))
	assert.Equal(t, "2024-06-01", dateRange([]news.Article{
		{PublishedAt: at(testNow)}, {PublishedAt: at(testNow.Add(-time.Hour))}, {},
	}))
	assert.Equal(t, "2024-05-30 to 2024-06-01", dateRange([]news.Article{
		{PublishedAt: at(testNow)}, {PublishedAt: at(testNow.Add(-48 * time.Hour))},
	}))
}

func TestArticleTimeline(t *testing.T) {
	articles := []news.Article{
		{Title: "later", SourceName: "A", QualityScore: 0.6, PublishedAt: at(testNow)},
		{Title: "undated"},
		{Title: "earlier", SourceName: "B", QualityScore: 0.9, PublishedAt: at(testNow.Add(-time.Hour))},
	}
	entries := articleTimeline(articles)
	require.Len(t, entries, 2)
	assert.Equal(t, "earlier", entries[0].Title)
	assert.Equal(t, 0.9, entries[0].Relevance)
	assert.Equal(t, "later", entries[1].Title)
}

func TestHourlyTimeline_UnenrichedResult(t *testing.T) {
	articles := []news.Article{
		{PublishedAt: at(testNow.Add(-30 * time.Minute))},
		{PublishedAt: at(testNow.Add(-20 * time.Minute))},
	}
	result := analysis.AnalysisResult{
		TimelineEvents: []analysis.TimelineEvent{{Event: "Press briefing", Timestamp: "2024-06-01T11:00"}},
	}
	points := hourlyTimeline(articles, result)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-06-01T11:00:00Z", points[0].Timestamp)
	assert.Equal(t, 2, points[0].ArticleCount)
	assert.Equal(t, []string{"Press briefing"}, points[0].KeyEvents)
}

func TestBuildResponse_Defaults(t *testing.T) {
	articles := []news.Article{{Title: "Parliament approves budget", SourceName: "Reuters", SourceDomain: "reuters.com"}}
	resp := buildResponse("budget", articles, analysis.AnalysisResult{Summary: "s"}, 1500*time.Microsecond)

	assert.Equal(t, 0.7, resp.CoverageScore)
	assert.Equal(t, 1.5, resp.ProcessingTimeMS)
	assert.NotNil(t, resp.KeyInsights)
	assert.Equal(t, 1, resp.TotalSources)
	assert.Equal(t, map[string]float64{"reuters.com": 0.9}, resp.Visualization.ReliabilityScores)
}
