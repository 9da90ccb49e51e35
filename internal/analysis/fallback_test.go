package analysis

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newslens/internal/news"
)

func fallbackArticles() []news.Article {
	a1 := article("Climate bill clears committee", "reuters.com", ts(now.Add(-time.Hour)))
	a1.SourceName, a1.QualityScore = "Reuters", 0.9
	a2 := article("Climate bill heads to floor", "reuters.com", ts(now.Add(-30*time.Hour)))
	a2.SourceName, a2.QualityScore = "Reuters", 0.5
	a3 := article("What the climate bill means", "bbc.com", nil)
	a3.SourceName, a3.QualityScore = "BBC News", 0.85
	return []news.Article{a1, a2, a3}
}

func TestSynthesize(t *testing.T) {
	res := Synthesize("climate policy", fallbackArticles(), now)

	assert.Equal(t, OriginFallback, res.Origin)
	assert.Equal(t, CoverageEnhancedBasic, res.CoverageAssessment)
	assert.False(t, res.ConflictingViewpoints)
	assert.InDelta(t, 0.2, res.ConfidenceScore, 1e-9)

	want := `Analysis of 3 articles regarding "climate policy" from 2 sources reveals significant coverage across multiple news outlets.` +
		"\n\nTop sources include Reuters (2 articles), BBC News (1 articles)." +
		"\n\nThere are 1 articles published within the last 24 hours, indicating a timely and ongoing discussion of the topic." +
		"\nAdditionally, 2 articles were identified from high-quality sources."
	assert.Equal(t, want, res.Summary)

	require.Len(t, res.Insights, 3)
	assert.Equal(t, Insight{
		Point: "Coverage from 2 different news sources", Frequency: 2, Confidence: 0.9,
		Sources: []string{"reuters.com", "bbc.com"}, Category: CategoryCoverage,
	}, res.Insights[0])
	assert.Equal(t, Insight{
		Point: "1 articles published within the last 24 hours", Frequency: 1, Confidence: 0.8,
		Sources: []string{"reuters.com"}, Category: CategoryTimeline,
	}, res.Insights[1])
	assert.Equal(t, Insight{
		Point: "Most coverage from reuters.com with 2 articles", Frequency: 2, Confidence: 0.7,
		Sources: []string{"reuters.com"}, Category: CategorySourceAnalysis,
	}, res.Insights[2])
}

func TestSynthesize_ThreeTopSourcesAndFullConfidence(t *testing.T) {
	var articles []news.Article
	for i, d := range []string{"a.com", "b.com", "a.com", "c.com", "b.com", "a.com", "d.com"} {
		articles = append(articles, article(fmt.Sprintf("Headline %d", i), d, nil))
	}
	for i := range 10 {
		articles = append(articles, article(fmt.Sprintf("Extra %d", i), "e.com", nil))
	}

	res := Synthesize("q", articles, now)

	assert.Contains(t, res.Summary, "Top sources include e.com (10 articles), a.com (3 articles), and b.com (2 articles).")
	assert.InDelta(t, 1.0, res.ConfidenceScore, 1e-9)
	// No dated articles: no recency insight.
	assert.Len(t, res.Insights, 2)
	assert.Equal(t, []string{"a.com", "b.com", "c.com", "d.com", "e.com"}, res.Insights[0].Sources)
}

func TestSynthesizeFromText(t *testing.T) {
	articles := fallbackArticles()

	long := strings.Repeat("x", 600)
	res := SynthesizeFromText(long, articles, now)
	assert.Equal(t, strings.Repeat("x", 500)+"...", res.Summary)
	assert.Equal(t, CoverageEnhancedBasic, res.CoverageAssessment)
	assert.InDelta(t, 0.2, res.ConfidenceScore, 1e-9)

	short := SynthesizeFromText("The model said things.", articles, now)
	assert.Equal(t, "The model said things.", short.Summary)

	empty := SynthesizeFromText("   ", articles, now)
	assert.Equal(t, "Analysis of recent news articles covering the requested topic. 3 articles were processed.", empty.Summary)
}

func TestPublishedToday_ExcludesFuture(t *testing.T) {
	articles := []news.Article{
		article("future", "a.com", ts(now.Add(time.Hour))),
		article("edge", "a.com", ts(now.Add(-24*time.Hour))),
		article("fresh", "a.com", ts(now.Add(-23*time.Hour))),
	}
	got := publishedToday(articles, now)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Title)
}
