package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/news"
)

func TestEnrich_NoArticles(t *testing.T) {
	base := AnalysisResult{Origin: OriginAI, Summary: "s", Insights: []Insight{{Point: "x", Frequency: 1, Confidence: 0.5}}}

	res := Enrich(base, nil, now)

	assert.True(t, res.Unchanged)
	assert.ErrorIs(t, res.Reason, apperr.ErrNoArticles)
	assert.Equal(t, base, res.Analysis)
	assert.False(t, res.Analysis.Enriched())
}

func TestEnrich_SingleSourceScenario(t *testing.T) {
	snippet := strings.Repeat("Officials outlined the measures in detail. ", 6)
	var articles []news.Article
	for i := range 5 {
		a := article(fmt.Sprintf("Unique headline number %c about policy", 'A'+i), "reuters.com", ts(now.Add(-time.Duration(i*30)*time.Minute)))
		a.Snippet = snippet
		articles = append(articles, a)
	}

	res := Enrich(AnalysisResult{Origin: OriginAI, Summary: "ai"}, articles, now)
	require.False(t, res.Unchanged)
	out := res.Analysis

	for _, in := range out.Insights {
		assert.NotEqual(t, CategorySourceDiversity, in.Category)
		assert.LessOrEqual(t, in.Frequency, len(articles))
	}
	assert.Contains(t, points(out.Insights), "International perspective from 5 global sources")

	require.NotNil(t, out.Credibility)
	assert.InDelta(t, 0.9, out.Credibility.AverageCredibility, 1e-9)
	require.NotNil(t, out.Coverage)
	assert.Equal(t, "fair", out.Coverage.CoverageQuality)
	assert.InDelta(t, 2.0, out.Coverage.TemporalCoverageHours, 1e-9)
	assert.NotNil(t, out.Sentiment)
	assert.NotEmpty(t, out.Timeline)
	assert.Equal(t, "ai", out.Summary)
}

func TestEnrich_SingleSourceScenarioFromRaw(t *testing.T) {
	titles := []string{
		"Central bank raises interest rates again",
		"Flooding forces thousands from coastal homes",
		"Tech giants face new antitrust inquiry",
		"Election officials certify regional results",
		"Researchers report progress on malaria vaccine",
	}
	content := strings.Repeat("Officials outlined the measures in detail on Saturday. ", 5)

	var raw []news.RawArticle
	for i, title := range titles {
		raw = append(raw, news.RawArticle{
			Title:       title,
			URL:         fmt.Sprintf("https://www.reuters.com/world/story-%d", i),
			Content:     content,
			PublishedAt: ts(now.Add(-time.Duration(i*30) * time.Minute)),
		})
	}

	p := news.NewProcessor(slog.New(slog.NewTextHandler(io.Discard, nil)))
	articles := p.Deduplicate(p.Process(raw, now))
	require.Len(t, articles, 5)
	for _, a := range articles {
		assert.Equal(t, "reuters.com", a.SourceDomain)
		assert.Equal(t, "Reuters", a.SourceName)
		assert.True(t, news.IsValid(a))
	}

	res := Enrich(AnalysisResult{Origin: OriginAI, Summary: "ai"}, articles, now)
	require.False(t, res.Unchanged)
	out := res.Analysis

	for _, in := range out.Insights {
		assert.NotEqual(t, CategorySourceDiversity, in.Category)
	}
	assert.InDelta(t, 0.9, out.Credibility.AverageCredibility, 1e-9)
	assert.Equal(t, "fair", out.Coverage.CoverageQuality)
	assert.InDelta(t, 2.0, out.Coverage.TemporalCoverageHours, 1e-9)
}

func TestEnrich_CapAndOrder(t *testing.T) {
	var ai []Insight
	for i := range 20 {
		ai = append(ai, Insight{
			Point:      fmt.Sprintf("finding%d", i),
			Frequency:  1,
			Confidence: float64(i%7) / 7,
			Category:   CategoryGeneral,
		})
	}
	articles := []news.Article{article("Storm hits the coast", "bbc.com", ts(now))}

	res := Enrich(AnalysisResult{Insights: ai}, articles, now)

	out := res.Analysis.Insights
	assert.Len(t, out, 15)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Confidence, out[i].Confidence)
	}
	assert.Equal(t, 20, res.Analysis.Coverage.TotalInsights)
}

func TestEnrich_AIInsightWinsDuplicate(t *testing.T) {
	articles := []news.Article{
		article("Budget vote delayed", "a.com", nil),
		article("Budget talks resume", "b.com", nil),
		article("Budget deal reached", "c.com", nil),
	}
	ai := []Insight{{
		Point:      "Frequent mention of 'budget' across many sources",
		Frequency:  3,
		Confidence: 0.4,
		Category:   CategoryGeneral,
	}}

	res := Enrich(AnalysisResult{Insights: ai}, articles, now)

	var budget []Insight
	for _, in := range res.Analysis.Insights {
		if strings.Contains(in.Point, "'budget'") {
			budget = append(budget, in)
		}
	}
	require.Len(t, budget, 1)
	assert.InDelta(t, 0.4, budget[0].Confidence, 1e-9)
	assert.Equal(t, CategoryGeneral, budget[0].Category)
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	ai := []Insight{{Point: "b", Confidence: 0.1}, {Point: "a", Confidence: 0.9}}
	base := AnalysisResult{Insights: ai}

	Enrich(base, []news.Article{article("Some headline here", "a.com", nil)}, now)

	assert.Equal(t, "b", base.Insights[0].Point)
}

func TestDedupInsights(t *testing.T) {
	in := []Insight{
		{Point: "Coverage from 5 different news sources"},
		{Point: "  COVERAGE from 5 different news sources  "},
		{Point: "Comprehensive coverage from 5 different news sources"},
		{Point: ""},
		{Point: ""},
		{Point: "Peak coverage during 10:00 hour"},
	}
	got := points(DedupInsights(in))
	assert.Equal(t, []string{
		"Coverage from 5 different news sources",
		"",
		"",
		"Peak coverage during 10:00 hour",
	}, got)
}
