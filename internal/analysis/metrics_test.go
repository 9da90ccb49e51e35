package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newslens/internal/news"
)

func TestSentiment(t *testing.T) {
	articles := []news.Article{
		article("Strong growth and progress reported", "a.com", nil),
		article("Analysts voice concern", "b.com", nil),
	}

	m := Sentiment(articles)
	assert.Equal(t, 2, m.PositiveIndicators)
	assert.Equal(t, 1, m.NegativeIndicators)
	assert.InDelta(t, 1.0/3, m.SentimentScore, 1e-9)
	assert.Equal(t, "positive", m.OverallSentiment)
	assert.InDelta(t, 1.0, m.Confidence, 1e-9)
}

func TestSentiment_SubstringCounting(t *testing.T) {
	m := Sentiment([]news.Article{article("badly bad threat", "a.com", nil)})
	assert.Equal(t, 3, m.NegativeIndicators)
	assert.Equal(t, "negative", m.OverallSentiment)
	assert.InDelta(t, -1.0, m.SentimentScore, 1e-9)
}

func TestSentiment_Neutral(t *testing.T) {
	m := Sentiment([]news.Article{article("Council meets on Tuesday", "a.com", nil)})
	assert.Equal(t, "neutral", m.OverallSentiment)
	assert.Zero(t, m.SentimentScore)
	assert.Zero(t, m.Confidence)
}

func TestTimeline(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	articles := []news.Article{
		article("late", "a.com", ts(base.Add(90*time.Minute))),
		article("first", "a.com", ts(base.Add(5*time.Minute))),
		article("undated", "a.com", nil),
		article("second", "a.com", ts(base.Add(40*time.Minute))),
		article("third", "a.com", ts(base.Add(59*time.Minute))),
	}

	points := Timeline(articles)
	require.Len(t, points, 2)

	assert.True(t, base.Equal(points[0].Timestamp))
	assert.Equal(t, 3, points[0].ArticleCount)
	assert.Equal(t, []string{"High coverage period - 3 articles"}, points[0].KeyEvents)

	assert.True(t, base.Add(time.Hour).Equal(points[1].Timestamp))
	assert.Equal(t, 1, points[1].ArticleCount)
	assert.Nil(t, points[1].KeyEvents)
}

func TestCredibility(t *testing.T) {
	tests := []struct {
		name      string
		domains   []string
		wantAvg   float64
		wantLabel string
		wantHigh  int
	}{
		{"single reputable outlet", []string{"reuters.com", "reuters.com"}, 0.9, "high", 1},
		{"mixed", []string{"reuters.com", "whitehouse.gov", "blog.com"}, (0.9 + 0.85 + 0.7) / 3, "high", 1},
		{"unknown only", []string{"blog.com", "mit.edu"}, (0.7 + 0.85) / 2, "medium", 0},
		{"no articles", nil, 0.7, "medium", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var articles []news.Article
			for i, d := range tt.domains {
				articles = append(articles, article(string(rune('a'+i)), d, nil))
			}
			m := Credibility(articles)
			assert.InDelta(t, tt.wantAvg, m.AverageCredibility, 1e-9)
			assert.Equal(t, tt.wantLabel, m.ReliabilityAssessment)
			assert.Equal(t, tt.wantHigh, m.HighCredibilitySources)
		})
	}
}

func TestCoverage(t *testing.T) {
	articles := []news.Article{
		article("One", "a.com", ts(now.Add(-3*time.Hour))),
		article("Two", "b.com", ts(now.Add(-30*time.Minute))),
		article("One", "c.com", nil),
		article("Three", "d.com", ts(now.Add(-time.Hour))),
		article("Four", "e.com", nil),
	}

	m := Coverage(articles, 4)
	assert.InDelta(t, 0.5, m.SourceDiversityScore, 1e-9)
	assert.InDelta(t, 2.5, m.TemporalCoverageHours, 1e-9)
	assert.InDelta(t, 0.8, m.ContentDiversityScore, 1e-9)
	assert.Equal(t, 4, m.TotalInsights)
	assert.Equal(t, "good", m.CoverageQuality)
}

func TestCoverage_Quality(t *testing.T) {
	var articles []news.Article
	for i := range 12 {
		articles = append(articles, article(string(rune('a'+i)), string(rune('a'+i))+".com", nil))
	}
	m := Coverage(articles, 0)
	assert.Equal(t, "excellent", m.CoverageQuality)
	assert.InDelta(t, 1.0, m.SourceDiversityScore, 1e-9)
	assert.Zero(t, m.TemporalCoverageHours)
}
