package analysis

import (
	"fmt"
	"slices"
	"time"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/news"
)

// EnrichResult is either the enriched analysis or, when Unchanged is set,
// the input analysis returned as-is together with the reason.
type EnrichResult struct {
	Analysis  AnalysisResult
	Unchanged bool
	Reason    error
}

// Enrich merges derived insights into base and attaches sentiment,
// credibility, coverage and timeline metrics. It never fails: any problem
// yields an Unchanged result carrying base.
func Enrich(base AnalysisResult, articles []news.Article, now time.Time) (res EnrichResult) {
	if len(articles) == 0 {
		return EnrichResult{Analysis: base, Unchanged: true, Reason: apperr.ErrNoArticles}
	}

	defer func() {
		if r := recover(); r != nil {
			res = EnrichResult{
				Analysis:  base,
				Unchanged: true,
				Reason:    &apperr.AnalysisError{Message: fmt.Sprintf("enrichment panicked: %v", r)},
			}
		}
	}()

	keywords := SignificantKeywords(articles)

	merged := slices.Clone(base.Insights)
	merged = append(merged, FrequencyInsights(articles, keywords)...)
	merged = append(merged, TemporalInsights(articles, now)...)
	merged = append(merged, DiversityInsights(articles)...)

	out := base
	out.Insights = RankInsights(DedupInsights(merged))
	out.Keywords = keywords

	sentiment := Sentiment(articles)
	credibility := Credibility(articles)
	coverage := Coverage(articles, len(base.Insights))
	out.Sentiment = &sentiment
	out.Credibility = &credibility
	out.Coverage = &coverage
	out.Timeline = Timeline(articles)

	return EnrichResult{Analysis: out}
}
