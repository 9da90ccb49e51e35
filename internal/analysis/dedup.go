package analysis

import (
	"cmp"
	"slices"
	"strings"

	"github.com/deusflow/newslens/internal/news"
)

const insightSimilarity = 0.6

// DedupInsights drops insights whose point text overlaps an earlier kept one
// by more than 60% of words. Earlier insights win.
func DedupInsights(insights []Insight) []Insight {
	var (
		kept []Insight
		seen []map[string]struct{}
	)
	for _, in := range insights {
		tokens := news.TokenSet(strings.ToLower(strings.TrimSpace(in.Point)))
		if pointSeen(tokens, seen) {
			continue
		}
		kept = append(kept, in)
		seen = append(seen, tokens)
	}
	return kept
}

func pointSeen(tokens map[string]struct{}, seen []map[string]struct{}) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, s := range seen {
		if len(s) > 0 && news.Jaccard(tokens, s) > insightSimilarity {
			return true
		}
	}
	return false
}

// RankInsights sorts by confidence descending, keeping order for ties, and
// keeps at most 15.
func RankInsights(insights []Insight) []Insight {
	ranked := slices.Clone(insights)
	slices.SortStableFunc(ranked, func(x, y Insight) int {
		return cmp.Compare(y.Confidence, x.Confidence)
	})
	if len(ranked) > maxInsights {
		ranked = ranked[:maxInsights]
	}
	return ranked
}
