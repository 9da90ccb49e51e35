package news

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/deusflow/newslens/internal/logger"
)

// Processor runs normalization, scoring, filtering and ranking over a batch.
type Processor struct {
	log *slog.Logger
}

func NewProcessor(log *slog.Logger) *Processor {
	return &Processor{log: logger.OrDefault(log)}
}

// Process normalizes and scores every raw result, drops the ones that fail
// the validity gate and ranks the rest. A bad article never fails the batch.
func (p *Processor) Process(raw []RawArticle, now time.Time) []Article {
	p.log.Info("Starting article processing", "article_count", len(raw))

	processed := make([]Article, 0, len(raw))
	for i, r := range raw {
		a, err := Normalize(r)
		if err != nil {
			p.log.Warn("Failed to process article",
				"article_url", r.URL, "article_index", i, "error", err)
			continue
		}
		a.QualityScore = Score(a, now)
		if !IsValid(a) {
			p.log.Debug("Article filtered out during processing",
				"article_url", a.URL, "quality_score", a.QualityScore)
			continue
		}
		processed = append(processed, a)
	}

	processed = RankByQuality(processed, now)

	p.log.Info("Article processing completed",
		"original_count", len(raw),
		"processed_count", len(processed),
		"filtered_out", len(raw)-len(processed))
	return processed
}

// Deduplicate wraps Deduplicate with logging.
func (p *Processor) Deduplicate(articles []Article) []Article {
	unique := Deduplicate(articles)
	p.log.Info("Article deduplication completed",
		"original_count", len(articles),
		"unique_count", len(unique),
		"duplicates_removed", len(articles)-len(unique))
	return unique
}

// PrepareRaw drops raw results repeating a URL or an exact title, orders the
// rest newest first (undated last) and keeps at most limit of them.
func PrepareRaw(raw []RawArticle, limit int) []RawArticle {
	seenURLs := make(map[string]bool)
	seenTitles := make(map[string]bool)
	out := make([]RawArticle, 0, len(raw))

	for _, r := range raw {
		u := strings.TrimSpace(r.URL)
		t := strings.ToLower(strings.TrimSpace(r.Title))
		if u != "" && seenURLs[u] {
			continue
		}
		if t != "" && seenTitles[t] {
			continue
		}
		seenURLs[u] = true
		seenTitles[t] = true
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(x, y RawArticle) int {
		switch {
		case x.PublishedAt == nil && y.PublishedAt == nil:
			return 0
		case x.PublishedAt == nil:
			return 1
		case y.PublishedAt == nil:
			return -1
		}
		return cmp.Compare(y.PublishedAt.UnixNano(), x.PublishedAt.UnixNano())
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
