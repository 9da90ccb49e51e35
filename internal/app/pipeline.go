// Package app runs the search pipeline: collect articles, clean them,
// analyze them and shape the response.
package app

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/deusflow/newslens/internal/analysis"
	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/deusflow/newslens/internal/metrics"
	"github.com/deusflow/newslens/internal/news"
	"github.com/deusflow/newslens/internal/ratelimit"
	"github.com/deusflow/newslens/internal/retry"
	"github.com/deusflow/newslens/internal/search"
	"github.com/google/uuid"
)

// Analyzer is a generative model that answers an analysis prompt with text.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, prompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

type Options struct {
	// SearchMaxResults is how many results are requested from the provider.
	SearchMaxResults int
	// MaxArticlesPerSearch caps the deduplicated article set.
	MaxArticlesPerSearch int
	Retry                retry.RetryConfig
}

// Pipeline is safe for concurrent use; each request works on its own data.
type Pipeline struct {
	search    search.Provider
	analyzer  Analyzer
	budget    *ratelimit.Budget
	processor *news.Processor
	metrics   *metrics.Metrics
	log       *slog.Logger
	opts      Options
	now       func() time.Time
}

// NewPipeline wires the pipeline. analyzer and budget may be nil: without an
// analyzer every request uses the synthesized analysis.
func NewPipeline(provider search.Provider, analyzer Analyzer, budget *ratelimit.Budget, m *metrics.Metrics, opts Options, log *slog.Logger) *Pipeline {
	log = logger.OrDefault(log)
	if m == nil {
		m = metrics.Global
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = apperr.IsRetryableExternal
	}
	return &Pipeline{
		search:    provider,
		analyzer:  analyzer,
		budget:    budget,
		processor: news.NewProcessor(log),
		metrics:   m,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

func (p *Pipeline) Search() search.Provider { return p.search }

func (p *Pipeline) Analyzer() Analyzer { return p.analyzer }

type requestIDKey struct{}

// WithRequestID tags ctx so pipeline logs can be correlated with a transport request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// ProcessSearchRequest runs one query end to end. req must already be
// normalized and validated. Search failures and empty article sets abort with
// a *apperr.ContentProcessingError; AI failures degrade to a synthesized analysis.
func (p *Pipeline) ProcessSearchRequest(ctx context.Context, req SearchRequest) (resp *SearchResponse, err error) {
	start := time.Now()
	now := p.now().UTC()
	log := p.log.With("request_id", requestID(ctx))

	log.Info("Starting search pipeline",
		"query", req.Query, "max_articles", req.MaxArticles, "time_range", req.TimeRange)

	defer func() {
		elapsed := time.Since(start)
		p.metrics.RecordRequest(elapsed, err)
		if err != nil {
			log.Error("Search pipeline failed",
				"query", req.Query, "processing_time_ms", elapsed.Milliseconds(), "error", err)
		}
	}()

	raw, err := p.collect(ctx, req, log)
	if err != nil {
		return nil, apperr.NewContentProcessing("Failed to collect articles",
			map[string]any{"query": req.Query, "time_range": req.TimeRange}, err)
	}
	p.metrics.RecordArticles("raw", len(raw))
	if len(raw) == 0 {
		return nil, apperr.NewContentProcessing("No articles found for the given query and filters",
			map[string]any{"query": req.Query, "time_range": req.TimeRange}, nil)
	}

	processed := p.processor.Process(raw, now)
	articles := p.processor.Deduplicate(processed)
	if limit := p.opts.MaxArticlesPerSearch; limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	p.metrics.RecordArticles("processed", len(processed))
	p.metrics.RecordArticles("unique", len(articles))

	log.Info("Content processing completed",
		"original_count", len(raw),
		"after_processing", len(processed),
		"final_count", len(articles))

	if len(articles) == 0 {
		return nil, apperr.NewContentProcessing("No articles passed content quality filters",
			map[string]any{"query": req.Query, "raw_articles_count": len(raw)}, nil)
	}

	base := p.analyze(ctx, req.Query, articles, now, log)

	res := analysis.Enrich(base, articles, now)
	if res.Unchanged {
		log.Warn("Analysis enrichment skipped, using base analysis", "error", res.Reason)
	}
	result := res.Analysis
	p.metrics.RecordAnalysis(string(result.Origin), result.Enriched())

	elapsed := time.Since(start)
	resp = buildResponse(req.Query, articles, result, elapsed)

	log.Info("Search pipeline completed",
		"query", req.Query,
		"processing_time_ms", resp.ProcessingTimeMS,
		"articles_processed", resp.ArticlesProcessed,
		"insights_generated", len(resp.KeyInsights),
		"analysis_origin", result.Origin)
	return resp, nil
}

// collect queries the provider with retry and applies the raw collection
// rules: repeated URLs and titles dropped, newest first, capped at MaxArticles.
func (p *Pipeline) collect(ctx context.Context, req SearchRequest, log *slog.Logger) ([]news.RawArticle, error) {
	q := search.Query{
		Text:           req.Query,
		MaxResults:     p.opts.SearchMaxResults,
		TimeRange:      req.TimeRange,
		IncludeDomains: req.IncludeSources,
		ExcludeDomains: req.ExcludeSources,
	}
	if q.MaxResults <= 0 {
		q.MaxResults = req.MaxArticles
	}

	var found []news.RawArticle
	err := retry.WithRetry(ctx, p.opts.Retry, func(ctx context.Context) error {
		callStart := time.Now()
		results, err := p.search.Search(ctx, q)
		p.metrics.RecordExternalCall(p.search.Name(), err, time.Since(callStart))
		if err != nil {
			log.Warn("Search attempt failed", "service", p.search.Name(), "error", err)
			return err
		}
		found = results
		return nil
	})
	if err != nil {
		return nil, err
	}

	prepared := news.PrepareRaw(found, req.MaxArticles)
	log.Info("Article collection completed",
		"total_found", len(found), "final_count", len(prepared))
	return prepared, nil
}

// analyze asks the AI provider for an analysis and falls back to a
// synthesized one when the call fails or the answer cannot be parsed.
func (p *Pipeline) analyze(ctx context.Context, query string, articles []news.Article, now time.Time, log *slog.Logger) analysis.AnalysisResult {
	if p.analyzer == nil {
		return analysis.Synthesize(query, articles, now)
	}

	prompt := analysis.BuildPrompt(query, articles)
	log.Info("Starting AI analysis", "service", p.analyzer.Name(), "article_count", len(articles))

	var text string
	err := retry.WithRetry(ctx, p.opts.Retry, func(ctx context.Context) error {
		if p.budget != nil {
			if err := p.budget.Acquire(ctx); err != nil {
				return err
			}
		}
		callStart := time.Now()
		out, err := p.analyzer.Analyze(ctx, prompt)
		p.metrics.RecordExternalCall(p.analyzer.Name(), err, time.Since(callStart))
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		log.Warn("AI analysis failed, falling back to basic analysis", "error", err)
		return analysis.Synthesize(query, articles, now)
	}

	result, err := analysis.ParseResponse(text, len(articles), log)
	if err != nil {
		log.Warn("AI response could not be parsed, using text fallback",
			"error", err, "response_length", len(text))
		return analysis.SynthesizeFromText(text, articles, now)
	}

	log.Info("AI analysis completed",
		"insights_count", len(result.Insights), "confidence_score", result.ConfidenceScore)
	return result
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
