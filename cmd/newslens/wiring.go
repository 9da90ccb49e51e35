package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deusflow/newslens/internal/app"
	"github.com/deusflow/newslens/internal/cache"
	"github.com/deusflow/newslens/internal/config"
	"github.com/deusflow/newslens/internal/gemini"
	"github.com/deusflow/newslens/internal/metrics"
	"github.com/deusflow/newslens/internal/news"
	"github.com/deusflow/newslens/internal/openai"
	"github.com/deusflow/newslens/internal/ratelimit"
	"github.com/deusflow/newslens/internal/retry"
	"github.com/deusflow/newslens/internal/scraper"
	"github.com/deusflow/newslens/internal/search"
)

// deps is everything a command needs, built from one Config.
type deps struct {
	pipeline *app.Pipeline
	metrics  *metrics.Metrics
	stats    map[string]func() map[string]any
	close    func()
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*deps, error) {
	m := metrics.Global
	stats := map[string]func() map[string]any{}

	provider, err := newSearchProvider(cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.SearchCacheTTL > 0 {
		c := cache.New[[]news.RawArticle](cfg.SearchCacheSize, cfg.SearchCacheTTL)
		provider = search.NewCachedProvider(provider, c, m, log)
		stats["search_cache"] = c.GetStats
	}

	analyzer, closeAI, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var budget *ratelimit.Budget
	if cfg.MaxAIRequestsPerDay > 0 || cfg.AIRequestsPerMinute > 0 {
		budget = ratelimit.NewBudget(analyzer.Name(), cfg.MaxAIRequestsPerDay, cfg.AIRequestsPerMinute, log)
		stats["ai_budget"] = budget.GetStats
	}

	p := app.NewPipeline(provider, analyzer, budget, m, app.Options{
		SearchMaxResults:     cfg.SearchMaxResults,
		MaxArticlesPerSearch: cfg.MaxArticlesPerSearch,
		Retry: retry.RetryConfig{
			MaxAttempts:    cfg.MaxRetries,
			MinDelay:       cfg.RetryMinDelay,
			MaxDelay:       cfg.RetryMaxDelay,
			AttemptTimeout: cfg.RequestTimeout,
		},
	}, log)

	return &deps{pipeline: p, metrics: m, stats: stats, close: closeAI}, nil
}

func newSearchProvider(cfg *config.Config, log *slog.Logger) (search.Provider, error) {
	switch cfg.SearchProvider {
	case "rss":
		feeds, err := search.LoadFeeds(cfg.FeedsConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load feeds: %w", err)
		}
		log.Info("Loaded search feeds", "count", len(feeds), "path", cfg.FeedsConfigPath)
		p := search.NewRSSProvider(feeds, cfg.RequestTimeout, log)
		if cfg.FetchArticlePage {
			p.WithPageReader(scraper.New(cfg.RequestTimeout, log), 0)
		}
		return p, nil
	default:
		return search.NewTavilyClient(search.TavilyConfig{
			APIKey:      cfg.TavilyAPIKey,
			BaseURL:     cfg.TavilyBaseURL,
			SearchDepth: cfg.TavilySearchDepth,
			Timeout:     cfg.RequestTimeout,
		}, log), nil
	}
}

func newAnalyzer(ctx context.Context, cfg *config.Config, log *slog.Logger) (app.Analyzer, func(), error) {
	switch cfg.AIProvider {
	case "openai":
		a := openai.New(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.AITemperature,
			MaxTokens:   int(cfg.AIMaxTokens),
		}, log)
		return a, func() {}, nil
	default:
		a, err := gemini.New(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.AITemperature,
			MaxTokens:   cfg.AIMaxTokens,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return a, func() {
			if err := a.Close(); err != nil {
				log.Warn("Failed to close Gemini client", "error", err)
			}
		}, nil
	}
}
