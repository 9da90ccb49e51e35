package search

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/deusflow/newslens/internal/cache"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/deusflow/newslens/internal/metrics"
	"github.com/deusflow/newslens/internal/news"
)

// CachedProvider reuses results of identical searches while they are fresh.
type CachedProvider struct {
	Provider
	cache   *cache.Cache[[]news.RawArticle]
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewCachedProvider(inner Provider, c *cache.Cache[[]news.RawArticle], m *metrics.Metrics, log *slog.Logger) *CachedProvider {
	return &CachedProvider{Provider: inner, cache: c, metrics: m, log: logger.OrDefault(log)}
}

func (p *CachedProvider) Search(ctx context.Context, q Query) ([]news.RawArticle, error) {
	key := cacheKey(p.Provider.Name(), q)
	if hit, ok := p.cache.Get(key); ok {
		p.record(true)
		p.log.Debug("Search cache hit", "query", q.Text, "results", len(hit))
		return clone(hit), nil
	}
	p.record(false)

	results, err := p.Provider.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, clone(results))
	return results, nil
}

func (p *CachedProvider) record(hit bool) {
	if p.metrics != nil {
		p.metrics.RecordCacheLookup(hit)
	}
}

func cacheKey(provider string, q Query) string {
	return cache.GenerateKey(
		provider,
		strings.ToLower(strings.TrimSpace(q.Text)),
		strconv.Itoa(q.MaxResults),
		q.TimeRange,
		strings.Join(q.IncludeDomains, ","),
		strings.Join(q.ExcludeDomains, ","),
	)
}

func clone(in []news.RawArticle) []news.RawArticle {
	if in == nil {
		return nil
	}
	return append([]news.RawArticle(nil), in...)
}
