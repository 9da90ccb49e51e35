package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deusflow/newslens/internal/cache"
	"github.com/deusflow/newslens/internal/metrics"
	"github.com/deusflow/newslens/internal/news"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Name() string { return "fake" }

func (p *countingProvider) Search(ctx context.Context, q Query) ([]news.RawArticle, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []news.RawArticle{{Title: q.Text, URL: "https://reuters.com/a"}}, nil
}

func (p *countingProvider) HealthCheck(ctx context.Context) error { return p.err }

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	m := metrics.New()
	p := NewCachedProvider(inner, cache.New[[]news.RawArticle](8, time.Minute), m, quiet())
	ctx := context.Background()

	first, err := p.Search(ctx, Query{Text: "Storm", MaxResults: 10, TimeRange: "24h"})
	require.NoError(t, err)
	first[0].Title = "mutated"

	second, err := p.Search(ctx, Query{Text: " storm ", MaxResults: 10, TimeRange: "24h"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "Storm", second[0].Title)

	_, err = p.Search(ctx, Query{Text: "storm", MaxResults: 10, TimeRange: "7d"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchCache.WithLabelValues("miss")))
	assert.Equal(t, "fake", p.Name())
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("down")}
	p := NewCachedProvider(inner, cache.New[[]news.RawArticle](8, time.Minute), nil, quiet())

	for i := 0; i < 2; i++ {
		_, err := p.Search(context.Background(), Query{Text: "storm"})
		assert.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls)
}
