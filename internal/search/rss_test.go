package search

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleNewsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>"storm" - Google News</title>
<link>https://news.google.com</link>
<item>
  <title>Storm hits coast - Reuters</title>
  <link>https://news.google.com/rss/articles/one</link>
  <pubDate>Sat, 01 Jun 2024 10:00:00 GMT</pubDate>
  <description>&lt;a href="https://news.google.com/rss/articles/one"&gt;Storm hits coast&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;Reuters&lt;/font&gt;</description>
  <source url="https://www.reuters.com">Reuters</source>
</item>
<item>
  <title>Storm coverage - CNN</title>
  <link>https://news.google.com/rss/articles/two</link>
  <pubDate>Sat, 01 Jun 2024 09:00:00 GMT</pubDate>
  <source url="https://edition.cnn.com">CNN</source>
</item>
<item>
  <title>Storm last month - BBC</title>
  <link>https://news.google.com/rss/articles/three</link>
  <pubDate>Wed, 01 May 2024 09:00:00 GMT</pubDate>
  <source url="https://www.bbc.co.uk">BBC</source>
</item>
<item>
  <title>Local storm notes</title>
  <link>https://www.localnews.org/storm</link>
  <description>&lt;p&gt;Residents prepare.&lt;/p&gt;</description>
</item>
</channel>
</rss>`

func feedServer(t *testing.T, queries *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if queries != nil {
			*queries = append(*queries, r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = io.WriteString(w, googleNewsFeed)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRSS(feeds []FeedTemplate) *RSSProvider {
	p := NewRSSProvider(feeds, time.Second, quiet())
	p.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestRSSProvider_Search(t *testing.T) {
	var queries []string
	srv := feedServer(t, &queries)
	p := newTestRSS([]FeedTemplate{{
		Name:            "google-news",
		URL:             srv.URL + "/rss/search?q={query}&hl=en-US",
		TimeOperator:    true,
		SiteOperators:   true,
		AggregatorHosts: []string{"news.google.com"},
	}})

	out, err := p.Search(context.Background(), Query{
		Text: "storm", TimeRange: "7d", ExcludeDomains: []string{"cnn.com"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"storm when:7d -site:cnn.com"}, queries)
	require.Len(t, out, 2)

	assert.Equal(t, "Storm hits coast", out[0].Title)
	assert.Equal(t, "Reuters", out[0].Source)
	assert.Equal(t, "reuters.com", out[0].SourceDomain)
	assert.Equal(t, "Storm hits coast", out[0].Content)
	require.NotNil(t, out[0].PublishedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), *out[0].PublishedAt)

	assert.Equal(t, "Local storm notes", out[1].Title)
	assert.Equal(t, "localnews.org", out[1].SourceDomain)
	assert.Equal(t, "Residents prepare.", out[1].Content)
	assert.Nil(t, out[1].PublishedAt)
}

func TestRSSProvider_SearchIncludeAndLimit(t *testing.T) {
	srv := feedServer(t, nil)
	p := newTestRSS([]FeedTemplate{{Name: "gn", URL: srv.URL + "/?q={query}", AggregatorHosts: []string{"news.google.com"}}})
	p.now = func() time.Time { return time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC) }

	out, err := p.Search(context.Background(), Query{Text: "storm", TimeRange: "30d", IncludeDomains: []string{"cnn.com", "bbc.co.uk"}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "edition.cnn.com", out[0].SourceDomain)
	assert.Equal(t, "bbc.co.uk", out[1].SourceDomain)

	out, err = p.Search(context.Background(), Query{Text: "storm", TimeRange: "30d", MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestRSSProvider_SearchFeedFailures(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	p := newTestRSS([]FeedTemplate{{Name: "down", URL: bad.URL + "/?q={query}"}})
	_, err := p.Search(context.Background(), Query{Text: "storm"})
	ext, ok := apperr.AsExternal(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, ext.StatusCode)
	assert.True(t, ext.Retryable())

	good := feedServer(t, nil)
	p = newTestRSS([]FeedTemplate{
		{Name: "down", URL: bad.URL + "/?q={query}"},
		{Name: "up", URL: good.URL + "/?q={query}"},
	})
	out, err := p.Search(context.Background(), Query{Text: "storm", TimeRange: "24h"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

type pageStub struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (s *pageStub) Extract(_ context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)
	if text, ok := s.pages[url]; ok {
		return text, nil
	}
	return "", errors.New("page unavailable")
}

func TestRSSProvider_SearchFillsShortContent(t *testing.T) {
	srv := feedServer(t, nil)
	pages := &pageStub{pages: map[string]string{
		"https://news.google.com/rss/articles/one": "The storm made landfall early on Saturday, flooding roads along the coast.",
	}}
	p := newTestRSS([]FeedTemplate{{
		Name:            "google-news",
		URL:             srv.URL + "/rss/search?q={query}",
		AggregatorHosts: []string{"news.google.com"},
	}}).WithPageReader(pages, 0)

	out, err := p.Search(context.Background(), Query{Text: "storm", TimeRange: "7d"})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "The storm made landfall early on Saturday, flooding roads along the coast.", out[0].Content)
	assert.Contains(t, out[2].Content, "Residents prepare")
	assert.Len(t, pages.calls, 3)
}

func TestWhenWindow(t *testing.T) {
	assert.Equal(t, "6h", whenWindow("6h"))
	assert.Equal(t, "1d", whenWindow("24h"))
	assert.Equal(t, "2d", whenWindow("48h"))
	assert.Equal(t, "30d", whenWindow("30d"))
	assert.Equal(t, "1d", whenWindow(""))
}

func TestLoadFeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`feeds:
  - name: google-news
    url: https://news.google.com/rss/search?q={query}
    time_operator: true
    aggregator_hosts: [news.google.com]
`), 0o644))

	feeds, err := LoadFeeds(path)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "google-news", feeds[0].Name)
	assert.True(t, feeds[0].TimeOperator)
	assert.False(t, feeds[0].SiteOperators)
	assert.Equal(t, []string{"news.google.com"}, feeds[0].AggregatorHosts)

	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - name: x\n    url: https://example.com/rss\n"), 0o644))
	_, err = LoadFeeds(path)
	assert.Error(t, err)

	_, err = LoadFeeds(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
