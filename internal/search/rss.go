package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/deusflow/newslens/internal/news"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const rssService = "rss"

const (
	customSourceURL  = "source_url"
	customSourceName = "source_name"
)

// FeedTemplate is a search feed. URL carries a {query} placeholder that is
// replaced with the escaped search terms.
type FeedTemplate struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// TimeOperator appends a "when:<window>" term to the query.
	TimeOperator bool `yaml:"time_operator"`
	// SiteOperators appends site: and -site: terms for domain filters.
	SiteOperators bool `yaml:"site_operators"`
	// AggregatorHosts are link hosts that belong to the feed itself rather
	// than to the publisher.
	AggregatorHosts []string `yaml:"aggregator_hosts"`
}

// FeedsConfig is the YAML layout of the feeds file:
//
//	feeds:
//	  - name: google-news
//	    url: https://news.google.com/rss/search?q={query}
type FeedsConfig struct {
	Feeds []FeedTemplate `yaml:"feeds"`
}

// LoadFeeds reads search feed templates from a YAML file.
func LoadFeeds(path string) ([]FeedTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config %s: %w", path, err)
	}
	feeds := cfg.Feeds[:0]
	for _, feed := range cfg.Feeds {
		if !strings.Contains(feed.URL, "{query}") {
			return nil, fmt.Errorf("feed %q: url has no {query} placeholder", feed.Name)
		}
		feeds = append(feeds, feed)
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured in %s", path)
	}
	return feeds, nil
}

// RSSProvider searches news through RSS search feeds such as Google News.
type RSSProvider struct {
	feeds  []FeedTemplate
	client *http.Client
	parser *gofeed.Parser
	log    *slog.Logger
	now    func() time.Time

	pages      PageReader
	minContent int
}

// PageReader returns the body text of an article page.
type PageReader interface {
	Extract(ctx context.Context, url string) (string, error)
}

const (
	defaultMinContent = 200
	pageFetchLimit    = 4
)

func NewRSSProvider(feeds []FeedTemplate, timeout time.Duration, log *slog.Logger) *RSSProvider {
	parser := gofeed.NewParser()
	parser.RSSTranslator = &sourceTranslator{}
	return &RSSProvider{
		feeds:  feeds,
		client: &http.Client{Timeout: timeout},
		parser: parser,
		log:    logger.OrDefault(log),
		now:    time.Now,
	}
}

// WithPageReader makes Search fill in article text from the linked page when
// the feed item carries less than minContent characters.
func (p *RSSProvider) WithPageReader(r PageReader, minContent int) *RSSProvider {
	if minContent <= 0 {
		minContent = defaultMinContent
	}
	p.pages = r
	p.minContent = minContent
	return p
}

func (p *RSSProvider) Name() string { return rssService }

// Search queries every feed. A failing feed is logged and skipped; the
// search fails only when no feed could be read.
func (p *RSSProvider) Search(ctx context.Context, q Query) ([]news.RawArticle, error) {
	var (
		articles []news.RawArticle
		lastErr  error
		ok       int
	)
	cutoff := p.now().Add(-time.Duration(TimeRangeDays(q.TimeRange) * 24 * float64(time.Hour)))

	for _, feed := range p.feeds {
		parsed, err := p.fetch(ctx, feed.searchURL(q))
		if err != nil {
			p.log.Warn("Error reading search feed", "feed", feed.Name, "query", q.Text, "error", err)
			lastErr = err
			continue
		}
		ok++

		kept := 0
		for _, item := range parsed.Items {
			raw, domain := feed.rawArticle(item)
			if raw.URL == "" {
				continue
			}
			if raw.PublishedAt != nil && raw.PublishedAt.Before(cutoff) {
				continue
			}
			if !domainAllowed(domain, q.IncludeDomains, q.ExcludeDomains) {
				continue
			}
			articles = append(articles, raw)
			kept++
		}
		p.log.Debug("Loaded search feed", "feed", feed.Name, "items", len(parsed.Items), "kept", kept)
	}

	if ok == 0 {
		if lastErr == nil {
			lastErr = apperr.NewExternal(rssService, 0, errors.New("no feeds configured"))
		}
		return nil, lastErr
	}
	if q.MaxResults > 0 && len(articles) > q.MaxResults {
		articles = articles[:q.MaxResults]
	}
	if p.pages != nil {
		p.fillContent(ctx, articles)
	}

	p.log.Info("RSS search completed",
		"query", q.Text, "feeds_ok", ok, "feeds_total", len(p.feeds), "results_found", len(articles))
	return articles, nil
}

// fillContent replaces short snippets with page text. Page errors keep the
// feed snippet.
func (p *RSSProvider) fillContent(ctx context.Context, articles []news.RawArticle) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pageFetchLimit)
	for i := range articles {
		if len(articles[i].Content) >= p.minContent {
			continue
		}
		g.Go(func() error {
			text, err := p.pages.Extract(gctx, articles[i].URL)
			if err != nil {
				p.log.Debug("Could not read article page", "article_url", articles[i].URL, "error", err)
				return nil
			}
			if len(text) > len(articles[i].Content) {
				articles[i].Content = text
			}
			return nil
		})
	}
	_ = g.Wait()
}

// HealthCheck reads the first feed with a fixed query.
func (p *RSSProvider) HealthCheck(ctx context.Context) error {
	if len(p.feeds) == 0 {
		return apperr.NewExternal(rssService, 0, errors.New("no feeds configured"))
	}
	_, err := p.fetch(ctx, p.feeds[0].searchURL(Query{Text: "news"}))
	return err
}

func (p *RSSProvider) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, apperr.NewExternal(rssService, 0, err)
	}
	req.Header.Set("User-Agent", "newslens/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.NewExternal(rssService, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, apperr.NewExternal(rssService, resp.StatusCode, fmt.Errorf("HTTP error: %s", resp.Status))
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return nil, apperr.NewExternal(rssService, resp.StatusCode, fmt.Errorf("parse feed: %w", err))
	}
	return feed, nil
}

func (f FeedTemplate) searchURL(q Query) string {
	terms := []string{strings.TrimSpace(q.Text)}
	if f.TimeOperator {
		terms = append(terms, "when:"+whenWindow(q.TimeRange))
	}
	if f.SiteOperators {
		if len(q.IncludeDomains) > 0 {
			sites := make([]string, len(q.IncludeDomains))
			for i, d := range q.IncludeDomains {
				sites[i] = "site:" + d
			}
			terms = append(terms, "("+strings.Join(sites, " OR ")+")")
		}
		for _, d := range q.ExcludeDomains {
			terms = append(terms, "-site:"+d)
		}
	}
	return strings.ReplaceAll(f.URL, "{query}", url.QueryEscape(strings.Join(terms, " ")))
}

// whenWindow renders a time range as a feed search window ("6h", "2d").
func whenWindow(tr string) string {
	switch tr {
	case "1h", "6h", "12h", "7d", "30d":
		return tr
	case "48h":
		return "2d"
	default:
		return "1d"
	}
}

// rawArticle converts a feed item and reports the publisher domain used for
// domain filtering.
func (f FeedTemplate) rawArticle(item *gofeed.Item) (news.RawArticle, string) {
	raw := news.RawArticle{
		Title: strings.TrimSpace(item.Title),
		URL:   strings.TrimSpace(item.Link),
	}

	switch {
	case item.PublishedParsed != nil:
		t := item.PublishedParsed.UTC()
		raw.PublishedAt = &t
	case item.UpdatedParsed != nil:
		t := item.UpdatedParsed.UTC()
		raw.PublishedAt = &t
	}

	publisher, snippet := describe(item.Description)
	if content := strings.TrimSpace(item.Content); content != "" {
		_, snippet = describe(content)
	}
	raw.Content = snippet

	if name := item.Custom[customSourceName]; name != "" {
		publisher = name
	}
	if publisher == "" {
		if i := strings.LastIndex(raw.Title, " - "); i > 0 {
			publisher = strings.TrimSpace(raw.Title[i+3:])
		}
	}
	if publisher != "" {
		raw.Title = strings.TrimSpace(strings.TrimSuffix(raw.Title, " - "+publisher))
		raw.Source = publisher
	}

	linkHost := hostOf(raw.URL)
	if src := hostOf(item.Custom[customSourceURL]); src != "" {
		raw.SourceDomain = src
	} else if !f.isAggregator(linkHost) {
		raw.SourceDomain = linkHost
	}

	domain := raw.SourceDomain
	if domain == "" {
		domain = linkHost
	}
	return raw, domain
}

func (f FeedTemplate) isAggregator(host string) bool {
	for _, h := range f.AggregatorHosts {
		if domainMatches(host, h) {
			return true
		}
	}
	return false
}

// describe splits an item description into the publisher name (the <font>
// element aggregators append) and the remaining plain text.
func describe(html string) (publisher, text string) {
	if strings.TrimSpace(html) == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", html
	}
	font := doc.Find("font").Last()
	publisher = strings.TrimSpace(font.Text())
	font.Remove()
	return publisher, strings.Join(strings.Fields(doc.Text()), " ")
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// sourceTranslator keeps the RSS <source url="..."> element, which the
// default translator drops, in Item.Custom.
type sourceTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *sourceTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}
	rf, ok := feed.(*rss.Feed)
	if !ok || len(rf.Items) != len(out.Items) {
		return out, nil
	}
	for i, item := range rf.Items {
		if item.Source == nil {
			continue
		}
		if out.Items[i].Custom == nil {
			out.Items[i].Custom = map[string]string{}
		}
		out.Items[i].Custom[customSourceURL] = item.Source.URL
		out.Items[i].Custom[customSourceName] = strings.TrimSpace(item.Source.Title)
	}
	return out, nil
}
