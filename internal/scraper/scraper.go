// Package scraper fetches article pages and extracts their main text.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/logger"
)

const (
	service       = "scraper"
	maxPageBytes  = 2 << 20
	minParagraph  = 20
	enoughBlocks  = 3
	userAgentName = "newslens/1.0"
)

// Paragraph selectors, most specific first.
var contentSelectors = []string{
	"article p",
	".article-body p",
	".article p",
	".content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	"p",
}

// Extractor reads the body text of news pages.
type Extractor struct {
	client *http.Client
	log    *slog.Logger
}

func New(timeout time.Duration, log *slog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		log:    logger.OrDefault(log),
	}
}

// Extract returns the main text of the page at url, or its description meta
// tag when no paragraphs are found.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.NewExternal(service, 0, err)
	}
	req.Header.Set("User-Agent", userAgentName)
	req.Header.Set("Accept", "text/html")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", apperr.NewExternal(service, 0, fmt.Errorf("error loading page: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.NewExternal(service, resp.StatusCode, fmt.Errorf("HTTP error: %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", apperr.NewExternal(service, resp.StatusCode, fmt.Errorf("error parsing HTML: %w", err))
	}

	text := extractText(doc)
	if text == "" {
		return "", apperr.NewExternal(service, resp.StatusCode, errors.New("no article text found"))
	}
	e.log.Debug("Extracted article text", "article_url", url, "length", len(text))
	return text, nil
}

func extractText(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside, figure").Remove()

	for _, sel := range contentSelectors {
		var paragraphs []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if len(text) > minParagraph {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= enoughBlocks || (len(paragraphs) > 0 && sel == "p") {
			return strings.Join(paragraphs, " ")
		}
	}

	for _, sel := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}
