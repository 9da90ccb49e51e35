package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/deusflow/newslens/internal/news"
)

const tavilyService = "tavily"

type TavilyConfig struct {
	APIKey      string
	BaseURL     string
	SearchDepth string
	Timeout     time.Duration
}

// TavilyClient searches news through the Tavily search API.
type TavilyClient struct {
	apiKey      string
	baseURL     string
	searchDepth string
	httpClient  *http.Client
	log         *slog.Logger
}

func NewTavilyClient(cfg TavilyConfig, log *slog.Logger) *TavilyClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	depth := cfg.SearchDepth
	if depth == "" {
		depth = "basic"
	}
	return &TavilyClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		searchDepth: depth,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         logger.OrDefault(log),
	}
}

type tavilyRequest struct {
	Query             string   `json:"query"`
	Topic             string   `json:"topic,omitempty"`
	SearchDepth       string   `json:"search_depth"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeImages     bool     `json:"include_images"`
	IncludeRawContent bool     `json:"include_raw_content"`
	MaxResults        int      `json:"max_results"`
	Days              float64  `json:"days,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
}

type tavilyResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Source        string  `json:"source"`
	PublishedDate string  `json:"published_date"`
	Score         float64 `json:"score"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

func (c *TavilyClient) Name() string { return tavilyService }

func (c *TavilyClient) Search(ctx context.Context, q Query) ([]news.RawArticle, error) {
	req := tavilyRequest{
		Query:          q.Text,
		Topic:          "news",
		SearchDepth:    c.searchDepth,
		MaxResults:     q.MaxResults,
		Days:           TimeRangeDays(q.TimeRange),
		IncludeDomains: q.IncludeDomains,
		ExcludeDomains: q.ExcludeDomains,
	}

	var resp tavilyResponse
	if err := c.post(ctx, "/search", req, &resp); err != nil {
		c.log.Error("Tavily search failed", "query", q.Text, "error", err)
		return nil, err
	}

	articles := make([]news.RawArticle, 0, len(resp.Results))
	for i, r := range resp.Results {
		if strings.TrimSpace(r.URL) == "" {
			c.log.Warn("Skipping search result without url", "result_index", i)
			continue
		}
		articles = append(articles, news.RawArticle{
			Title:       strings.TrimSpace(r.Title),
			URL:         strings.TrimSpace(r.URL),
			Source:      r.Source,
			Content:     r.Content,
			PublishedAt: news.ParseTimestamp(r.PublishedDate),
		})
	}

	c.log.Info("Tavily search completed",
		"query", q.Text, "results_found", len(articles), "max_requested", q.MaxResults)
	return articles, nil
}

// HealthCheck runs a minimal search.
func (c *TavilyClient) HealthCheck(ctx context.Context) error {
	req := tavilyRequest{Query: "test", SearchDepth: "basic", MaxResults: 1}
	return c.post(ctx, "/search", req, &tavilyResponse{})
}

func (c *TavilyClient) post(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperr.NewExternal(tavilyService, 0, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return apperr.NewExternal(tavilyService, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("Calling external API", "service", tavilyService, "endpoint", endpoint, "payload_size", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return apperr.NewExternal(tavilyService, 0, fmt.Errorf("request timeout: %w", err))
		}
		return apperr.NewExternal(tavilyService, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperr.NewExternal(tavilyService, resp.StatusCode, errors.New(strings.TrimSpace(string(msg))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.NewExternal(tavilyService, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
