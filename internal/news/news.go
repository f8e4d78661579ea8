// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package news queries the Currents news search API and normalizes its
// results into types.NewsArticle records.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AlexLyubovenko/ai-blog-generator/internal/failure"
	"github.com/AlexLyubovenko/ai-blog-generator/internal/httputil"
	"github.com/AlexLyubovenko/ai-blog-generator/pkg/types"
)

// categories is the fixed set of Currents category labels.
var categories = []string{
	"business", "entertainment", "health", "science", "sports",
	"technology", "politics", "world", "breaking-news",
}

// Query holds the search parameters for one request.
type Query struct {
	Keywords   string
	Language   string
	Category   string
	MaxResults int
}

// Client searches the Currents API. It holds only immutable configuration
// and is safe for concurrent use.
type Client struct {
	cfg    types.NewsConfig
	client *http.Client
	log    zerolog.Logger
}

// NewClient returns a client for the Currents API. When httpClient is nil a
// client built from cfg's timeout and user agent is used.
func NewClient(cfg types.NewsConfig, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = httputil.NewClient(cfg.HTTPConfig)
	}
	return &Client{
		cfg:    cfg,
		client: httpClient,
		log:    log.With().Str("component", "news").Logger(),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// currentsResponse is the response body of GET /search.
type currentsResponse struct {
	Status string       `json:"status"`
	News   []rawArticle `json:"news"`
}

// rawArticle is one provider record. Every field may be absent or null.
type rawArticle struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	URL         *string  `json:"url"`
	Published   *string  `json:"published"`
	Category    []string `json:"category"`
}

// Search issues one query and returns at most q.MaxResults normalized
// articles in provider order. Failures are *failure.Error values.
func (c *Client) Search(ctx context.Context, q Query) ([]types.NewsArticle, error) {
	if strings.TrimSpace(q.Keywords) == "" {
		return nil, failure.New(failure.BadRequest, "news search keywords are required")
	}
	if q.Language == "" {
		q.Language = types.DefaultLanguage
	}
	if q.MaxResults <= 0 {
		q.MaxResults = types.DefaultNewsArticles
	}

	c.log.Info().Str("keywords", q.Keywords).Str("language", q.Language).Int("max_results", q.MaxResults).Msg("searching news")

	resp, err := c.get(ctx, q, c.cfg.MaxRetries)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("news provider returned an error")
		return nil, failure.New(failure.ServiceUnavailable, "news provider returned HTTP %d", resp.StatusCode)
	}

	var cr currentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, failure.Wrap(failure.Internal, err, "decoding news response")
	}

	raw := cr.News
	if len(raw) > q.MaxResults {
		raw = raw[:q.MaxResults]
	}

	articles := make([]types.NewsArticle, 0, len(raw))
	for _, r := range raw {
		articles = append(articles, normalize(r))
	}

	c.log.Info().Int("count", len(articles)).Msg("news articles received")
	return articles, nil
}

// Categories returns the supported category labels. No network call is made.
func (c *Client) Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// TestConnection issues a minimal one-result query and reports whether the
// provider answered with HTTP 200. It never returns an error.
func (c *Client) TestConnection(ctx context.Context) bool {
	resp, err := c.get(ctx, Query{Keywords: "test", MaxResults: 1}, httputil.NoRetry)
	if err != nil {
		c.log.Debug().Err(err).Msg("news connection test failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (c *Client) get(ctx context.Context, q Query, maxRetries int) (*http.Response, error) {
	params := url.Values{
		"apiKey":    {c.cfg.APIKey},
		"keywords":  {q.Keywords},
		"page_size": {strconv.Itoa(q.MaxResults)},
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}

	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return httputil.DoWithRetry(c.log.WithContext(ctx), c.client, req, maxRetries)
}

// classifyTransport maps a failed round trip onto the failure taxonomy.
func classifyTransport(err error) error {
	if httputil.IsTimeout(err) {
		return failure.Wrap(failure.GatewayTimeout, err, "news provider timed out")
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return failure.Wrap(failure.ServiceUnavailable, err, "could not connect to news provider")
	}
	return failure.Wrap(failure.Internal, err, "news search failed")
}

// normalize maps a provider record to a NewsArticle, substituting defaults
// for missing fields.
func normalize(r rawArticle) types.NewsArticle {
	a := types.NewsArticle{
		Title:       orDefault(r.Title, types.NoTitle),
		Description: orDefault(r.Description, types.NoDescription),
		URL:         orDefault(r.URL, ""),
		Published:   orDefault(r.Published, ""),
	}
	for _, cat := range r.Category {
		if cat = strings.TrimSpace(cat); cat != "" {
			a.Category = append(a.Category, cat)
		}
	}
	if len(a.Category) == 0 {
		a.Category = []string{types.DefaultCategory}
	}
	return a
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	if v := strings.TrimSpace(*s); v != "" {
		return v
	}
	return def
}
