// Package search is a client for SerpApi's Google search endpoint.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/personal-assistant/chatbot/internal/integrations/httpjson"
)

const DefaultBaseURL = "https://serpapi.com"

var (
	ErrEmptyQuery = errors.New("search: query must not be empty")
	// ErrNoResults is returned when the response carries no organic results.
	ErrNoResults = errors.New("search: no organic results")
)

// KeySource supplies the provider API key.
type KeySource interface {
	Get(ctx context.Context) (string, error)
}

type Result struct {
	Title string
	Link  string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	key        KeySource
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(key KeySource, opts ...Option) (*Client, error) {
	if key == nil {
		return nil, errors.New("search: key source must not be nil")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: httpjson.DefaultTimeout},
		key:        key,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func searchURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/search.json"
}

// Search returns at most limit organic results for query. A non-positive
// limit returns every organic result in the response.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	apiKey, err := c.key.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: resolve api key: %w", err)
	}

	body, err := httpjson.Get(ctx, c.httpClient, searchURL(c.baseURL), url.Values{
		"engine":  {"google"},
		"q":       {query},
		"api_key": {apiKey},
	})
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}

	var results []Result
	body.Get("organic_results").ForEach(func(_, item gjson.Result) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}
		results = append(results, Result{
			Title: item.Get("title").String(),
			Link:  item.Get("link").String(),
		})
		return true
	})
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}
