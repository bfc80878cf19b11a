// Package news is a client for the Currents latest-news API.
package news

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

const DefaultBaseURL = "https://api.currentsapi.services/v1"

// KeySource supplies the provider API key.
type KeySource interface {
	Get(ctx context.Context) (string, error)
}

type Article struct {
	Title string
	URL   string
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
		return nil, errors.New("news: key source must not be nil")
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

func latestURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/latest-news"
}

// Latest returns at most limit of the newest articles, in provider order.
// A non-positive limit returns every article in the response.
func (c *Client) Latest(ctx context.Context, limit int) ([]Article, error) {
	apiKey, err := c.key.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("news: resolve api key: %w", err)
	}

	body, err := httpjson.Get(ctx, c.httpClient, latestURL(c.baseURL), url.Values{"apiKey": {apiKey}})
	if err != nil {
		return nil, fmt.Errorf("news: latest: %w", err)
	}

	var articles []Article
	body.Get("news").ForEach(func(_, item gjson.Result) bool {
		if limit > 0 && len(articles) >= limit {
			return false
		}
		articles = append(articles, Article{
			Title: item.Get("title").String(),
			URL:   item.Get("url").String(),
		})
		return true
	})
	return articles, nil
}
