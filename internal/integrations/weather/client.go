// Package weather is a client for the OpenWeatherMap current-weather API.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/personal-assistant/chatbot/internal/integrations/httpjson"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	notAvailable   = "N/A"
)

// ErrEmptyLocation is returned without a network call when no location is given.
var ErrEmptyLocation = errors.New("weather: location must not be empty")

// KeySource supplies the provider API key.
type KeySource interface {
	Get(ctx context.Context) (string, error)
}

// Report is a successful current-weather lookup. Temperature holds the
// provider's numeric text in degrees Celsius; missing fields are "N/A".
type Report struct {
	Location    string
	Description string
	Temperature string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	key        KeySource
	logger     *slog.Logger
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

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(key KeySource, opts ...Option) (*Client, error) {
	if key == nil {
		return nil, errors.New("weather: key source must not be nil")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: httpjson.DefaultTimeout},
		key:        key,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func currentURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/weather"
}

// Current fetches the current conditions for location in metric units.
// Non-2xx responses are returned as *httpjson.HTTPStatusError.
func (c *Client) Current(ctx context.Context, location string) (Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Report{}, ErrEmptyLocation
	}

	apiKey, err := c.key.Get(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("weather: resolve api key: %w", err)
	}

	c.logger.DebugContext(ctx, "fetching weather", "location", location)
	body, err := httpjson.Get(ctx, c.httpClient, currentURL(c.baseURL), url.Values{
		"q":     {location},
		"appid": {apiKey},
		"units": {"metric"},
	})
	if err != nil {
		return Report{}, fmt.Errorf("weather: current conditions: %w", err)
	}

	report := Report{
		Location:    location,
		Description: notAvailable,
		Temperature: notAvailable,
	}
	if temp := body.Get("main.temp"); temp.Exists() {
		report.Temperature = temp.Raw
	}
	if desc := body.Get("weather.0.description"); desc.Exists() {
		report.Description = desc.String()
	}
	return report, nil
}
