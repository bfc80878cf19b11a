// Package httpjson performs the one-shot GET-and-decode round trip shared by
// the provider clients.
package httpjson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultTimeout bounds every provider call when no client is configured.
	DefaultTimeout = 10 * time.Second

	maxErrorBody    = 4096
	maxResponseBody = 1 << 20
)

// ErrInvalidJSON is returned when a 2xx response body is not valid JSON.
var ErrInvalidJSON = errors.New("httpjson: response body is not valid JSON")

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
// URL never carries the query string, so credentials passed as query
// parameters are not leaked into logs.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("httpjson: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// StatusCode reports the upstream status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.StatusCode, true
}

// Client returns c, or a client with DefaultTimeout if c is nil.
func Client(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// Get issues a GET for endpoint with the given query and returns the parsed
// JSON body. Transport failures, non-2xx statuses and non-JSON bodies are all
// returned as errors.
func Get(ctx context.Context, c *http.Client, endpoint string, query url.Values) (gjson.Result, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("httpjson: parse endpoint: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("httpjson: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := Client(c).Do(req)
	if err != nil {
		return gjson.Result{}, redactURLError(err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return gjson.Result{}, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        redact(u),
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("httpjson: read response body: %w", err)
	}
	if !gjson.ValidBytes(buf) {
		return gjson.Result{}, ErrInvalidJSON
	}
	return gjson.ParseBytes(buf), nil
}

func redact(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	clean.User = nil
	return clean.String()
}

func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
			urlErr.URL = redact(u)
		}
	}
	return fmt.Errorf("httpjson: request failed: %w", err)
}
