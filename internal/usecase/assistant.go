package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/personal-assistant/chatbot/internal/integrations/httpjson"
	"github.com/personal-assistant/chatbot/internal/integrations/news"
	"github.com/personal-assistant/chatbot/internal/integrations/search"
	"github.com/personal-assistant/chatbot/internal/integrations/weather"
)

const (
	defaultNewsLimit   = 5
	defaultSearchLimit = 3
)

type WeatherFetcher interface {
	Current(ctx context.Context, location string) (weather.Report, error)
}

type NewsFetcher interface {
	Latest(ctx context.Context, limit int) ([]news.Article, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]search.Result, error)
}

// AssistantService turns provider outcomes into the fixed user-facing
// replies. Provider failures never escape as errors.
type AssistantService struct {
	weather     WeatherFetcher
	news        NewsFetcher
	search      Searcher
	newsLimit   int
	searchLimit int
	logger      *slog.Logger
}

func NewAssistantService(w WeatherFetcher, n NewsFetcher, s Searcher, newsLimit, searchLimit int, logger *slog.Logger) (*AssistantService, error) {
	if w == nil {
		return nil, errors.New("usecase: weather fetcher must not be nil")
	}
	if n == nil {
		return nil, errors.New("usecase: news fetcher must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: searcher must not be nil")
	}
	if newsLimit <= 0 {
		newsLimit = defaultNewsLimit
	}
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantService{
		weather:     w,
		news:        n,
		search:      s,
		newsLimit:   newsLimit,
		searchLimit: searchLimit,
		logger:      logger,
	}, nil
}

func (s *AssistantService) FetchWeather(ctx context.Context, location string) string {
	report, err := s.weather.Current(ctx, location)
	if err == nil {
		return fmt.Sprintf(msgWeatherReport, report.Location, report.Description, report.Temperature)
	}
	if errors.Is(err, weather.ErrEmptyLocation) {
		return msgWeatherNoLocation
	}

	s.logger.WarnContext(ctx, "weather provider failed", "err", err)
	status, _ := httpjson.StatusCode(err)
	switch status {
	case http.StatusTooManyRequests:
		return msgWeatherRateLimited
	case http.StatusNotFound:
		return msgWeatherNotFound
	default:
		return msgWeatherUnavailable
	}
}

func (s *AssistantService) FetchTopNews(ctx context.Context) string {
	articles, err := s.news.Latest(ctx, s.newsLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "news provider failed", "err", err)
		return msgNewsUnavailable
	}
	lines := make([]string, 0, len(articles)+1)
	lines = append(lines, msgNewsHeader)
	for _, a := range articles {
		lines = append(lines, "- "+a.Title)
	}
	return strings.Join(lines, "\n")
}

// Search formats up to the configured number of results as a numbered list.
func (s *AssistantService) Search(ctx context.Context, query string) string {
	results, err := s.search.Search(ctx, query, s.searchLimit)
	switch {
	case err == nil:
	case errors.Is(err, search.ErrNoResults):
		return msgSearchNoResults
	case errors.Is(err, search.ErrEmptyQuery):
		return msgSearchNoQuery
	default:
		s.logger.WarnContext(ctx, "search provider failed", "err", err)
		return msgSearchUnavailable
	}

	var b strings.Builder
	b.WriteString(msgSearchHeader + "\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, r.Title, r.Link)
	}
	return b.String()
}

// WebSearch backs the search endpoint: an empty query is a validation error
// rather than a chat reply.
func (s *AssistantService) WebSearch(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", newError(ErrorInvalidInput, "empty_query", msgSearchQueryRequired, nil)
	}
	return s.Search(ctx, query), nil
}
