package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/personal-assistant/chatbot/internal/domain"
	"github.com/personal-assistant/chatbot/internal/integrations/news"
	"github.com/personal-assistant/chatbot/internal/integrations/search"
	"github.com/personal-assistant/chatbot/internal/integrations/weather"
)

// memStore is an insertion-ordered in-memory PersonalInfoStore.
type memStore struct {
	mu      sync.Mutex
	entries []domain.PersonalInfoEntry
	err     error
}

func (m *memStore) GetAll(_ context.Context) ([]domain.PersonalInfoEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.PersonalInfoEntry(nil), m.entries...), nil
}

func (m *memStore) Upsert(_ context.Context, key, value string) (domain.PersonalInfoEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.PersonalInfoEntry{}, m.err
	}
	e := domain.NewPersonalInfoEntry(key, value)
	for i := range m.entries {
		if m.entries[i].Key == e.Key {
			m.entries[i].Value = e.Value
			return e, nil
		}
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memStore) FindMatchingKey(ctx context.Context, text string) (domain.PersonalInfoEntry, bool, error) {
	entries, err := m.GetAll(ctx)
	if err != nil {
		return domain.PersonalInfoEntry{}, false, err
	}
	e, ok := domain.MatchEntry(entries, text)
	return e, ok, nil
}

type fakeWeather struct {
	report    weather.Report
	err       error
	locations []string
}

func (f *fakeWeather) Current(_ context.Context, location string) (weather.Report, error) {
	f.locations = append(f.locations, location)
	if location == "" {
		return weather.Report{}, weather.ErrEmptyLocation
	}
	if f.err != nil {
		return weather.Report{}, f.err
	}
	r := f.report
	r.Location = location
	return r, nil
}

type fakeNews struct {
	articles []news.Article
	err      error
	limit    int
}

func (f *fakeNews) Latest(_ context.Context, limit int) ([]news.Article, error) {
	f.limit = limit
	return f.articles, f.err
}

type fakeSearch struct {
	results []search.Result
	err     error
	queries []string
	limit   int
}

func (f *fakeSearch) Search(_ context.Context, query string, limit int) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	f.limit = limit
	if query == "" {
		return nil, search.ErrEmptyQuery
	}
	return f.results, f.err
}

var errBoom = errors.New("boom")
