package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/personal-assistant/chatbot/internal/domain"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "personal_info.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewSQLite_EmptyPath(t *testing.T) {
	_, err := NewSQLite(" ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}

func TestSQLite_UpsertOverwrites(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "name", "Alex")
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "name", "Sam")
	require.NoError(t, err)

	entries, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"name": "Sam"}, domain.EntriesToMap(entries))
}

func TestSQLite_UpsertNormalizes(t *testing.T) {
	s := newTestSQLite(t)
	entry, err := s.Upsert(context.Background(), "  Favorite Color ", " blue ")
	require.NoError(t, err)
	require.Equal(t, domain.PersonalInfoEntry{Key: "favorite color", Value: "blue"}, entry)

	entries, err := s.GetAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.PersonalInfoEntry{{Key: "favorite color", Value: "blue"}}, entries)
}

func TestSQLite_UpsertEmptyKey(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.Upsert(context.Background(), "   ", "x")
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestSQLite_GetAllEmpty(t *testing.T) {
	s := newTestSQLite(t)
	entries, err := s.GetAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSQLite_FindMatchingKey(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	_, err := s.Upsert(ctx, "name", "Alex")
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "age", "30")
	require.NoError(t, err)

	e, ok, err := s.FindMatchingKey(ctx, "What is your AGE")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "30", e.Value)

	_, ok, err = s.FindMatchingKey(ctx, "what is the weather")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLite_FindMatchingKey_FirstInsertionWinsAfterOverwrite(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	_, err := s.Upsert(ctx, "name", "Alex")
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "nickname", "Al")
	require.NoError(t, err)
	// overwriting keeps "name" ahead of "nickname"
	_, err = s.Upsert(ctx, "name", "Alexander")
	require.NoError(t, err)

	e, ok, err := s.FindMatchingKey(ctx, "what is your nickname")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.PersonalInfoEntry{Key: "name", Value: "Alexander"}, e)
}

func TestSQLite_ConcurrentUpsertsOfDifferentKeys(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	errs := make([]error, 20)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Upsert(ctx, fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	entries, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 20)
	require.Equal(t, "value-7", domain.EntriesToMap(entries)["key-7"])
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personal_info.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	_, err = s.Upsert(context.Background(), "city", "Paris")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.GetAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]string{"city": "Paris"}, domain.EntriesToMap(entries))
}

func TestSQLite_ClosedStoreSurfacesError(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Close())

	_, err := s.GetAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetAll")
}
