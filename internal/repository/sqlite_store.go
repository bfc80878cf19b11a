package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/personal-assistant/chatbot/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS personal_info (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// SQLiteStore keeps personal info in a local SQLite file. Reads run
// concurrently; upserts are serialized.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures the
// personal_info table exists.
func NewSQLite(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository: sqlite path must not be empty")
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("repository: open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetAll returns every row ordered by rowid.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.PersonalInfoEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM personal_info ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("repository: GetAll query: %w", err)
	}
	defer rows.Close()

	var entries []domain.PersonalInfoEntry
	for rows.Next() {
		var e domain.PersonalInfoEntry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("repository: GetAll scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: GetAll rows: %w", err)
	}
	return entries, nil
}

// Upsert inserts or overwrites the value for the normalized key. An existing
// row is updated in place so its rowid, and therefore its match order, is kept.
func (s *SQLiteStore) Upsert(ctx context.Context, key, value string) (domain.PersonalInfoEntry, error) {
	entry := domain.NewPersonalInfoEntry(key, value)
	if entry.Key == "" {
		return domain.PersonalInfoEntry{}, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO personal_info (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		entry.Key, entry.Value)
	if err != nil {
		return domain.PersonalInfoEntry{}, fmt.Errorf("repository: Upsert %q: %w", entry.Key, err)
	}
	return entry, nil
}

func (s *SQLiteStore) FindMatchingKey(ctx context.Context, text string) (domain.PersonalInfoEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e domain.PersonalInfoEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT key, value FROM personal_info
		WHERE key <> '' AND instr(?, lower(key)) > 0
		ORDER BY rowid
		LIMIT 1`, strings.ToLower(text)).Scan(&e.Key, &e.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PersonalInfoEntry{}, false, nil
	}
	if err != nil {
		return domain.PersonalInfoEntry{}, false, fmt.Errorf("repository: FindMatchingKey query: %w", err)
	}
	return e, true, nil
}
