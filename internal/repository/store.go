// Package repository holds the Personal-Info Store backends.
//
// Every backend enumerates entries in first-insertion order: overwriting an
// existing key keeps its original position. FindMatchingKey returns the first
// entry in that order whose key is a substring of the input.
package repository

import (
	"context"
	"errors"

	"github.com/personal-assistant/chatbot/internal/domain"
)

// ErrEmptyKey is returned by Upsert when the key normalizes to "".
var ErrEmptyKey = errors.New("repository: key must not be empty")

// Store is implemented by SQLiteStore and DynamoStore.
type Store interface {
	GetAll(ctx context.Context) ([]domain.PersonalInfoEntry, error)
	Upsert(ctx context.Context, key, value string) (domain.PersonalInfoEntry, error)
	FindMatchingKey(ctx context.Context, text string) (domain.PersonalInfoEntry, bool, error)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*DynamoStore)(nil)
)
