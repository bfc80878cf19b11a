package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/personal-assistant/chatbot/internal/domain"
	"github.com/personal-assistant/chatbot/internal/repository"
)

type PersonalInfoStore interface {
	GetAll(ctx context.Context) ([]domain.PersonalInfoEntry, error)
	Upsert(ctx context.Context, key, value string) (domain.PersonalInfoEntry, error)
	FindMatchingKey(ctx context.Context, text string) (domain.PersonalInfoEntry, bool, error)
}

type PersonalInfoService struct {
	store PersonalInfoStore
}

type LearnInput struct {
	UserInput string
}

type LearnOutput struct {
	Message string
	Entry   domain.PersonalInfoEntry
}

func NewPersonalInfoService(store PersonalInfoStore) (*PersonalInfoService, error) {
	if store == nil {
		return nil, errors.New("usecase: personal info store must not be nil")
	}
	return &PersonalInfoService{store: store}, nil
}

func (s *PersonalInfoService) GetAll(ctx context.Context) (map[string]string, error) {
	entries, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, storageError("store_read_error", err)
	}
	return domain.EntriesToMap(entries), nil
}

// Update stores value under key and returns the confirmation message.
func (s *PersonalInfoService) Update(ctx context.Context, key, value string) (string, error) {
	if _, err := s.upsert(ctx, key, value); err != nil {
		return "", err
	}
	return msgInfoUpdated, nil
}

// Learn parses "key: value" (split on the first colon) and stores the pair.
func (s *PersonalInfoService) Learn(ctx context.Context, in LearnInput) (LearnOutput, error) {
	key, value, ok := parseLearnInput(in.UserInput)
	if !ok {
		return LearnOutput{}, newError(ErrorInvalidInput, "missing_separator", msgLearnFormat, nil)
	}
	entry, err := s.upsert(ctx, key, value)
	if err != nil {
		return LearnOutput{}, err
	}
	return LearnOutput{
		Message: fmt.Sprintf(msgLearned, entry.Key, entry.Value),
		Entry:   entry,
	}, nil
}

func (s *PersonalInfoService) upsert(ctx context.Context, key, value string) (domain.PersonalInfoEntry, error) {
	if domain.NormalizeKey(key) == "" {
		return domain.PersonalInfoEntry{}, newError(ErrorInvalidInput, "empty_key", msgKeyRequired, nil)
	}
	entry, err := s.store.Upsert(ctx, key, value)
	if errors.Is(err, repository.ErrEmptyKey) {
		return domain.PersonalInfoEntry{}, newError(ErrorInvalidInput, "empty_key", msgKeyRequired, err)
	}
	if err != nil {
		return domain.PersonalInfoEntry{}, storageError("store_write_error", err)
	}
	return entry, nil
}

func parseLearnInput(input string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(strings.TrimSpace(input), ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}
