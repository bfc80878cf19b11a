package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// tokenPayload is the JSON shape accepted for secrets stored as
// {"token":"..."}. Plain string values are used as-is.
type tokenPayload struct {
	Token string `json:"token"`
}

// Secret resolves a single credential through a Getter on first use and
// reuses it for the lifetime of the process. Failed lookups are not cached,
// so a parameter that becomes available later is picked up on the next call.
type Secret struct {
	getter Getter
	name   string

	mu    sync.Mutex
	value string
}

func NewSecret(g Getter, name string) (*Secret, error) {
	if g == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("paramstore: secret name must not be empty")
	}
	return &Secret{getter: g, name: name}, nil
}

func (s *Secret) Name() string { return s.name }

func (s *Secret) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value != "" {
		return s.value, nil
	}

	raw, err := s.getter.GetParameter(ctx, s.name)
	if err != nil {
		return "", fmt.Errorf("paramstore: resolve secret %q: %w", s.name, err)
	}
	value, err := decodeSecret(raw)
	if err != nil {
		return "", fmt.Errorf("paramstore: resolve secret %q: %w", s.name, err)
	}
	s.value = value
	return value, nil
}

func decodeSecret(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		if raw == "" {
			return "", errors.New("secret is empty")
		}
		return raw, nil
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("unmarshal secret value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("token is empty")
	}
	return tp.Token, nil
}
