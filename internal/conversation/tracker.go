// Package conversation tracks per-user multi-turn state for the chat router.
package conversation

import (
	"sync"

	"github.com/personal-assistant/chatbot/internal/domain"
)

// Tracker maps user identifiers to their ConversationState. State is created
// lazily and lives for the lifetime of the process. Access to a single user's
// state is serialized; different users never contend beyond the map lookup.
type Tracker struct {
	mu    sync.Mutex
	users map[string]*userState
}

type userState struct {
	mu    sync.Mutex
	state domain.ConversationState
}

func NewTracker() *Tracker {
	return &Tracker{users: make(map[string]*userState)}
}

// GetOrCreate returns the mutable state for userID, holding that user's lock
// until release is called. release must be called exactly once.
func (t *Tracker) GetOrCreate(userID string) (state *domain.ConversationState, release func()) {
	u := t.lookup(userID, true)
	u.mu.Lock()
	return &u.state, u.mu.Unlock
}

// Snapshot returns a copy of the user's state without creating it.
func (t *Tracker) Snapshot(userID string) (domain.ConversationState, bool) {
	u := t.lookup(userID, false)
	if u == nil {
		return domain.ConversationState{}, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state, true
}

// Len reports how many users have state.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.users)
}

func (t *Tracker) lookup(userID string, create bool) *userState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if u, ok := t.users[userID]; ok {
		return u
	}
	if !create {
		return nil
	}
	u := &userState{state: domain.ConversationState{UserID: userID}}
	t.users[userID] = u
	return u
}
