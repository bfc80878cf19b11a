package domain

// ConversationState is the per-user multi-turn state. The zero value is the
// Idle state.
type ConversationState struct {
	UserID           string
	AwaitingLocation bool
}
