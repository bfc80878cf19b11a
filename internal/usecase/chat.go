package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/personal-assistant/chatbot/internal/domain"
)

const DefaultUserID = "default"

// Intent names the branch the router took for a message.
type Intent string

const (
	IntentEmpty         Intent = "empty"
	IntentLocationReply Intent = "location_reply"
	IntentPersonal      Intent = "personal"
	IntentWeather       Intent = "weather"
	IntentNews          Intent = "news"
	IntentSearch        Intent = "search"
	IntentUnknown       Intent = "unknown"
)

// personalTriggers route a message to personal-info lookup. They are checked
// before every other intent, so "what's the weather" is treated as a personal
// question and usually falls through to the learn prompt.
var personalTriggers = []string{"name", "age", "who", "what", "your", "about"}

// asciiPunctuation matches the characters stripped before classification.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// StateTracker hands out per-user conversation state under that user's lock.
type StateTracker interface {
	GetOrCreate(userID string) (*domain.ConversationState, func())
}

// Assistant produces replies backed by the external providers.
type Assistant interface {
	FetchWeather(ctx context.Context, location string) string
	FetchTopNews(ctx context.Context) string
	Search(ctx context.Context, query string) string
}

type ChatInput struct {
	UserInput string
	UserID    string
}

type ChatOutput struct {
	Response string
	Intent   Intent
}

type turn struct {
	text  string
	state *domain.ConversationState
}

type intentRule struct {
	intent  Intent
	matches func(text string) bool
	handle  func(ctx context.Context, t turn) (string, error)
}

// ChatService is the intent router. Rules are evaluated in order and the
// first match handles the message.
type ChatService struct {
	store         PersonalInfoStore
	tracker       StateTracker
	assistant     Assistant
	defaultUserID string
	rules         []intentRule
}

func NewChatService(store PersonalInfoStore, tracker StateTracker, assistant Assistant, defaultUserID string) (*ChatService, error) {
	if store == nil {
		return nil, errors.New("usecase: personal info store must not be nil")
	}
	if tracker == nil {
		return nil, errors.New("usecase: state tracker must not be nil")
	}
	if assistant == nil {
		return nil, errors.New("usecase: assistant must not be nil")
	}
	defaultUserID = strings.TrimSpace(defaultUserID)
	if defaultUserID == "" {
		defaultUserID = DefaultUserID
	}
	s := &ChatService{
		store:         store,
		tracker:       tracker,
		assistant:     assistant,
		defaultUserID: defaultUserID,
	}
	s.rules = []intentRule{
		{intent: IntentPersonal, matches: containsAny(personalTriggers...), handle: s.answerPersonal},
		{intent: IntentWeather, matches: containsAny("weather"), handle: s.askForLocation},
		{intent: IntentNews, matches: containsAny("news"), handle: s.topNews},
		{intent: IntentSearch, matches: containsAny("search"), handle: s.search},
	}
	return s, nil
}

func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	text := strings.ToLower(strings.TrimSpace(in.UserInput))
	if text == "" {
		return ChatOutput{Response: msgCouldNotUnderstand, Intent: IntentEmpty}, nil
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = s.defaultUserID
	}

	state, release := s.tracker.GetOrCreate(userID)
	defer release()

	if state.AwaitingLocation {
		state.AwaitingLocation = false
		return ChatOutput{Response: s.assistant.FetchWeather(ctx, text), Intent: IntentLocationReply}, nil
	}

	t := turn{text: stripPunctuation(text), state: state}
	for _, rule := range s.rules {
		if !rule.matches(t.text) {
			continue
		}
		resp, err := rule.handle(ctx, t)
		if err != nil {
			return ChatOutput{}, err
		}
		return ChatOutput{Response: resp, Intent: rule.intent}, nil
	}
	return ChatOutput{Response: msgLearnPrompt, Intent: IntentUnknown}, nil
}

func (s *ChatService) answerPersonal(ctx context.Context, t turn) (string, error) {
	entry, ok, err := s.store.FindMatchingKey(ctx, t.text)
	if err != nil {
		return "", storageError("store_match_error", err)
	}
	if !ok {
		return msgLearnPrompt, nil
	}
	return fmt.Sprintf(msgPersonalAnswer, entry.Key, entry.Value), nil
}

func (s *ChatService) askForLocation(_ context.Context, t turn) (string, error) {
	t.state.AwaitingLocation = true
	return msgWeatherPrompt, nil
}

func (s *ChatService) topNews(ctx context.Context, _ turn) (string, error) {
	return s.assistant.FetchTopNews(ctx), nil
}

func (s *ChatService) search(ctx context.Context, t turn) (string, error) {
	return s.assistant.Search(ctx, extractSearchQuery(t.text)), nil
}

// extractSearchQuery returns the text after the last "search", trimmed.
func extractSearchQuery(text string) string {
	i := strings.LastIndex(text, "search")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i+len("search"):])
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, s)
}

func containsAny(terms ...string) func(string) bool {
	return func(text string) bool {
		for _, term := range terms {
			if strings.Contains(text, term) {
				return true
			}
		}
		return false
	}
}
