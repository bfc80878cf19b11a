package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/personal-assistant/chatbot/internal/conversation"
	"github.com/personal-assistant/chatbot/internal/integrations/news"
	"github.com/personal-assistant/chatbot/internal/integrations/search"
	"github.com/personal-assistant/chatbot/internal/integrations/weather"
)

type chatFixture struct {
	svc     *ChatService
	store   *memStore
	tracker *conversation.Tracker
	weather *fakeWeather
	news    *fakeNews
	search  *fakeSearch
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		store:   &memStore{},
		tracker: conversation.NewTracker(),
		weather: &fakeWeather{report: weather.Report{Description: "light rain", Temperature: "12"}},
		news:    &fakeNews{articles: []news.Article{{Title: "Headline"}}},
		search:  &fakeSearch{results: []search.Result{{Title: "Pizza Place", Link: "https://pizza"}}},
	}
	assistant := newTestAssistant(t, f.weather, f.news, f.search)
	svc, err := NewChatService(f.store, f.tracker, assistant, "")
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *chatFixture) chat(t *testing.T, user, input string) ChatOutput {
	t.Helper()
	out, err := f.svc.Chat(context.Background(), ChatInput{UserInput: input, UserID: user})
	require.NoError(t, err)
	return out
}

func (f *chatFixture) awaiting(t *testing.T, user string) bool {
	t.Helper()
	s, _ := f.tracker.Snapshot(user)
	return s.AwaitingLocation
}

func TestNewChatService_ValidatesDependencies(t *testing.T) {
	a := newTestAssistant(t, &fakeWeather{}, &fakeNews{}, &fakeSearch{})
	_, err := NewChatService(nil, conversation.NewTracker(), a, "")
	require.Error(t, err)
	_, err = NewChatService(&memStore{}, nil, a, "")
	require.Error(t, err)
	_, err = NewChatService(&memStore{}, conversation.NewTracker(), nil, "")
	require.Error(t, err)
}

func TestChat_EmptyInput(t *testing.T) {
	f := newChatFixture(t)
	out := f.chat(t, "a", "   ")
	require.Equal(t, msgCouldNotUnderstand, out.Response)
	require.Equal(t, IntentEmpty, out.Intent)
	require.Zero(t, f.tracker.Len(), "empty input must not create state")
}

func TestChat_PersonalRoundTrip(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.store.Upsert(context.Background(), "name", "Alex")
	require.NoError(t, err)

	out := f.chat(t, "a", "What is your NAME?")
	require.Equal(t, IntentPersonal, out.Intent)
	require.Equal(t, "Your name is Alex.", out.Response)
}

func TestChat_PersonalNoMatchAsksToLearn(t *testing.T) {
	f := newChatFixture(t)
	out := f.chat(t, "a", "who is the president")
	require.Equal(t, IntentPersonal, out.Intent)
	require.Equal(t, msgLearnPrompt, out.Response)
}

func TestChat_PersonalStorageError(t *testing.T) {
	f := newChatFixture(t)
	f.store.err = errBoom
	_, err := f.svc.Chat(context.Background(), ChatInput{UserInput: "what is my age", UserID: "a"})
	expectUsecaseError(t, err, ErrorStorage, "store_match_error")
}

func TestChat_PersonalTriggersTakePrecedence(t *testing.T) {
	f := newChatFixture(t)
	out := f.chat(t, "a", "what's the weather")
	require.Equal(t, IntentPersonal, out.Intent)
	require.Equal(t, msgLearnPrompt, out.Response)
	require.False(t, f.awaiting(t, "a"))
	require.Empty(t, f.weather.locations)
}

func TestChat_WeatherTwoTurnExchange(t *testing.T) {
	f := newChatFixture(t)

	out := f.chat(t, "a", "weather please")
	require.Equal(t, IntentWeather, out.Intent)
	require.Equal(t, msgWeatherPrompt, out.Response)
	require.True(t, f.awaiting(t, "a"))
	require.Empty(t, f.weather.locations)

	out = f.chat(t, "a", "  Paris  ")
	require.Equal(t, IntentLocationReply, out.Intent)
	require.Equal(t, []string{"paris"}, f.weather.locations)
	require.Equal(t, "The weather in paris is light rain with a temperature of 12°C.", out.Response)
	require.False(t, f.awaiting(t, "a"))
}

func TestChat_LocationReplyBeatsIntentMatching(t *testing.T) {
	f := newChatFixture(t)
	f.chat(t, "a", "weather")

	// keeps punctuation and ignores the "news" trigger
	out := f.chat(t, "a", "St. John's, news")
	require.Equal(t, IntentLocationReply, out.Intent)
	require.Equal(t, []string{"st. john's, news"}, f.weather.locations)
	require.Empty(t, f.news.limit)
}

func TestChat_UsersAreIsolated(t *testing.T) {
	f := newChatFixture(t)
	f.chat(t, "alice", "weather")
	require.True(t, f.awaiting(t, "alice"))

	out := f.chat(t, "bob", "latest news")
	require.Equal(t, IntentNews, out.Intent)
	require.False(t, f.awaiting(t, "bob"))
	require.True(t, f.awaiting(t, "alice"))
}

func TestChat_DefaultUserID(t *testing.T) {
	f := newChatFixture(t)
	f.chat(t, "", "weather")
	require.True(t, f.awaiting(t, DefaultUserID))
}

func TestChat_News(t *testing.T) {
	f := newChatFixture(t)
	out := f.chat(t, "a", "Give me the news!")
	require.Equal(t, IntentNews, out.Intent)
	require.Equal(t, "Here are the top news headlines:\n- Headline", out.Response)
}

func TestChat_WeatherBeatsNews(t *testing.T) {
	f := newChatFixture(t)
	out := f.chat(t, "a", "weather news")
	require.Equal(t, IntentWeather, out.Intent)
}

func TestChat_SearchExtractsQuery(t *testing.T) {
	f := newChatFixture(t)
	out := f.chat(t, "a", "please search best pizza nyc")
	require.Equal(t, IntentSearch, out.Intent)
	require.Equal(t, []string{"best pizza nyc"}, f.search.queries)
	require.Contains(t, out.Response, "1. Pizza Place - https://pizza")
}

func TestChat_Unknown(t *testing.T) {
	f := newChatFixture(t)
	out := f.chat(t, "a", "hello there")
	require.Equal(t, IntentUnknown, out.Intent)
	require.Equal(t, msgLearnPrompt, out.Response)
}

func TestExtractSearchQuery(t *testing.T) {
	cases := map[string]string{
		"please search best pizza nyc":    "best pizza nyc",
		"search for search engines":       "engines",
		"research":                        "",
		"search":                          "",
		"nothing here":                    "",
		"i want to search   golang tips ": "golang tips",
	}
	for in, want := range cases {
		require.Equal(t, want, extractSearchQuery(in), "input=%q", in)
	}
}

func TestStripPunctuation(t *testing.T) {
	require.Equal(t, "whats the weather", stripPunctuation("what's the weather?!"))
	require.Equal(t, "café ok", stripPunctuation("café, ok."))
}
