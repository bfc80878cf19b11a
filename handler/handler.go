// Package handler exposes the chatbot over HTTP. The same route table serves
// a standalone net/http server and API Gateway proxy events.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/personal-assistant/chatbot/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type PersonalInfoUseCase interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, key, value string) (string, error)
	Learn(ctx context.Context, in usecase.LearnInput) (usecase.LearnOutput, error)
}

type AssistantUseCase interface {
	FetchWeather(ctx context.Context, location string) string
	FetchTopNews(ctx context.Context) string
	WebSearch(ctx context.Context, query string) (string, error)
}

type Handler struct {
	chat      ChatUseCase
	info      PersonalInfoUseCase
	assistant AssistantUseCase
	logger    *slog.Logger
	router    *mux.Router
}

func NewHandler(chat ChatUseCase, info PersonalInfoUseCase, assistant AssistantUseCase, logger *slog.Logger) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat usecase must not be nil")
	}
	if info == nil {
		return nil, errors.New("handler: personal info usecase must not be nil")
	}
	if assistant == nil {
		return nil, errors.New("handler: assistant usecase must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{chat: chat, info: info, assistant: assistant, logger: logger}
	h.router = h.routes()
	return h, nil
}

func (h *Handler) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.withCorrelationID)
	r.HandleFunc("/personal_info", h.getPersonalInfo).Methods(http.MethodGet)
	r.HandleFunc("/update_personal_info", h.updatePersonalInfo).Methods(http.MethodPost)
	r.HandleFunc("/search", h.search).Methods(http.MethodGet)
	r.HandleFunc("/chat", h.postChat).Methods(http.MethodPost)
	r.HandleFunc("/learn", h.learn).Methods(http.MethodPost)
	r.HandleFunc("/weather/{location}", h.weather).Methods(http.MethodGet)
	r.HandleFunc("/news", h.news).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	return r
}

// ServeHTTP makes Handler usable as a plain net/http handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

type chatRequest struct {
	UserInput string `json:"user_input"`
	UserID    string `json:"user_id"`
}

type learnRequest struct {
	UserInput string `json:"user_input"`
}

type updateRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type searchResponse struct {
	SearchResults string `json:"search_results"`
}

type weatherResponse struct {
	Weather string `json:"weather"`
}

type newsResponse struct {
	News string `json:"news"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) getPersonalInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.info.GetAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) updatePersonalInfo(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}
	msg, err := h.info.Update(r.Context(), req.Key, req.Value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	results, err := h.assistant.WebSearch(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{SearchResults: results})
}

func (h *Handler) postChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.chat.Chat(r.Context(), usecase.ChatInput{UserInput: req.UserInput, UserID: req.UserID})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.DebugContext(r.Context(), "chat routed", "intent", out.Intent, "correlation_id", correlationID(r))
	writeJSON(w, http.StatusOK, chatResponse{Response: out.Response})
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.info.Learn(r.Context(), usecase.LearnInput{UserInput: req.UserInput})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: out.Message})
}

func (h *Handler) weather(w http.ResponseWriter, r *http.Request) {
	location := strings.ToLower(strings.TrimSpace(mux.Vars(r)["location"]))
	writeJSON(w, http.StatusOK, weatherResponse{Weather: h.assistant.FetchWeather(r.Context(), location)})
}

func (h *Handler) news(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newsResponse{News: h.assistant.FetchTopNews(r.Context())})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"path", r.URL.Path, "correlation_id", correlationID(r), "err", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body."})
		return false
	}
	return true
}

// writeError maps usecase failures to responses. Validation errors keep a 200
// status so existing clients read the "error" field as before.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error."
	reason := "unexpected"

	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		reason = ucErr.Reason
		if ucErr.Message != "" {
			msg = ucErr.Message
		}
		switch ucErr.Code {
		case usecase.ErrorInvalidInput:
			status = http.StatusOK
		case usecase.ErrorStorage:
			status = http.StatusServiceUnavailable
		}
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		"path", r.URL.Path, "status", status, "reason", reason,
		"correlation_id", correlationID(r), "err", err)
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type correlationKey struct{}

func (h *Handler) withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(correlationHeader))
		if id == "" {
			id = newCorrelationID()
		}
		w.Header().Set(correlationHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), correlationKey{}, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.InfoContext(r.Context(), "request handled",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "correlation_id", id)
	})
}

func correlationID(r *http.Request) string {
	id, _ := r.Context().Value(correlationKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
