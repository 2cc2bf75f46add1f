package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres"
	"github.com/cwrk-planet/chat-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConvRepo struct {
	entries    []domain.ChatEntry
	historyErr error
}

func (r *fakeConvRepo) Append(_ context.Context, conversationID, senderID, text string, at time.Time) (*domain.EntryRef, error) {
	return &domain.EntryRef{ID: "e1", CreatedAt: at}, nil
}

func (r *fakeConvRepo) MarkSeen(_ context.Context, conversationID, viewerID string) error {
	return nil
}

func (r *fakeConvRepo) History(_ context.Context, conversationID, after string, limit int) ([]domain.ChatEntry, string, error) {
	if r.historyErr != nil {
		return nil, "", r.historyErr
	}
	return r.entries, "", nil
}

func newTestHandler(repo *fakeConvRepo) http.Handler {
	h := NewHandler(service.NewConversationService(repo), nil)
	r := chi.NewRouter()
	r.Get("/conversations/{id}/chat", h.GetChatHistory)
	r.Post("/conversations/{id}/seen", h.MarkSeen)
	return r
}

func TestGetChatHistory_OK(t *testing.T) {
	repo := &fakeConvRepo{entries: []domain.ChatEntry{{
		ID:             "e1",
		ConversationID: "c1",
		SenderID:       "u1",
		Text:           "hi",
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}}

	rec := httptest.NewRecorder()
	newTestHandler(repo).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/conversations/c1/chat", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[{
		"id":"e1","conversationId":"c1","senderId":"u1","text":"hi",
		"viewed":false,"createdAt":"2026-01-02T03:04:05Z"}]}`, rec.Body.String())
}

func TestGetChatHistory_InvalidCursor(t *testing.T) {
	repo := &fakeConvRepo{historyErr: fmt.Errorf("decode cursor: %w", postgres.ErrInvalidCursor)}

	rec := httptest.NewRecorder()
	newTestHandler(repo).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/conversations/c1/chat?cursor=%25%25", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_cursor"}`, rec.Body.String())
}

func TestGetChatHistory_StoreUnavailable(t *testing.T) {
	repo := &fakeConvRepo{historyErr: fmt.Errorf("%w: dial", domain.ErrStoreUnavailable)}

	rec := httptest.NewRecorder()
	newTestHandler(repo).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/conversations/c1/chat", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

// Без identity в контексте (запрос мимо auth middleware) — 401.
func TestMarkSeen_NoIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&fakeConvRepo{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/conversations/c1/seen", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
