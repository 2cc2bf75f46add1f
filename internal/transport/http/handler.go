package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres"
	"github.com/cwrk-planet/chat-service/internal/service"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type Handler struct {
	convSvc    *service.ConversationService
	profileSvc *service.ProfileService
}

func NewHandler(conv *service.ConversationService, profile *service.ProfileService) *Handler {
	return &Handler{
		convSvc:    conv,
		profileSvc: profile,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logError дополняет запись trace_id/span_id из контекста запроса.
func logError(ctx context.Context, msg string, err error) {
	attrs := append(logger.AttrsFromCtx(ctx), slog.Any("err", err))
	logger.L().LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

// GET /conversations/{id}/chat?limit=&cursor=
// Путь, которым оффлайн-адресат забирает накопившиеся сообщения.
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	entries, next, err := h.convSvc.History(r.Context(), conversationID, cursor, limit)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		logError(r.Context(), "handler.GetChatHistory:", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	items := lo.Map(entries, func(e domain.ChatEntry, _ int) ChatEntryItem {
		return ChatEntryItem{
			ID:             e.ID,
			ConversationID: e.ConversationID,
			SenderID:       e.SenderID,
			Text:           e.Text,
			Viewed:         e.Seen,
			CreatedAt:      e.CreatedAt,
		}
	})

	writeJSON(w, http.StatusOK, ChatHistoryResponse{Items: items, NextCursor: next})
}

// POST /conversations/{id}/seen
// REST-зеркало chat:seen: просмотр истории тоже снимает "непрочитано".
func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	viewerID := httpmw.UserIDFromCtx(r.Context())
	if viewerID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	if err := h.convSvc.MarkSeen(r.Context(), conversationID, viewerID); err != nil {
		logError(r.Context(), "handler.MarkSeen:", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "store unavailable"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /users/{id}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.profileSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
			return
		}
		logError(r.Context(), "handler.GetProfile:", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, p)
}
