package ws

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// ConversationStore — контракт персистентности, который потребляет роутер.
type ConversationStore interface {
	Append(ctx context.Context, conversationID, senderID, text string, at time.Time) (*domain.EntryRef, error)
	MarkSeen(ctx context.Context, conversationID, viewerID string) error
}

// Router принимает доменные события и проводит каждое по явной цепочке
// received -> persisted -> delivered (или received -> persist failed).
// Доставка fire-and-forget: шлём всем живым соединениям адресата на момент
// lookup, подтверждения от peer-а не ждём.
type Router struct {
	store    ConversationStore
	presence *Presence
}

func NewRouter(store ConversationStore, presence *Presence) *Router {
	return &Router{store: store, presence: presence}
}

// HandleNewChat: сперва durable append, и только потом рассылка. Если append
// упал — адресату ничего не уходит, ошибка возвращается инициатору.
// Оффлайн-адресат — не ошибка: запись сохранена, клиент заберёт её через REST.
func (r *Router) HandleNewChat(ctx context.Context, origin Conn, p NewChatPayload) {
	ref, err := r.store.Append(ctx, p.ConversationID, origin.UserID(), p.Message.Text, p.Message.Time)
	if err != nil {
		slog.Warn("chat append failed",
			"conversation", p.ConversationID, "from", origin.UserID(), "err", err)
		r.sendError(origin, TypeChatNew, err)
		return
	}

	out := Message{
		Type: TypeChatMessage,
		Payload: ChatMessagePayload{
			Message: OutgoingEntry{
				ID:     p.Message.ID,
				Time:   ref.CreatedAt,
				Text:   p.Message.Text,
				User:   p.Message.User,
				Viewed: false,
			},
			From:           p.Message.User,
			ConversationID: p.ConversationID,
		},
	}

	for _, c := range r.presence.Connections(p.To) {
		if err := c.Send(out); err != nil {
			slog.Debug("chat deliver failed", "to", p.To, "err", err)
		}
	}
}

// HandleSeen: отметка пишется в стор, затем уведомляются все живые
// соединения автора (peerId), чтобы read receipt появился во всех его вкладках.
func (r *Router) HandleSeen(ctx context.Context, origin Conn, p SeenPayload) {
	if err := r.store.MarkSeen(ctx, p.ConversationID, origin.UserID()); err != nil {
		slog.Warn("mark seen failed",
			"conversation", p.ConversationID, "viewer", origin.UserID(), "err", err)
		r.sendError(origin, TypeChatSeen, err)
		return
	}

	out := Message{
		Type: TypeChatSeen,
		Payload: SeenNotice{
			ConversationID: p.ConversationID,
			MessageID:      p.MessageID,
		},
	}
	for _, c := range r.presence.Connections(p.PeerID) {
		if err := c.Send(out); err != nil {
			slog.Debug("seen deliver failed", "to", p.PeerID, "err", err)
		}
	}
}

// HandleTyping эфемерен: без персистентности, оффлайн-адресат — молча drop.
func (r *Router) HandleTyping(origin Conn, p TypingPayload) {
	out := Message{Type: TypeChatTyping, Payload: TypingNotice{Typing: p.Active}}
	for _, c := range r.presence.Connections(p.To) {
		_ = c.Send(out) // best-effort
	}
}

func (r *Router) sendError(origin Conn, event string, err error) {
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		msg = "message could not be saved, try again"
	case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageTooLong):
		msg = err.Error()
	}
	if err := origin.Send(Message{Type: TypeError, Payload: ErrorPayload{Event: event, Message: msg}}); err != nil {
		slog.Debug("error notify failed", "user", origin.UserID(), "err", err)
	}
}
