package service

import (
	"context"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

const maxEntryLen = 4000

// ConversationRepo — контракт хранилища переписок.
type ConversationRepo interface {
	Append(ctx context.Context, conversationID, senderID, text string, at time.Time) (*domain.EntryRef, error)
	MarkSeen(ctx context.Context, conversationID, viewerID string) error
	History(ctx context.Context, conversationID, after string, limit int) ([]domain.ChatEntry, string, error)
}

type ConversationService struct {
	repo ConversationRepo
}

func NewConversationService(repo ConversationRepo) *ConversationService {
	return &ConversationService{repo: repo}
}

// Append durably дописывает запись; вызывающий не должен рассылать
// сообщение, пока Append не вернулся без ошибки.
func (s *ConversationService) Append(ctx context.Context, conversationID, senderID, text string, at time.Time) (*domain.EntryRef, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(text) > maxEntryLen {
		return nil, domain.ErrMessageTooLong
	}
	return s.repo.Append(ctx, conversationID, senderID, text, at)
}

// MarkSeen идемпотентен: повторный вызов без новых записей ничего не меняет.
func (s *ConversationService) MarkSeen(ctx context.Context, conversationID, viewerID string) error {
	return s.repo.MarkSeen(ctx, conversationID, viewerID)
}

func (s *ConversationService) History(ctx context.Context, conversationID, after string, limit int) ([]domain.ChatEntry, string, error) {
	return s.repo.History(ctx, conversationID, after, limit)
}
