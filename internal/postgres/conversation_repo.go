package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Append дописывает запись в конец переписки. Записи никогда не
// переупорядочиваются и не удаляются; мутируется только флаг seen.
func (r *ConversationRepository) Append(ctx context.Context, conversationID, senderID, text string, at time.Time) (*domain.EntryRef, error) {
	id := uuid.NewString()
	if at.IsZero() {
		at = time.Now().UTC()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO conversation_entries (id, conversation_id, sender_id, text, seen, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING id, created_at
	`, id, conversationID, senderID, text, at)

	var ref domain.EntryRef
	if err := row.Scan(&ref.ID, &ref.CreatedAt); err != nil {
		return nil, storeErr("append entry", err)
	}
	return &ref, nil
}

// MarkSeen помечает просмотренными все непрочитанные записи переписки,
// отправленные НЕ самим viewer-ом. Повторный вызов — no-op.
func (r *ConversationRepository) MarkSeen(ctx context.Context, conversationID, viewerID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversation_entries
		SET seen = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND seen = FALSE
	`, conversationID, viewerID)
	if err != nil {
		return storeErr("mark seen", err)
	}
	return nil
}

// History возвращает историю переписки с курсорной пагинацией (created_at,id DESC).
func (r *ConversationRepository) History(ctx context.Context, conversationID, after string, limit int) ([]domain.ChatEntry, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}

	const baseQuery = `
		SELECT id, conversation_id, sender_id, text, seen, created_at
		FROM conversation_entries
		WHERE conversation_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, baseQuery, conversationID, createdAt, id, limit)
	if err != nil {
		return nil, "", storeErr("history", err)
	}
	defer rows.Close()

	var out []domain.ChatEntry
	for rows.Next() {
		var e domain.ChatEntry
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.SenderID, &e.Text, &e.Seen, &e.CreatedAt); err != nil {
			return nil, "", storeErr("history scan", err)
		}
		out = append(out, e)
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
