package domain

import "time"

// Переписка адресуется непрозрачным conversation id; владеет ею
// marketplace-бэкенд, здесь живут только её записи.
type ChatEntry struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	Text           string    `db:"text"`
	Seen           bool      `db:"seen"`
	CreatedAt      time.Time `db:"created_at"`
}

// EntryRef возвращается после durable append.
type EntryRef struct {
	ID        string
	CreatedAt time.Time
}
