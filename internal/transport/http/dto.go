package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type ChatEntryItem struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Text           string    `json:"text"`
	Viewed         bool      `json:"viewed"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ChatHistoryResponse struct {
	Items      []ChatEntryItem `json:"items"`
	NextCursor string          `json:"nextCursor,omitempty"`
}
