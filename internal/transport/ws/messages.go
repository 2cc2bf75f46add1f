package ws

import (
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Типы событий, которые ходят через WS
const (
	TypeChatNew     = "chat:new"     // входящее: новое сообщение
	TypeChatSeen    = "chat:seen"    // входящее и исходящее: отметка о прочтении
	TypeChatTyping  = "chat:typing"  // входящее и исходящее: индикатор набора
	TypeChatMessage = "chat:message" // исходящее: доставка сообщения адресату
	TypeError       = "error"        // исходящее: ошибка только отправителю
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// NewChatPayload — chat:new от клиента.
type NewChatPayload struct {
	Message        IncomingEntry `json:"message"`
	To             string        `json:"to"`
	ConversationID string        `json:"conversationId"`
}

type IncomingEntry struct {
	ID   string         `json:"id"` // клиентский id, для дедупликации на фронте
	Time time.Time      `json:"time"`
	Text string         `json:"text"`
	User domain.Profile `json:"user"`
}

// ChatMessagePayload — chat:message адресату; viewed всегда false при доставке.
type ChatMessagePayload struct {
	Message        OutgoingEntry  `json:"message"`
	From           domain.Profile `json:"from"`
	ConversationID string         `json:"conversationId"`
}

type OutgoingEntry struct {
	ID     string         `json:"id"`
	Time   time.Time      `json:"time"`
	Text   string         `json:"text"`
	User   domain.Profile `json:"user"`
	Viewed bool           `json:"viewed"`
}

// SeenPayload — chat:seen от клиента: messageId прочитан, peerId — автор.
type SeenPayload struct {
	MessageID      string `json:"messageId"`
	PeerID         string `json:"peerId"`
	ConversationID string `json:"conversationId"`
}

// SeenNotice — chat:seen всем живым соединениям автора.
type SeenNotice struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

type TypingPayload struct {
	To     string `json:"to"`
	Active bool   `json:"active"`
}

type TypingNotice struct {
	Typing bool `json:"typing"`
}

// ErrorPayload уходит только инициатору события.
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}
