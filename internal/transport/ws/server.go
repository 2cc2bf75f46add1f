package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/gorilla/websocket"
)

// TokenVerifier — контракт handshake-аутентификации.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Server struct {
	upgrader websocket.Upgrader
	presence *Presence
	router   *Router
	verifier TokenVerifier

	pingEvery  time.Duration
	maxMsgSize int64
}

func NewServer(presence *Presence, router *Router, verifier TokenVerifier, pingEvery time.Duration, maxMsgSize int64) *Server {
	if pingEvery <= 0 {
		pingEvery = 15 * time.Second
	}
	if maxMsgSize <= 0 {
		maxMsgSize = 1 << 20
	}
	return &Server{
		presence: presence,
		router:   router,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:  pingEvery,
		maxMsgSize: maxMsgSize,
	}
}

// WS endpoint: GET /socket-message?token=...
// Токен передаётся один раз при подключении, в сообщениях не повторяется.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeAuthError(w, "unauthorized")
		return
	}

	// Отказ до апгрейда: никакого состояния для неаутентифицированных соединений.
	userID, err := s.verifier.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			writeAuthError(w, "token_expired")
		default:
			writeAuthError(w, "invalid_token")
		}
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "user", userID, "err", err)
		return
	}

	// identity привязан к соединению на всю его жизнь
	c := newWsConn(conn, userID)
	s.presence.Register(c)
	slog.Debug("ws connected", "user", userID)

	go s.writeLoop(c)
	s.readLoop(r, c)

	// Выполняется при любом завершении: graceful close, таймаут,
	// protocol error — presence не должен утекать.
	s.presence.Unregister(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "user", userID, "err", err)
	}
	slog.Debug("ws disconnected", "user", userID)
}

func (s *Server) readLoop(r *http.Request, c *wsConn) {
	defer func() { _ = c.Close() }()
	ctx := r.Context()

	c.conn.SetReadLimit(s.maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	// События одного соединения обрабатываются строго по порядку получения:
	// отсюда FIFO-гарантия доставки для пары отправитель-получатель.
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeChatNew:
			var p NewChatPayload
			if decode(msg.Payload, &p) == nil {
				s.router.HandleNewChat(ctx, c, p)
			}
		case TypeChatSeen:
			var p SeenPayload
			if decode(msg.Payload, &p) == nil {
				s.router.HandleSeen(ctx, c, p)
			}
		case TypeChatTyping:
			var p TypingPayload
			if decode(msg.Payload, &p) == nil {
				s.router.HandleTyping(c, p)
			}
		default:
			// ignore
		}
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

func writeAuthError(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + reason + `"}`))
}

// --- helpers ---

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

type wsConn struct {
	conn   *websocket.Conn
	userID string
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, userID string) *wsConn {
	return &wsConn{
		conn:   c,
		userID: userID,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) UserID() string { return c.userID }
