package ws

import (
	"sync"
)

type Conn interface {
	Send(msg Message) error
	Close() error
	UserID() string
}

// Presence — identity -> множество живых соединений этого пользователя.
// Несколько вкладок одного пользователя — штатный случай, не edge case.
type Presence struct {
	mu    sync.RWMutex
	users map[string]map[Conn]struct{}
}

func NewPresence() *Presence {
	return &Presence{users: make(map[string]map[Conn]struct{})}
}

// Register идемпотентен по соединению.
func (p *Presence) Register(c Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cs, ok := p.users[c.UserID()]
	if !ok {
		cs = make(map[Conn]struct{})
		p.users[c.UserID()] = cs
	}
	cs[c] = struct{}{}
}

// Unregister убирает соединение; пустой identity удаляется целиком,
// чтобы не копить записи по оффлайн-пользователям.
func (p *Presence) Unregister(c Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cs, ok := p.users[c.UserID()]; ok {
		delete(cs, c)
		if len(cs) == 0 {
			delete(p.users, c.UserID())
		}
	}
}

// Connections возвращает снапшот: результат не отслеживает последующие
// connect/disconnect.
func (p *Presence) Connections(userID string) []Conn {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cs, ok := p.users[userID]
	if !ok {
		return nil
	}
	out := make([]Conn, 0, len(cs))
	for c := range cs {
		out = append(out, c)
	}
	return out
}

// Online — есть ли хоть одно живое соединение.
func (p *Presence) Online(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.users[userID]) > 0
}
