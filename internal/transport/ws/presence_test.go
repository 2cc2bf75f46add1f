package ws

import (
	"sync"
	"testing"
)

type fakeConn struct {
	userID string
	fail   bool

	mu   sync.Mutex
	sent []Message
}

func (c *fakeConn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errSendFailed
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) Close() error   { return nil }
func (c *fakeConn) UserID() string { return c.userID }

func (c *fakeConn) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}

func TestPresence_RegisterLookup(t *testing.T) {
	p := NewPresence()
	a := &fakeConn{userID: "u1"}
	b := &fakeConn{userID: "u2"}
	c := &fakeConn{userID: "u2"}

	p.Register(a)
	p.Register(b)
	p.Register(c)

	if got := p.Connections("u1"); len(got) != 1 {
		t.Fatalf("u1 connections = %d, want 1", len(got))
	}
	if got := p.Connections("u2"); len(got) != 2 {
		t.Fatalf("u2 connections = %d, want 2", len(got))
	}
	if got := p.Connections("u3"); len(got) != 0 {
		t.Fatalf("u3 connections = %d, want 0", len(got))
	}
}

func TestPresence_RegisterIdempotent(t *testing.T) {
	p := NewPresence()
	a := &fakeConn{userID: "u1"}

	p.Register(a)
	p.Register(a)

	if got := p.Connections("u1"); len(got) != 1 {
		t.Fatalf("duplicate register: connections = %d, want 1", len(got))
	}
}

// identity присутствует в реестре тогда и только тогда, когда у него
// есть хотя бы одно живое соединение.
func TestPresence_NoDanglingEntries(t *testing.T) {
	p := NewPresence()
	b := &fakeConn{userID: "u2"}
	c := &fakeConn{userID: "u2"}

	p.Register(b)
	p.Register(c)
	p.Unregister(b)

	if !p.Online("u2") {
		t.Fatal("u2 still has a live connection, must be online")
	}

	p.Unregister(c)

	if p.Online("u2") {
		t.Fatal("u2 has no connections, must be dropped from the registry")
	}
	p.mu.RLock()
	_, exists := p.users["u2"]
	p.mu.RUnlock()
	if exists {
		t.Fatal("empty identity entry retained in the map")
	}
}

func TestPresence_UnregisterUnknownIsNoop(t *testing.T) {
	p := NewPresence()
	p.Unregister(&fakeConn{userID: "ghost"})

	if p.Online("ghost") {
		t.Fatal("ghost must not appear")
	}
}

// Две вкладки одного пользователя подключаются и отключаются параллельно.
func TestPresence_ConcurrentSameIdentity(t *testing.T) {
	p := NewPresence()

	const n = 64
	conns := make([]*fakeConn, n)
	for i := range conns {
		conns[i] = &fakeConn{userID: "u1"}
	}

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			p.Register(c)
			p.Connections("u1")
			p.Unregister(c)
		}(c)
	}
	wg.Wait()

	if p.Online("u1") {
		t.Fatal("all connections closed, identity must be dropped")
	}
}
