package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/protocol"
	"github.com/gorilla/websocket"
)

// transport moves protocol messages over one client connection.
type transport interface {
	Send(msg protocol.Message) error
	Receive() (protocol.Message, error)
	RemoteAddr() string
	Close() error
}

// wsTransport carries the same envelopes as JSON text frames.
type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func newWSTransport(conn *websocket.Conn, writeTimeout time.Duration) *wsTransport {
	conn.SetReadLimit(protocol.MaxFrameSize)
	return &wsTransport{conn: conn, writeTimeout: writeTimeout}
}

func (t *wsTransport) Send(msg protocol.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	return t.conn.WriteJSON(msg)
}

func (t *wsTransport) Receive() (protocol.Message, error) {
	var msg protocol.Message
	err := t.conn.ReadJSON(&msg)
	return msg, err
}

func (t *wsTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }

func (t *wsTransport) Close() error { return t.conn.Close() }

// session is one connected client. The id doubles as the player id handed
// out in WELCOME.
type session struct {
	id        string
	transport transport

	mu            sync.Mutex
	name          string
	greeted       bool
	lastSeen      time.Time
	lastClientSeq int

	sendMu    sync.Mutex
	serverSeq int

	closeOnce sync.Once
	closed    chan struct{}
}

func newSession(id string, t transport, now time.Time) *session {
	return &session{
		id:        id,
		transport: t,
		lastSeen:  now,
		closed:    make(chan struct{}),
	}
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) silentFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *session) greet(name string) {
	s.mu.Lock()
	s.name = name
	s.greeted = true
	s.mu.Unlock()
}

func (s *session) isGreeted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.greeted
}

func (s *session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// isDuplicate reports whether a client command seq was already seen, and
// records it otherwise.
func (s *session) isDuplicate(seq int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.lastClientSeq {
		return true
	}
	s.lastClientSeq = seq
	return false
}

// send numbers and writes one message. A failed write closes the session.
func (s *session) send(t protocol.MessageType, matchID string, payload any) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.serverSeq++
	msg, err := protocol.New(t, matchID, s.serverSeq, payload)
	if err != nil {
		return err
	}
	if err := s.transport.Send(msg); err != nil {
		s.close()
		return fmt.Errorf("send %s to %s: %w", t, s.id, err)
	}
	return nil
}

func (s *session) sendError(text string) error {
	return s.send(protocol.TypeError, "", protocol.Error{Message: text})
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.transport.Close()
	})
}

func (s *session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
