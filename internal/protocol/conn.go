package protocol

import (
	"net"
	"sync"
	"time"
)

// Conn exchanges framed messages over a stream connection. Writes are
// serialized; reads must come from a single goroutine.
type Conn struct {
	conn net.Conn
	mu   sync.Mutex
}

// NewConn wraps c.
func NewConn(c net.Conn) *Conn {
	return &Conn{conn: c}
}

// Send writes one message.
func (c *Conn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteFrame(c.conn, msg)
}

// Receive blocks for the next message.
func (c *Conn) Receive() (Message, error) {
	return ReadFrame(c.conn)
}

// SetReadDeadline bounds the next Receive.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
