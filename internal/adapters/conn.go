// Package adapters binds the core relay to its transports. It owns every
// websocket resource; core never sees a connection, only the Emitter.
package adapters

import (
	"errors"
	"sync"
	"time"
)

var ErrBackpressure = errors.New("backpressure")

const sendBuffer = 64

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	Close() error
}

// Conn is one live websocket endpoint with its outbound buffer.
type Conn struct {
	ws   WSConn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func NewConn(ws WSConn) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}
}

// TrySend queues one frame without blocking. A full buffer means the peer is
// too slow; the frame is dropped, fanout is fire-and-forget.
func (c *Conn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close is idempotent; concurrent close notifications from the transport and
// the pumps are expected.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.ws.Close()
	c.mu.Unlock()
}
