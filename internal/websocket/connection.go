package websocket

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Clients only send control
	// traffic on these sockets, so the limit is tight.
	maxMessageSize = 512
)

// Connection lifecycle states.
const (
	StateConnecting int32 = iota
	StateActive
	StateClosing
	StateClosed
)

// Socket is the subset of *websocket.Conn the manager relies on. Tests
// substitute an in-memory implementation.
type Socket interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Metadata captures descriptive facts about a connection at upgrade time.
// It is never consulted for routing decisions.
type Metadata struct {
	ClientIP  string            `json:"clientIp,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Purpose   string            `json:"purpose,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Connection represents one live socket. It owns a bounded outbound queue
// drained by a single writer goroutine (sockets are not safe for concurrent
// writes) and a one-shot done channel the handshake handler blocks on.
// The sweeper additionally sends control pings via WriteControl, which
// gorilla permits concurrently with the writer.
type Connection struct {
	ID          string
	UserID      uint
	Role        string
	Metadata    Metadata
	ConnectedAt time.Time

	categories map[string]struct{}

	manager *Manager
	conn    Socket
	send    chan []byte

	done      chan struct{}
	closeOnce sync.Once
	pumps     sync.WaitGroup
	state     atomic.Int32
	lastSeen  atomic.Int64 // unix nanoseconds, refreshed on pong
}

// Done returns a channel closed exactly once when the connection is torn
// down. Handshake handlers block on it until the socket goes away.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// State reports the current lifecycle state.
func (c *Connection) State() int32 {
	return c.state.Load()
}

// Categories returns a copy of the category set fixed at registration.
func (c *Connection) Categories() []string {
	out := make([]string, 0, len(c.categories))
	for cat := range c.categories {
		out = append(out, cat)
	}
	return out
}

// HasCategory reports whether the connection subscribed to cat.
func (c *Connection) HasCategory(cat string) bool {
	_, ok := c.categories[cat]
	return ok
}

// LastSeen returns the time of the last heartbeat acknowledgement.
func (c *Connection) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *Connection) touch(now time.Time) {
	c.lastSeen.Store(now.UnixNano())
}

// enqueue places data on the outbound queue without blocking. A full queue
// is reported to the caller; the dispatcher treats that as a stalled
// consumer and evicts the connection.
func (c *Connection) enqueue(data []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrQueueFull
	}
}

// close fires the teardown signal exactly once and closes the socket. The
// Closing state holds until both pumps have exited.
func (c *Connection) close() {
	c.closeOnce.Do(func() {
		c.state.Store(StateClosing)
		close(c.done)
		_ = c.conn.Close()

		go func() {
			c.pumps.Wait()
			c.state.Store(StateClosed)
		}()
	})
}

// readPump is the sole reader of the socket. Inbound frames are control
// traffic only; pongs refresh lastSeen via the pong handler. Any read error
// resolves to eviction, never a retry.
func (c *Connection) readPump() {
	defer func() {
		c.pumps.Done()
		c.manager.Unregister(c.ID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.manager.heartbeatTimeout()))
	c.conn.SetPongHandler(func(string) error {
		c.touch(c.manager.clock.Now())
		return c.conn.SetReadDeadline(time.Now().Add(c.manager.heartbeatTimeout()))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "connectionID", c.ID, "userID", c.UserID, "error", err)
			}
			return
		}
		// Anything the peer sends counts as liveness.
		c.touch(c.manager.clock.Now())
	}
}

// writePump is the sole writer of data frames. It drains the outbound queue
// in FIFO order; any write error resolves to eviction.
func (c *Connection) writePump() {
	defer func() {
		c.pumps.Done()
		c.manager.Unregister(c.ID)
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("websocket write error", "connectionID", c.ID, "userID", c.UserID, "error", err)
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
