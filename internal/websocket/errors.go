package websocket

import "errors"

var (
	// ErrInvalidCategories is returned by Register when the caller supplies no
	// categories or an empty role. The handshake handler must close the socket.
	ErrInvalidCategories = errors.New("at least one category and a non-empty role are required")

	// ErrRegistrationFailed is returned by Register when the socket is already
	// dead at call time.
	ErrRegistrationFailed = errors.New("connection registration failed")

	// ErrNoActiveConnections is returned by BroadcastToUser when the target user
	// has no live connections. Callers treat it as "user not online", not as a
	// system failure.
	ErrNoActiveConnections = errors.New("no active connections for user")

	// ErrConnectionClosed is returned when enqueueing on a connection that has
	// already been torn down.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrQueueFull is returned when a connection's outbound queue is at
	// capacity. The dispatcher reacts by evicting the connection.
	ErrQueueFull = errors.New("outbound queue full")
)
