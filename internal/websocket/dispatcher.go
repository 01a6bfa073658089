package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// BroadcastToUser delivers payload to every live connection of one user.
// Delivery is best-effort: a connection whose queue is full is evicted
// rather than waited on, and partial failure is not an error. Only two
// outcomes surface to the caller: the user has no connections at all, or
// every target rejected the payload.
func (m *Manager) BroadcastToUser(userID uint, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	targets := m.LookupByUser(userID)
	if len(targets) == 0 {
		return ErrNoActiveConnections
	}

	delivered := m.deliver(targets, data)
	if delivered == 0 {
		return fmt.Errorf("broadcast to user %d: all %d connections failed", userID, len(targets))
	}
	return nil
}

// BroadcastToCategory delivers payload to every connection subscribed to
// category. Fire-and-forget: the call returns once every snapshotted target
// has been attempted.
func (m *Manager) BroadcastToCategory(category string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal broadcast payload", "category", category, "error", err)
		return
	}
	m.deliver(m.LookupByCategory(category), data)
}

// BroadcastAll delivers payload to every live connection. Fire-and-forget.
func (m *Manager) BroadcastAll(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal broadcast payload", "error", err)
		return
	}

	m.mu.RLock()
	targets := make([]*Connection, 0, len(m.connections))
	for _, c := range m.connections {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	m.deliver(targets, data)
}

// deliver enqueues data on each target without ever blocking. A full queue
// means a stalled consumer: the payload is dropped and the connection is
// evicted in the same dispatch, favouring registry health over delivery to
// slow clients.
func (m *Manager) deliver(targets []*Connection, data []byte) int {
	delivered := 0
	for _, c := range targets {
		err := c.enqueue(data)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrQueueFull):
			slog.Warn("outbound queue full, evicting connection",
				"connectionID", c.ID, "userID", c.UserID)
			m.Unregister(c.ID)
		default:
			// Already closed; the snapshot was stale. Expected, ignore.
		}
	}
	return delivered
}
