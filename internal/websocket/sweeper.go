package websocket

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// sweep runs one heartbeat cycle: evict every connection whose last
// acknowledgement is older than the timeout, then probe the survivors.
// This reclaims connections whose peer vanished without a close frame
// (network drop, crashed client).
func (m *Manager) sweep() {
	now := m.clock.Now()
	timeout := m.heartbeatTimeout()

	m.mu.RLock()
	live := make([]*Connection, 0, len(m.connections))
	for _, c := range m.connections {
		live = append(live, c)
	}
	m.mu.RUnlock()

	for _, c := range live {
		if now.Sub(c.LastSeen()) > timeout {
			slog.Warn("evicting unresponsive connection",
				"connectionID", c.ID, "userID", c.UserID, "lastSeen", c.LastSeen())
			m.Unregister(c.ID)
			continue
		}

		deadline := time.Now().Add(writeWait)
		if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			slog.Debug("heartbeat probe failed", "connectionID", c.ID, "error", err)
			m.Unregister(c.ID)
		}
	}
}
