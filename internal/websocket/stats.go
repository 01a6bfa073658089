package websocket

import "time"

// ConnectionStats is an aggregate view over the live indices. It is a
// consistent snapshot, not linearizable with concurrent registrations.
type ConnectionStats struct {
	TotalConnections int            `json:"totalConnections"`
	UniqueUsers      int            `json:"uniqueUsers"`
	ByCategory       map[string]int `json:"byCategory"`
	ByRole           map[string]int `json:"byRole"`
}

// ServerInfo carries static operational metadata for the status endpoints.
type ServerInfo struct {
	Version   string        `json:"version"`
	StartedAt time.Time     `json:"startedAt"`
	Uptime    time.Duration `json:"uptime"`
}

// GetConnectionStats walks the current indices and returns totals plus
// per-category and per-role breakdowns.
func (m *Manager) GetConnectionStats() ConnectionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := ConnectionStats{
		TotalConnections: len(m.connections),
		UniqueUsers:      len(m.byUser),
		ByCategory:       make(map[string]int, len(m.byCategory)),
		ByRole:           make(map[string]int),
	}
	for cat, members := range m.byCategory {
		stats.ByCategory[cat] = len(members)
	}
	for _, c := range m.connections {
		stats.ByRole[c.Role]++
	}
	return stats
}

// GetServerInfo reports version and uptime. Unrelated to the connection
// indices, so no locking is needed.
func (m *Manager) GetServerInfo() ServerInfo {
	now := m.clock.Now()
	return ServerInfo{
		Version:   m.version,
		StartedAt: m.startedAt,
		Uptime:    now.Sub(m.startedAt),
	}
}
