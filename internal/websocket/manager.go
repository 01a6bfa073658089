package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// Config carries the tunables of the connection manager. All values have
// working defaults; see DefaultConfig.
type Config struct {
	// SendQueueCapacity is the outbound queue size per connection. Enqueue
	// never blocks; a full queue gets the connection evicted.
	SendQueueCapacity int

	// HeartbeatInterval is how often the sweeper probes live connections.
	HeartbeatInterval time.Duration

	// MissedThreshold is the number of heartbeat intervals a connection may
	// go unacknowledged before it is considered dead.
	MissedThreshold int
}

// DefaultConfig returns the manager defaults.
func DefaultConfig() Config {
	return Config{
		SendQueueCapacity: 256,
		HeartbeatInterval: 30 * time.Second,
		MissedThreshold:   3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SendQueueCapacity <= 0 {
		c.SendQueueCapacity = d.SendQueueCapacity
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.MissedThreshold <= 0 {
		c.MissedThreshold = d.MissedThreshold
	}
	return c
}

// Manager is the authoritative registry of live connections. It keeps three
// indices: by connection id, by user id and by category. Index mutation
// happens only inside Register and Unregister under one mutex, so no reader
// ever observes a connection present in one index and absent in another.
//
// One Manager is constructed at process start and handed to every handshake
// handler and broadcaster.
type Manager struct {
	cfg   Config
	clock clockwork.Clock

	mu          sync.RWMutex
	connections map[string]*Connection
	byUser      map[uint]map[string]*Connection
	byCategory  map[string]map[string]*Connection

	ctx       context.Context
	cancel    context.CancelFunc
	startedAt time.Time
	version   string
}

// NewManager creates a connection manager. Call Run to start the liveness
// sweeper and Stop to tear everything down.
func NewManager(cfg Config, version string) *Manager {
	return newManager(cfg, version, clockwork.NewRealClock())
}

func newManager(cfg Config, version string, clock clockwork.Clock) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:         cfg.withDefaults(),
		clock:       clock,
		connections: make(map[string]*Connection),
		byUser:      make(map[uint]map[string]*Connection),
		byCategory:  make(map[string]map[string]*Connection),
		ctx:         ctx,
		cancel:      cancel,
		startedAt:   clock.Now(),
		version:     version,
	}
}

// heartbeatTimeout is the window within which a connection must acknowledge
// a heartbeat before the sweeper declares it dead.
func (m *Manager) heartbeatTimeout() time.Duration {
	return m.cfg.HeartbeatInterval * time.Duration(m.cfg.MissedThreshold)
}

// Register takes an already-upgraded socket and enters it into all indices.
// The returned connection exposes Done for the handler to block on. The
// reader and writer pumps are started here; from this point on the manager
// owns the socket.
func (m *Manager) Register(sock Socket, userID uint, role string, categories []string, meta Metadata) (*Connection, error) {
	if role == "" || len(categories) == 0 {
		return nil, ErrInvalidCategories
	}

	// Probe the socket so a peer that vanished during the handshake fails
	// here instead of on the first broadcast.
	deadline := time.Now().Add(writeWait)
	if err := sock.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		return nil, ErrRegistrationFailed
	}

	now := m.clock.Now()
	c := &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		Role:        role,
		Metadata:    meta,
		ConnectedAt: now,
		categories:  make(map[string]struct{}, len(categories)),
		manager:     m,
		conn:        sock,
		send:        make(chan []byte, m.cfg.SendQueueCapacity),
		done:        make(chan struct{}),
	}
	for _, cat := range categories {
		if cat == "" {
			return nil, ErrInvalidCategories
		}
		c.categories[cat] = struct{}{}
	}
	c.touch(now)

	m.mu.Lock()
	m.connections[c.ID] = c
	if userID != 0 {
		if m.byUser[userID] == nil {
			m.byUser[userID] = make(map[string]*Connection)
		}
		m.byUser[userID][c.ID] = c
	}
	for cat := range c.categories {
		if m.byCategory[cat] == nil {
			m.byCategory[cat] = make(map[string]*Connection)
		}
		m.byCategory[cat][c.ID] = c
	}
	m.mu.Unlock()

	c.state.Store(StateActive)
	c.pumps.Add(2)
	go c.readPump()
	go c.writePump()

	slog.Info("connection registered",
		"connectionID", c.ID, "userID", userID, "role", role, "categories", categories)
	return c, nil
}

// Unregister removes the connection from every index, fires its teardown
// signal and closes the socket. It is idempotent: only the first call for a
// given id has effect, and unknown ids are ignored. It is reachable from
// four triggers (reader error, writer error, heartbeat timeout, explicit
// close) and safe under all of them concurrently.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	c, ok := m.connections[id]
	if ok {
		delete(m.connections, id)
		if c.UserID != 0 {
			if user := m.byUser[c.UserID]; user != nil {
				delete(user, id)
				if len(user) == 0 {
					delete(m.byUser, c.UserID)
				}
			}
		}
		for cat := range c.categories {
			if members := m.byCategory[cat]; members != nil {
				delete(members, id)
				if len(members) == 0 {
					delete(m.byCategory, cat)
				}
			}
		}
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	c.close()
	slog.Info("connection unregistered", "connectionID", id, "userID", c.UserID)
}

// LookupByUser returns a point-in-time copy of the user's connections. The
// snapshot may go stale immediately; callers tolerate send failures against
// removed connections.
func (m *Manager) LookupByUser(userID uint) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.byUser[userID])
}

// LookupByCategory returns a point-in-time copy of a category's connections.
func (m *Manager) LookupByCategory(category string) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.byCategory[category])
}

func snapshot(set map[string]*Connection) []*Connection {
	out := make([]*Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// Run starts the liveness sweeper and blocks until Stop is called. Start it
// in its own goroutine, mirroring the hub loop pattern.
func (m *Manager) Run() {
	ticker := m.clock.NewTicker(m.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			m.sweep()
		case <-m.ctx.Done():
			slog.Info("connection manager shutting down")
			return
		}
	}
}

// Stop terminates the sweeper and tears down every live connection.
func (m *Manager) Stop() {
	m.cancel()

	m.mu.RLock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.Unregister(id)
	}
}
