package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T) (*Manager, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	m := newManager(DefaultConfig(), "test", clock)
	t.Cleanup(m.Stop)
	return m, clock
}

func TestRegisterValidation(t *testing.T) {
	m, _ := testManager(t)

	_, err := m.Register(newFakeSocket(), 1, RoleVisitor, nil, Metadata{})
	assert.ErrorIs(t, err, ErrInvalidCategories)

	_, err = m.Register(newFakeSocket(), 1, "", []string{CategoryNotifications}, Metadata{})
	assert.ErrorIs(t, err, ErrInvalidCategories)

	_, err = m.Register(newFakeSocket(), 1, RoleVisitor, []string{""}, Metadata{})
	assert.ErrorIs(t, err, ErrInvalidCategories)
}

func TestRegisterFailsOnDeadSocket(t *testing.T) {
	m, _ := testManager(t)

	sock := newFakeSocket()
	sock.failControl = true

	_, err := m.Register(sock, 1, RoleVisitor, []string{CategoryNotifications}, Metadata{})
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Empty(t, m.connections)
}

func TestRegisterPopulatesAllIndices(t *testing.T) {
	m, _ := testManager(t)

	c, err := m.Register(newFakeSocket(), 7, RoleVisitor,
		[]string{CategoryNotifications, CategoryQueueUpdates},
		Metadata{ClientIP: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	assert.Equal(t, StateActive, c.State())

	m.mu.RLock()
	defer m.mu.RUnlock()
	assert.Contains(t, m.connections, c.ID)
	assert.Contains(t, m.byUser[7], c.ID)
	assert.Contains(t, m.byCategory[CategoryNotifications], c.ID)
	assert.Contains(t, m.byCategory[CategoryQueueUpdates], c.ID)
}

func TestAnonymousConnectionSkipsUserIndex(t *testing.T) {
	m, _ := testManager(t)

	c, err := m.Register(newFakeSocket(), 0, RoleGuest, []string{CategoryPublic}, Metadata{})
	require.NoError(t, err)

	m.mu.RLock()
	defer m.mu.RUnlock()
	assert.Contains(t, m.connections, c.ID)
	assert.Empty(t, m.byUser)
	assert.Contains(t, m.byCategory[CategoryPublic], c.ID)
}

func TestUnregisterRemovesAllIndices(t *testing.T) {
	m, _ := testManager(t)

	sock := newFakeSocket()
	c, err := m.Register(sock, 7, RoleVisitor,
		[]string{CategoryNotifications, CategoryQueueUpdates}, Metadata{})
	require.NoError(t, err)

	m.Unregister(c.ID)

	m.mu.RLock()
	assert.NotContains(t, m.connections, c.ID)
	assert.Empty(t, m.byUser)
	assert.Empty(t, m.byCategory)
	m.mu.RUnlock()

	select {
	case <-c.Done():
	default:
		t.Fatal("done channel should be closed after unregister")
	}
	assert.True(t, sock.isClosed())
}

// A connection id must appear in the primary index iff it appears in exactly
// the secondary indices implied by its categories and user id, across any
// register/unregister sequence.
func TestIndexConsistency(t *testing.T) {
	m, _ := testManager(t)

	conns := make([]*Connection, 0, 10)
	for i := 0; i < 10; i++ {
		cats := []string{CategoryNotifications}
		if i%2 == 0 {
			cats = append(cats, CategoryQueueUpdates)
		}
		c, err := m.Register(newFakeSocket(), uint(i%3+1), RoleVisitor, cats, Metadata{})
		require.NoError(t, err)
		conns = append(conns, c)
	}

	for _, c := range conns[:5] {
		m.Unregister(c.ID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	secondary := 0
	for _, set := range m.byUser {
		for id := range set {
			assert.Contains(t, m.connections, id)
		}
		secondary += len(set)
	}
	assert.Equal(t, len(m.connections), secondary, "every live connection has a user entry")
	for cat, set := range m.byCategory {
		for id, c := range set {
			assert.Contains(t, m.connections, id)
			assert.True(t, c.HasCategory(cat))
		}
	}
	for id, c := range m.connections {
		for cat := range c.categories {
			assert.Contains(t, m.byCategory[cat], id)
		}
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	m, _ := testManager(t)

	c, err := m.Register(newFakeSocket(), 1, RoleVisitor, []string{CategoryNotifications}, Metadata{})
	require.NoError(t, err)

	m.Unregister(c.ID)
	m.Unregister(c.ID)
	m.Unregister("no-such-id")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Unregister(c.ID)
		}()
	}
	wg.Wait()

	assert.Empty(t, m.connections)
	assert.Eventually(t, func() bool { return c.State() == StateClosed },
		time.Second, 10*time.Millisecond)
}

func TestLookupReturnsSnapshots(t *testing.T) {
	m, _ := testManager(t)

	c1, err := m.Register(newFakeSocket(), 1, RoleVisitor, []string{CategoryNotifications}, Metadata{})
	require.NoError(t, err)
	_, err = m.Register(newFakeSocket(), 1, RoleVisitor, []string{CategoryQueueUpdates}, Metadata{})
	require.NoError(t, err)

	byUser := m.LookupByUser(1)
	assert.Len(t, byUser, 2)

	byCat := m.LookupByCategory(CategoryNotifications)
	require.Len(t, byCat, 1)
	assert.Equal(t, c1.ID, byCat[0].ID)

	// Mutating the registry must not touch an existing snapshot.
	m.Unregister(c1.ID)
	assert.Len(t, byUser, 2)
	assert.Empty(t, m.LookupByCategory(CategoryNotifications))
}

func TestStopTearsDownEverything(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := newManager(DefaultConfig(), "test", clock)

	a, err := m.Register(newFakeSocket(), 1, RoleVisitor, []string{CategoryNotifications}, Metadata{})
	require.NoError(t, err)
	b, err := m.Register(newFakeSocket(), 2, RoleAdmin, []string{CategoryAdminDocuments}, Metadata{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		m.Run()
		close(done)
	}()

	m.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Empty(t, m.connections)
	for _, c := range []*Connection{a, b} {
		select {
		case <-c.Done():
		default:
			t.Fatalf("connection %s not torn down", c.ID)
		}
	}
}
