package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionStats(t *testing.T) {
	m, _ := testManager(t)

	first, err := m.Register(newFakeSocket(), 1, RoleVisitor,
		[]string{CategoryNotifications, CategoryQueueUpdates}, Metadata{})
	require.NoError(t, err)
	_, err = m.Register(newFakeSocket(), 2, RoleVolunteer, []string{CategoryVolunteer}, Metadata{})
	require.NoError(t, err)
	_, err = m.Register(newFakeSocket(), 2, RoleVolunteer, []string{CategoryNotifications}, Metadata{})
	require.NoError(t, err)

	stats := m.GetConnectionStats()
	assert.Equal(t, 3, stats.TotalConnections)
	assert.Equal(t, 2, stats.UniqueUsers)
	assert.Equal(t, 2, stats.ByCategory[CategoryNotifications])
	assert.Equal(t, 1, stats.ByCategory[CategoryQueueUpdates])
	assert.Equal(t, 1, stats.ByCategory[CategoryVolunteer])
	assert.Equal(t, 1, stats.ByRole[RoleVisitor])
	assert.Equal(t, 2, stats.ByRole[RoleVolunteer])

	m.Unregister(first.ID)

	stats = m.GetConnectionStats()
	assert.Equal(t, 2, stats.TotalConnections)
	assert.Zero(t, stats.ByCategory[CategoryQueueUpdates])
	assert.Equal(t, 1, stats.ByCategory[CategoryNotifications])
}

func TestServerInfo(t *testing.T) {
	m, clock := testManager(t)

	clock.Advance(90 * time.Minute)

	info := m.GetServerInfo()
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, 90*time.Minute, info.Uptime)
	assert.Equal(t, clock.Now().Add(-90*time.Minute), info.StartedAt)
}
