package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Spins up a real upgrade endpoint, dials it with the gorilla client and
// verifies the full register → broadcast → teardown path.
func TestEndToEndOverRealSocket(t *testing.T) {
	m := NewManager(DefaultConfig(), "integration")
	t.Cleanup(m.Stop)

	registered := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c, err := m.Register(conn, 5, RoleVisitor, []string{CategoryNotifications},
			Metadata{ClientIP: r.RemoteAddr, UserAgent: r.UserAgent()})
		if err != nil {
			conn.Close()
			return
		}
		registered <- c
		// Handlers block on the cancellation signal until teardown.
		<-c.Done()
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	var c *Connection
	select {
	case c = <-registered:
	case <-time.After(time.Second):
		t.Fatal("connection never registered")
	}
	assert.Equal(t, uint(5), c.UserID)

	event := NewNotificationEvent(1, 5, "Appointment confirmed", "See you Tuesday", "normal", "/appointments/1", time.Now())
	require.NoError(t, m.BroadcastToUser(5, event))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := client.ReadMessage()
	require.NoError(t, err)

	var got NotificationEvent
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Appointment confirmed", got.Title)
	assert.Equal(t, "/appointments/1", got.ActionURL)

	// Closing the client side must drain the registry via the read pump.
	require.NoError(t, client.Close())
	require.Eventually(t, func() bool {
		return m.GetConnectionStats().TotalConnections == 0
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("handler still blocked after peer close")
	}
}

func TestRegisterRejectsClosedSocket(t *testing.T) {
	m := NewManager(DefaultConfig(), "integration")
	t.Cleanup(m.Stop)

	upgraded := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		upgraded <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	conn := <-upgraded
	require.NoError(t, conn.Close())

	_, err = m.Register(conn, 1, RoleVisitor, []string{CategoryNotifications}, Metadata{})
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Zero(t, m.GetConnectionStats().TotalConnections)
}
