package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Upgrader performs the HTTP→WebSocket handshake for every upgrade endpoint.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The service sits behind the charity's reverse proxy which pins
		// the origin; allow all here.
		return true
	},
}

// Categories are the event streams a connection may subscribe to. The set is
// fixed at registration; there is no subscribe/unsubscribe after connect.
const (
	CategoryNotifications  = "notifications"
	CategoryQueueUpdates   = "queue_updates"
	CategoryAdminDocuments = "admin_documents"
	CategoryVolunteer      = "volunteer"
	CategoryPublic         = "public"
)

// Roles classify the caller at registration time.
const (
	RoleVisitor   = "visitor"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
	RoleGuest     = "guest"
)
