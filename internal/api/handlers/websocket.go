package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"casework-service/internal/services"
	"casework-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	manager             *websocket.Manager
	redisService        *services.RedisService
	notificationService *services.NotificationService
}

func NewWSHandler(manager *websocket.Manager, redisService *services.RedisService, notificationService *services.NotificationService) *WSHandler {
	return &WSHandler{
		manager:             manager,
		redisService:        redisService,
		notificationService: notificationService,
	}
}

// Notifications streams personal notifications to an authenticated user.
func (h *WSHandler) Notifications(c *gin.Context) {
	h.serve(c, c.GetUint("user_id"), c.GetString("role"), []string{websocket.CategoryNotifications})
}

// Queue streams waiting-room position updates. Subscribers also get their
// personal notifications so a "you're being served" message lands on the
// same socket.
func (h *WSHandler) Queue(c *gin.Context) {
	h.serve(c, c.GetUint("user_id"), c.GetString("role"),
		[]string{websocket.CategoryQueueUpdates, websocket.CategoryNotifications})
}

// Documents streams verification activity to reviewing staff.
func (h *WSHandler) Documents(c *gin.Context) {
	h.serve(c, c.GetUint("user_id"), c.GetString("role"), []string{websocket.CategoryAdminDocuments})
}

// Volunteer streams shift and coordination events to volunteers.
func (h *WSHandler) Volunteer(c *gin.Context) {
	h.serve(c, c.GetUint("user_id"), c.GetString("role"),
		[]string{websocket.CategoryVolunteer, websocket.CategoryNotifications})
}

// Public serves unauthenticated kiosk screens in the waiting area. The
// connection carries no user identity.
func (h *WSHandler) Public(c *gin.Context) {
	h.serve(c, 0, websocket.RoleGuest, []string{websocket.CategoryPublic, websocket.CategoryQueueUpdates})
}

func (h *WSHandler) serve(c *gin.Context, userID uint, role string, categories []string) {
	sock, err := websocket.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "userID", userID, "error", err)
		return
	}

	meta := websocket.Metadata{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Purpose:   c.Query("purpose"),
	}

	conn, err := h.manager.Register(sock, userID, role, categories, meta)
	if err != nil {
		slog.Warn("WebSocket registration failed", "userID", userID, "error", err)
		sock.Close()
		return
	}

	ctx := c.Request.Context()
	if userID != 0 {
		if err := h.redisService.SetUserOnline(ctx, userID); err != nil {
			slog.Warn("Failed to mark user online", "userID", userID, "error", err)
		}
		if conn.HasCategory(websocket.CategoryNotifications) {
			h.notificationService.SendBacklog(userID)
		}
	}

	// Hold the handler open until the connection manager releases the
	// connection; gin would otherwise close the hijacked socket's context.
	<-conn.Done()

	// The request context is gone once the socket drops, so the offline
	// write gets its own context.
	if userID != 0 && len(h.manager.LookupByUser(userID)) == 0 {
		if err := h.redisService.SetUserOffline(context.Background(), userID); err != nil {
			slog.Warn("Failed to mark user offline", "userID", userID, "error", err)
		}
	}
}

// Stats exposes the live connection counters for staff dashboards.
func (h *WSHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.GetConnectionStats())
}
