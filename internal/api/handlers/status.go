package handlers

import (
	"net/http"
	"time"

	"casework-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	manager *websocket.Manager
}

func NewStatusHandler(manager *websocket.Manager) *StatusHandler {
	return &StatusHandler{manager: manager}
}

// Status summarises the live connection registry for operators.
func (h *StatusHandler) Status(c *gin.Context) {
	stats := h.manager.GetConnectionStats()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"connections": stats,
		"endpoints": []string{
			"/ws/notifications",
			"/ws/queue",
			"/ws/documents",
			"/ws/volunteer",
			"/ws/public",
		},
	})
}

// Healthz is the load balancer probe.
func (h *StatusHandler) Healthz(c *gin.Context) {
	info := h.manager.GetServerInfo()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"server": info,
	})
}
