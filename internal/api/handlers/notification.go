package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"casework-service/internal/models"
	"casework-service/internal/services"
	"casework-service/pkg/response"

	"github.com/gin-gonic/gin"

	"gorm.io/gorm"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Create persists a notification and pushes it to the recipient's live
// connections. Staff only.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid input data", err.Error())
		return
	}

	notification, err := h.notificationService.Create(&req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to create notification")
		return
	}

	c.JSON(http.StatusCreated, notification)
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetUint("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.notificationService.ListForUser(userID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(userID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusNotFound, "Notification not found")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Failed to mark notification read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "marked read"})
}
