package handlers

import (
	"errors"
	"net/http"

	"casework-service/internal/models"
	"casework-service/internal/services"
	"casework-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	queueService *services.QueueService
}

func NewQueueHandler(queueService *services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

func (h *QueueHandler) CheckIn(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid input data", err.Error())
		return
	}

	position, err := h.queueService.CheckIn(c.Request.Context(), userID, req.Purpose)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyQueued) {
			response.Fail(c, http.StatusConflict, "Already checked in")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Check-in failed")
		return
	}

	c.JSON(http.StatusCreated, position)
}

func (h *QueueHandler) Leave(c *gin.Context) {
	userID := c.GetUint("user_id")

	if err := h.queueService.Leave(c.Request.Context(), userID); err != nil {
		if errors.Is(err, services.ErrNotInQueue) {
			response.Fail(c, http.StatusNotFound, "Not in queue")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Failed to leave queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left queue"})
}

func (h *QueueHandler) Position(c *gin.Context) {
	userID := c.GetUint("user_id")

	position, err := h.queueService.Position(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotInQueue) {
			response.Fail(c, http.StatusNotFound, "Not in queue")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Failed to read queue position")
		return
	}

	c.JSON(http.StatusOK, position)
}

// ServeNext is called by staff when a desk frees up.
func (h *QueueHandler) ServeNext(c *gin.Context) {
	userID, err := h.queueService.ServeNext(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNotInQueue) {
			response.Fail(c, http.StatusNotFound, "Queue is empty")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Failed to serve next visitor")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}
