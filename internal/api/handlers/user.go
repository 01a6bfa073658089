package handlers

import (
	"errors"
	"net/http"

	"casework-service/internal/services"
	"casework-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService  *services.UserService
	redisService *services.RedisService
}

func NewUserHandler(userService *services.UserService, redisService *services.RedisService) *UserHandler {
	return &UserHandler{userService: userService, redisService: redisService}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// OnlineCount reports how many registered users hold at least one live
// connection. Staff use it to gauge load before sending announcements.
func (h *UserHandler) OnlineCount(c *gin.Context) {
	count, err := h.redisService.OnlineUserCount(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to count online users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": count})
}
