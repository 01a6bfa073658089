package handlers

import (
	"errors"
	"net/http"

	"casework-service/internal/models"
	"casework-service/internal/services"
	"casework-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid input data", err.Error())
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrUserAlreadyExists) {
			response.Fail(c, http.StatusConflict, "Email already registered")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Register failed", "An unexpected error occurred.")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid input data", err.Error())
		return
	}

	loginResponse, err := h.userService.Login(&req)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	c.JSON(http.StatusOK, loginResponse)
}
