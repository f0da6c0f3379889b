package handler

import (
	"log/slog"
	"net/http"

	. "taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/adapter/http/middleware"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/port"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc port.UserService
}

func NewUserHandler(svc port.UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// ValidateToken answers who the presented bearer token belongs to.
func (h *UserHandler) ValidateToken(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)

	if !ok {
		SendUnauthorizedError(c, "Could not validate credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)

	if !ok {
		SendUnauthorizedError(c, "Could not validate credentials")
		return
	}

	SendSuccess(c, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.svc.ListUsers(ctx)

	if err != nil {
		slog.Error("User#ListUsers", "error", err)
		SendInternalError(c, "Could not list users")
		return
	}

	data := make([]response.UserResponse, 0, len(users))

	for _, user := range users {
		data = append(data, toUserResponse(user))
	}

	SendSuccess(c, http.StatusOK, data)
}

func toUserResponse(user domain.User) response.UserResponse {
	return response.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
