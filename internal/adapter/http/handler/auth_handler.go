package handler

import (
	"errors"
	"log/slog"
	"net/http"

	. "taskmanager/internal/adapter/http/helper"
	. "taskmanager/internal/adapter/http/validation"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/request"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/util"
	"taskmanager/pkg/telemetry"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc     port.AuthService
	metrics *telemetry.AppMetrics
}

func NewAuthHandler(svc port.AuthService, metrics *telemetry.AppMetrics) *AuthHandler {
	return &AuthHandler{
		svc:     svc,
		metrics: metrics,
	}
}

func (a *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.BindParams[request.RegisterRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	_, token, err := a.svc.Registration(ctx, &params)

	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			SendConflictError(c, "user", "Email or username already registered")
			return
		}

		slog.Error("Auth#Register", "error", err)
		SendInternalError(c, "Could not register user")
		return
	}

	if a.metrics != nil {
		a.metrics.RecordUserOperation(ctx, "register")
	}

	SendSuccess(c, http.StatusCreated, response.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (a *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.BindParams[request.LoginRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	_, token, err := a.svc.Authenticate(ctx, &params)

	if err != nil {
		// Unknown email and wrong password get the same answer.
		SendUnauthorizedError(c, "Incorrect email or password")
		return
	}

	if a.metrics != nil {
		a.metrics.RecordUserOperation(ctx, "login")
	}

	SendSuccess(c, http.StatusOK, response.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
