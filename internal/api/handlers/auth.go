package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/archetype/archetype/internal/api/middleware"
	"github.com/archetype/archetype/internal/api/response"
	"github.com/archetype/archetype/internal/core/users"
	"github.com/archetype/archetype/internal/core/validation"
)

type AuthHandler struct {
	users     *users.Service
	validator *validation.Validator
	logger    *zap.Logger
}

func NewAuthHandler(svc *users.Service, validator *validation.Validator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: svc, validator: validator, logger: logger}
}

func (h *AuthHandler) Register(c *gin.Context) {
	body, ok := validateBody(c, h.validator, validation.SchemaRegister)
	if !ok {
		return
	}

	var req users.RegisterRequest
	if err := binding.JSON.BindBody(body, &req); err != nil {
		response.BadRequest(c, "malformed request body", err.Error())
		return
	}

	resp, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			response.Conflict(c, "a user with this email already exists")
			return
		}
		if field, ok := invalidUserField(err); ok {
			response.Unprocessable(c, "request validation failed", []response.FieldError{{Name: field, Message: err.Error()}})
			return
		}
		internalError(c, h.logger, "register user", err)
		return
	}

	response.Created(c, "/api/users/"+resp.User.ID, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	body, ok := validateBody(c, h.validator, validation.SchemaLogin)
	if !ok {
		return
	}

	var req users.LoginRequest
	if err := binding.JSON.BindBody(body, &req); err != nil {
		response.BadRequest(c, "malformed request body", err.Error())
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		internalError(c, h.logger, "login", err)
		return
	}

	response.OK(c, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) || errors.Is(err, users.ErrInvalidID) {
			response.NotFound(c, "user not found")
			return
		}
		internalError(c, h.logger, "load current user", err)
		return
	}

	response.OK(c, user)
}
