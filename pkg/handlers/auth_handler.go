package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"

	"github.com/backsoul/studytrack/pkg/auth"
	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/services"
)

// AuthHandler handles account registration, login and profile requests
type AuthHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var request models.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(&request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	response, err := h.userService.Register(&request)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			h.respondWithError(ctx, fasthttp.StatusConflict, "Email already registered")
			return
		}
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error creating account: %v", err))
		return
	}

	h.respondWithSuccess(ctx, response, "Account created")
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var request models.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(&request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	response, err := h.userService.Login(&request)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.respondWithError(ctx, fasthttp.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error logging in: %v", err))
		return
	}

	h.respondWithSuccess(ctx, response, "Logged in")
}

// GetProfile handles GET /api/auth/profile
func (h *AuthHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, "Account not found")
		return
	}

	h.respondWithSuccess(ctx, user, "Profile")
}

// Helper methods for HTTP responses
func (h *AuthHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(statusCode)

	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "Error serializing response"}`)
		return
	}

	ctx.SetBody(jsonData)
}

func (h *AuthHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	h.respondWithJSON(ctx, statusCode, response)
}

func (h *AuthHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	h.respondWithJSON(ctx, fasthttp.StatusOK, response)
}
