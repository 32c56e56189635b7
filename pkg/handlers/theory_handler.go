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

// TheoryHandler handles the learning-path topic and progress endpoints
type TheoryHandler struct {
	progressService *services.ProgressService
	validate        *validator.Validate
}

// NewTheoryHandler creates a new theory handler
func NewTheoryHandler(progressService *services.ProgressService) *TheoryHandler {
	return &TheoryHandler{
		progressService: progressService,
		validate:        validator.New(),
	}
}

// GetTopics handles GET /api/theory/topics?subject=...
func (h *TheoryHandler) GetTopics(ctx *fasthttp.RequestCtx) {
	subject := string(ctx.QueryArgs().Peek("subject"))
	if subject == "" {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Query parameter 'subject' is required")
		return
	}

	topics, err := h.progressService.GetTopics(subject)
	if err != nil {
		if errors.Is(err, services.ErrUnknownSubject) {
			h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("No topics for subject %q", subject))
			return
		}
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error reading topics: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"topics": topics,
		"count":  len(topics),
	}, fmt.Sprintf("%d topics", len(topics)))
}

// GetProgress handles GET /api/theory/progress
func (h *TheoryHandler) GetProgress(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	progress, err := h.progressService.GetProgress(userID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error reading progress: %v", err))
		return
	}

	h.respondWithSuccess(ctx, progress, "Progress")
}

// UpdateProgress handles POST /api/theory/progress
func (h *TheoryHandler) UpdateProgress(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	var request models.UpdateProgressRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(&request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	progress, err := h.progressService.UpdateProgress(userID, &request)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownSubject), errors.Is(err, services.ErrUnknownTopic):
			h.respondWithError(ctx, fasthttp.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrInvalidProgressField), errors.Is(err, services.ErrInvalidProgressValue):
			h.respondWithError(ctx, fasthttp.StatusBadRequest, err.Error())
		default:
			h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error updating progress: %v", err))
		}
		return
	}

	h.respondWithSuccess(ctx, progress, "Progress updated")
}

// Helper methods for HTTP responses
func (h *TheoryHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
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

func (h *TheoryHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	h.respondWithJSON(ctx, statusCode, response)
}

func (h *TheoryHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	h.respondWithJSON(ctx, fasthttp.StatusOK, response)
}
