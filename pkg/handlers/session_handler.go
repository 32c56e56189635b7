package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"

	"github.com/backsoul/studytrack/pkg/auth"
	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/services"
	websocketHub "github.com/backsoul/studytrack/pkg/websocket"
)

// SessionHandler handles the quiz session endpoints and the live event socket
type SessionHandler struct {
	sessionService *services.SessionService
	hub            *websocketHub.Hub
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *services.SessionService, hub *websocketHub.Hub) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		hub:            hub,
	}
}

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true // allow any origin in development
	},
}

// LoadSession handles POST /api/quiz/load
func (h *SessionHandler) LoadSession(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)
	token := ctx.UserValue(auth.CtxToken).(string)

	view, err := h.sessionService.Load(userID, token)
	if err != nil {
		if errors.Is(err, services.ErrNoPendingQuiz) {
			h.respondWithError(ctx, fasthttp.StatusNotFound, "No quiz found. Redirecting...")
			return
		}
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error loading quiz: %v", err))
		return
	}

	h.respondWithSuccess(ctx, view, "Quiz session started")
}

// GetSession handles GET /api/quiz/session
func (h *SessionHandler) GetSession(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	view, err := h.sessionService.View(userID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, "No active session")
		return
	}

	h.respondWithSuccess(ctx, view, "Session")
}

// SelectAnswer handles POST /api/quiz/answer
func (h *SessionHandler) SelectAnswer(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	var request models.SelectAnswerRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.sessionService.SelectAnswer(userID, request.Position, request.OptionIndex); err != nil {
		switch {
		case errors.Is(err, services.ErrNoActiveSession):
			h.respondWithError(ctx, fasthttp.StatusNotFound, "No active session")
		case errors.Is(err, services.ErrInvalidPosition), errors.Is(err, services.ErrInvalidOption):
			h.respondWithError(ctx, fasthttp.StatusBadRequest, err.Error())
		default:
			h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error recording answer: %v", err))
		}
		return
	}

	h.respondWithSuccess(ctx, nil, "Answer recorded")
}

// ToggleBookmark handles POST /api/quiz/bookmark
func (h *SessionHandler) ToggleBookmark(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	var request models.ToggleBookmarkRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.sessionService.ToggleBookmark(userID, request.Position); err != nil {
		switch {
		case errors.Is(err, services.ErrNoActiveSession):
			h.respondWithError(ctx, fasthttp.StatusNotFound, "No active session")
		case errors.Is(err, services.ErrInvalidPosition):
			h.respondWithError(ctx, fasthttp.StatusBadRequest, err.Error())
		default:
			h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error toggling bookmark: %v", err))
		}
		return
	}

	h.respondWithSuccess(ctx, nil, "Bookmark toggled")
}

// SubmitSession handles POST /api/quiz/submit-session
func (h *SessionHandler) SubmitSession(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	result, err := h.sessionService.Submit(userID)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveSession) {
			h.respondWithError(ctx, fasthttp.StatusNotFound, "No active session")
			return
		}
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error submitting quiz: %v", err))
		return
	}

	h.respondWithSuccess(ctx, result, fmt.Sprintf("Quiz submitted! Score: %d/%d", result.Score, result.Total))
}

// AbandonSession handles DELETE /api/quiz/session
func (h *SessionHandler) AbandonSession(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	if err := h.sessionService.Abandon(userID); err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, "No active session")
		return
	}

	h.respondWithSuccess(ctx, nil, "Session abandoned")
}

// HandleWebSocket handles GET /ws
func (h *SessionHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		defer ws.Close()

		h.hub.Register(ws)
		defer h.hub.Unregister(ws)

		// Keep reading until the client goes away
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
	})

	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		ctx.Error("Error upgrading to WebSocket", fasthttp.StatusInternalServerError)
	}
}

// Helper methods for HTTP responses
func (h *SessionHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
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

func (h *SessionHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	h.respondWithJSON(ctx, statusCode, response)
}

func (h *SessionHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	h.respondWithJSON(ctx, fasthttp.StatusOK, response)
}
