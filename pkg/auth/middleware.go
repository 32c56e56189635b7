package auth

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/backsoul/studytrack/pkg/models"
)

// Context keys set by Protected for downstream handlers
const (
	CtxUserID   = "userID"
	CtxUserName = "userName"
	CtxToken    = "bearerToken"
)

// Protected wraps a handler and requires a valid bearer token.
// On success the user id, name and raw token are attached to the request context.
func (m *Manager) Protected(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		header := string(ctx.Request.Header.Peek("Authorization"))
		claims, err := m.Verify(header)
		if err != nil {
			respondUnauthorized(ctx, "Invalid or expired token")
			return
		}

		ctx.SetUserValue(CtxUserID, claims.Subject)
		ctx.SetUserValue(CtxUserName, claims.Name)
		ctx.SetUserValue(CtxToken, strings.TrimPrefix(header, "Bearer "))
		next(ctx)
	}
}

func respondUnauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)

	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	data, err := json.Marshal(response)
	if err != nil {
		ctx.SetBodyString(`{"success": false, "error": "Unauthorized"}`)
		return
	}
	ctx.SetBody(data)
}
