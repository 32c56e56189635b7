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

// QuizHandler handles quiz generation plus the grading/history endpoints
type QuizHandler struct {
	questionService *services.QuestionService
	historyService  *services.HistoryService
	validate        *validator.Validate
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(questionService *services.QuestionService, historyService *services.HistoryService) *QuizHandler {
	return &QuizHandler{
		questionService: questionService,
		historyService:  historyService,
		validate:        validator.New(),
	}
}

// GenerateQuiz handles POST /api/quiz/generate
func (h *QuizHandler) GenerateQuiz(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	var request models.GenerateQuizRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(&request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	bundle, err := h.questionService.GenerateQuiz(userID, &request)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownSubject):
			h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("No question bank for subject %q", request.Subject))
		case errors.Is(err, services.ErrNoQuestions):
			h.respondWithError(ctx, fasthttp.StatusNotFound, "Failed to generate quiz: no questions for the requested topics")
		default:
			h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error generating quiz: %v", err))
		}
		return
	}

	h.respondWithSuccess(ctx, bundle, fmt.Sprintf("%d-question quiz ready", len(bundle.Questions)))
}

// SubmitReport handles POST /api/quiz/submit, the grading/history endpoint
// that receives the fire-and-forget attempt summary
func (h *QuizHandler) SubmitReport(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	var report models.QuizReport
	if err := json.Unmarshal(ctx.PostBody(), &report); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(report.Questions) == 0 {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "Report carries no questions")
		return
	}

	attempt, err := h.historyService.RecordAttempt(userID, &report)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error recording attempt: %v", err))
		return
	}

	h.respondWithSuccess(ctx, attempt, fmt.Sprintf("Attempt recorded: %d/%d", attempt.Score, attempt.Total))
}

// GetHistory handles GET /api/quiz/history
func (h *QuizHandler) GetHistory(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)
	subject := string(ctx.QueryArgs().Peek("subject"))

	attempts, err := h.historyService.GetHistory(userID, subject)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error reading history: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	}, fmt.Sprintf("%d attempts", len(attempts)))
}

// GetBookmarked handles GET /api/quiz/bookmarked
func (h *QuizHandler) GetBookmarked(ctx *fasthttp.RequestCtx) {
	userID := ctx.UserValue(auth.CtxUserID).(string)

	bookmarked, err := h.historyService.GetBookmarkedQuestions(userID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error reading bookmarks: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"questions": bookmarked,
		"count":     len(bookmarked),
	}, fmt.Sprintf("%d bookmarked questions", len(bookmarked)))
}

// GetSubjects handles GET /api/quiz/subjects
func (h *QuizHandler) GetSubjects(ctx *fasthttp.RequestCtx) {
	subjects, err := h.questionService.GetSubjects()
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error listing subjects: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"subjects": subjects,
		"count":    len(subjects),
	}, fmt.Sprintf("%d subjects", len(subjects)))
}

// Helper methods for HTTP responses
func (h *QuizHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
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

func (h *QuizHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	h.respondWithJSON(ctx, statusCode, response)
}

func (h *QuizHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	h.respondWithJSON(ctx, fasthttp.StatusOK, response)
}
