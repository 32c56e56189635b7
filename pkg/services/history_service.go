package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backsoul/studytrack/pkg/models"
)

// AttemptStore persists graded attempts
type AttemptStore interface {
	SaveAttempt(attempt *models.AttemptRecord) error
	GetAttempt(id string) (*models.AttemptRecord, error)
	GetUserAttemptIDs(userID string) ([]string, error)
}

// HistoryService is the grading/history side of the quiz flow: it receives
// submitted reports, grades them with the same scoring rule as the session
// controller, and serves them back per user.
type HistoryService struct {
	store AttemptStore
}

// NewHistoryService creates a new history service
func NewHistoryService(store AttemptStore) *HistoryService {
	return &HistoryService{
		store: store,
	}
}

// RecordAttempt grades a submitted report and stores it for the user
func (s *HistoryService) RecordAttempt(userID string, report *models.QuizReport) (*models.AttemptRecord, error) {
	score := 0
	for _, q := range report.Questions {
		if q.SelectedAnswerIndex != nil && *q.SelectedAnswerIndex == q.CorrectAnswerIndex {
			score++
		}
	}

	attempt := &models.AttemptRecord{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Subject:             report.Subject,
		Source:              report.Source,
		Topics:              report.Topics,
		Score:               score,
		Total:               len(report.Questions),
		Questions:           report.Questions,
		BookmarkedQuestions: report.BookmarkedQuestions,
		SubmittedAt:         time.Now(),
	}

	if err := s.store.SaveAttempt(attempt); err != nil {
		return nil, fmt.Errorf("error saving attempt: %v", err)
	}

	log.Printf("✅ Attempt recorded for %s: %d/%d (%s)", userID, score, attempt.Total, attempt.Subject)
	return attempt, nil
}

// GetHistory returns the user's attempts, newest first. An empty subject
// returns everything; otherwise attempts are filtered by subject.
func (s *HistoryService) GetHistory(userID, subject string) ([]models.AttemptRecord, error) {
	ids, err := s.store.GetUserAttemptIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("error reading attempt ids: %v", err)
	}

	subject = strings.ToLower(subject)

	attempts := make([]models.AttemptRecord, 0, len(ids))
	for _, id := range ids {
		attempt, err := s.store.GetAttempt(id)
		if err != nil {
			log.Printf("⚠️ Error reading attempt %s: %v", id, err)
			continue
		}
		if subject != "" && strings.ToLower(attempt.Subject) != subject {
			continue
		}
		attempts = append(attempts, *attempt)
	}

	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].SubmittedAt.After(attempts[j].SubmittedAt)
	})

	return attempts, nil
}

// GetBookmarkedQuestions collects the bookmarked questions across the
// user's attempts, most recent attempts first
func (s *HistoryService) GetBookmarkedQuestions(userID string) ([]models.BookmarkedQuestion, error) {
	attempts, err := s.GetHistory(userID, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var bookmarked []models.BookmarkedQuestion
	for _, attempt := range attempts {
		for _, q := range attempt.BookmarkedQuestions {
			if seen[q.QuestionText] {
				continue
			}
			seen[q.QuestionText] = true
			bookmarked = append(bookmarked, q)
		}
	}

	return bookmarked, nil
}
