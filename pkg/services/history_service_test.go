package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/redis"
)

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]*models.AttemptRecord
	byUser   map[string][]string
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{
		attempts: make(map[string]*models.AttemptRecord),
		byUser:   make(map[string][]string),
	}
}

func (f *fakeAttemptStore) SaveAttempt(attempt *models.AttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[attempt.ID] = attempt
	f.byUser[attempt.UserID] = append(f.byUser[attempt.UserID], attempt.ID)
	return nil
}

func (f *fakeAttemptStore) GetAttempt(id string) (*models.AttemptRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt, ok := f.attempts[id]
	if !ok {
		return nil, fmt.Errorf("attempt %s: %w", id, redis.ErrNotFound)
	}
	return attempt, nil
}

func (f *fakeAttemptStore) GetUserAttemptIDs(userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUser[userID], nil
}

func intPtr(v int) *int { return &v }

func sampleReport(subject string) *models.QuizReport {
	return &models.QuizReport{
		Subject: subject,
		Source:  "Theory",
		Topics:  []string{"Arrays"},
		Questions: []models.AnsweredQuestion{
			{QuestionText: "q1", Options: []string{"a", "b"}, CorrectAnswerIndex: 1, SelectedAnswerIndex: intPtr(1), TopicTag: "Arrays", Difficulty: "medium"},
			{QuestionText: "q2", Options: []string{"a", "b"}, CorrectAnswerIndex: 0, SelectedAnswerIndex: intPtr(1), TopicTag: "Arrays", Difficulty: "medium"},
			{QuestionText: "q3", Options: []string{"a", "b"}, CorrectAnswerIndex: 0, SelectedAnswerIndex: nil, TopicTag: "Arrays", Difficulty: "easy"},
		},
		BookmarkedQuestions: []models.BookmarkedQuestion{
			{QuestionText: "q2", TopicTag: "Arrays", Difficulty: "medium"},
		},
	}
}

func TestRecordAttemptGradesReport(t *testing.T) {
	s := NewHistoryService(newFakeAttemptStore())

	attempt, err := s.RecordAttempt("u1", sampleReport("java"))
	if err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}
	if attempt.Score != 1 || attempt.Total != 3 {
		t.Errorf("graded %d/%d, want 1/3", attempt.Score, attempt.Total)
	}
	if attempt.ID == "" {
		t.Error("attempt has no id")
	}
}

func TestGetHistoryFiltersBySubject(t *testing.T) {
	s := NewHistoryService(newFakeAttemptStore())
	s.RecordAttempt("u1", sampleReport("java"))
	s.RecordAttempt("u1", sampleReport("python"))
	s.RecordAttempt("u2", sampleReport("java"))

	all, err := s.GetHistory("u1", "")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d attempts, want 2", len(all))
	}

	java, err := s.GetHistory("u1", "Java")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(java) != 1 || java[0].Subject != "java" {
		t.Errorf("subject filter returned %+v", java)
	}
}

func TestGetBookmarkedQuestionsDeduplicates(t *testing.T) {
	s := NewHistoryService(newFakeAttemptStore())
	s.RecordAttempt("u1", sampleReport("java"))
	s.RecordAttempt("u1", sampleReport("java"))

	bookmarked, err := s.GetBookmarkedQuestions("u1")
	if err != nil {
		t.Fatalf("GetBookmarkedQuestions failed: %v", err)
	}
	if len(bookmarked) != 1 {
		t.Errorf("got %d bookmarked questions, want 1 after dedupe", len(bookmarked))
	}
}
