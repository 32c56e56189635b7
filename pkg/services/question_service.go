package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/redis"
)

// Errors surfaced by quiz generation
var (
	ErrUnknownSubject = errors.New("unknown subject")
	ErrNoQuestions    = errors.New("no questions available for the requested topics")
)

// DefaultQuizSize caps how many questions a generated quiz carries
const DefaultQuizSize = 10

// QuestionBankStore persists question banks per subject
type QuestionBankStore interface {
	SaveBank(bank *models.QuestionBank) error
	GetBank(subject string) ([]models.Question, error)
	GetSubjects() ([]string, error)
	BankCount() (int, error)
}

// QuestionService owns the question banks and builds pending quizzes from them
type QuestionService struct {
	banks   QuestionBankStore
	pending PendingQuizStore
}

// NewQuestionService creates a new question service
func NewQuestionService(banks QuestionBankStore, pending PendingQuizStore) *QuestionService {
	return &QuestionService{
		banks:   banks,
		pending: pending,
	}
}

// LoadBanksFromFile loads the subject question banks from a seed JSON file
func (s *QuestionService) LoadBanksFromFile(filePath string) error {
	log.Printf("📂 Loading question banks from: %s", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading banks file: %v", err)
	}

	var file models.BanksFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error parsing banks file: %v", err)
	}

	loaded := 0
	for i := range file.Subjects {
		bank := &file.Subjects[i]
		bank.Subject = strings.ToLower(bank.Subject)
		if err := validateBank(bank); err != nil {
			log.Printf("⚠️ Skipping bank %q: %v", bank.Subject, err)
			continue
		}
		if err := s.banks.SaveBank(bank); err != nil {
			log.Printf("❌ Error saving bank %q: %v", bank.Subject, err)
			continue
		}
		loaded++
	}

	log.Printf("✅ %d question banks loaded", loaded)
	return nil
}

// validateBank rejects banks with malformed questions so the invariant
// "correctAnswerIndex is a valid index into options" holds at the source
func validateBank(bank *models.QuestionBank) error {
	if bank.Subject == "" {
		return errors.New("missing subject")
	}
	for i, q := range bank.Questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d has fewer than 2 options", i)
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return fmt.Errorf("question %d has correct index %d out of range", i, q.CorrectOptionIndex)
		}
	}
	return nil
}

// GetSubjects returns the subjects with a bank loaded
func (s *QuestionService) GetSubjects() ([]string, error) {
	subjects, err := s.banks.GetSubjects()
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %v", err)
	}
	return subjects, nil
}

// BankCount returns how many banks are loaded
func (s *QuestionService) BankCount() (int, error) {
	return s.banks.BankCount()
}

// GenerateQuiz picks questions for the requested subject/topics and writes
// the resulting bundle into the user's pending-quiz mailbox. The bundle is
// also returned so the caller can show it immediately.
func (s *QuestionService) GenerateQuiz(userID string, req *models.GenerateQuizRequest) (*models.QuizBundle, error) {
	subject := strings.ToLower(req.Subject)

	bank, err := s.banks.GetBank(subject)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("error reading bank %q: %v", subject, err)
	}

	wanted := make(map[string]bool, len(req.Topics))
	for _, t := range req.Topics {
		wanted[strings.ToLower(t)] = true
	}

	var picked []models.Question
	for _, q := range bank {
		if wanted[strings.ToLower(q.Topic)] {
			picked = append(picked, q)
		}
	}
	if len(picked) == 0 {
		return nil, ErrNoQuestions
	}

	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	count := req.Count
	if count <= 0 || count > DefaultQuizSize {
		count = DefaultQuizSize
	}
	if len(picked) > count {
		picked = picked[:count]
	}

	source := req.Source
	if source == "" {
		source = "Theory"
	}

	bundle := &models.QuizBundle{
		Subject:       subject,
		Source:        source,
		TopicsCovered: req.Topics,
		Questions:     picked,
	}

	if err := s.pending.PutPendingQuiz(userID, bundle); err != nil {
		return nil, fmt.Errorf("error storing pending quiz: %v", err)
	}

	log.Printf("✅ Generated %d-question quiz for %s (%s)", len(picked), userID, subject)
	return bundle, nil
}
