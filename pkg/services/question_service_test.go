package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/redis"
)

type fakeBankStore struct {
	banks map[string][]models.Question
}

func newFakeBankStore() *fakeBankStore {
	return &fakeBankStore{banks: make(map[string][]models.Question)}
}

func (f *fakeBankStore) SaveBank(bank *models.QuestionBank) error {
	f.banks[bank.Subject] = bank.Questions
	return nil
}

func (f *fakeBankStore) GetBank(subject string) ([]models.Question, error) {
	questions, ok := f.banks[subject]
	if !ok {
		return nil, fmt.Errorf("bank %s: %w", subject, redis.ErrNotFound)
	}
	return questions, nil
}

func (f *fakeBankStore) GetSubjects() ([]string, error) {
	subjects := make([]string, 0, len(f.banks))
	for s := range f.banks {
		subjects = append(subjects, s)
	}
	return subjects, nil
}

func (f *fakeBankStore) BankCount() (int, error) {
	return len(f.banks), nil
}

func seedBank(store *fakeBankStore) {
	questions := make([]models.Question, 0, 15)
	for i := 0; i < 12; i++ {
		questions = append(questions, models.Question{
			Text:               fmt.Sprintf("arrays-%d", i),
			Options:            []string{"a", "b", "c"},
			CorrectOptionIndex: i % 3,
			Topic:              "Arrays",
		})
	}
	questions = append(questions,
		models.Question{Text: "trees-0", Options: []string{"a", "b"}, CorrectOptionIndex: 0, Topic: "Trees"},
		models.Question{Text: "trees-1", Options: []string{"a", "b"}, CorrectOptionIndex: 1, Topic: "Trees"},
	)
	store.SaveBank(&models.QuestionBank{Subject: "java", Questions: questions})
}

func TestGenerateQuizFiltersByTopic(t *testing.T) {
	banks := newFakeBankStore()
	seedBank(banks)
	pending := newFakePendingStore()
	s := NewQuestionService(banks, pending)

	bundle, err := s.GenerateQuiz("u1", &models.GenerateQuizRequest{
		Subject: "Java",
		Topics:  []string{"trees"},
	})
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if len(bundle.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(bundle.Questions))
	}
	for _, q := range bundle.Questions {
		if q.Topic != "Trees" {
			t.Errorf("question %q has topic %q, want Trees", q.Text, q.Topic)
		}
	}
	if bundle.Subject != "java" || bundle.Source != "Theory" {
		t.Errorf("bundle header = %q/%q, want java/Theory", bundle.Subject, bundle.Source)
	}

	// The bundle landed in the mailbox
	stored, err := pending.GetPendingQuiz("u1")
	if err != nil {
		t.Fatalf("mailbox empty after generation: %v", err)
	}
	if len(stored.Questions) != 2 {
		t.Errorf("mailbox carries %d questions, want 2", len(stored.Questions))
	}
}

func TestGenerateQuizCapsSize(t *testing.T) {
	banks := newFakeBankStore()
	seedBank(banks)
	s := NewQuestionService(banks, newFakePendingStore())

	bundle, err := s.GenerateQuiz("u1", &models.GenerateQuizRequest{
		Subject: "java",
		Topics:  []string{"Arrays"},
	})
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if len(bundle.Questions) != DefaultQuizSize {
		t.Errorf("got %d questions, want the %d cap", len(bundle.Questions), DefaultQuizSize)
	}
}

func TestGenerateQuizErrors(t *testing.T) {
	banks := newFakeBankStore()
	seedBank(banks)
	s := NewQuestionService(banks, newFakePendingStore())

	_, err := s.GenerateQuiz("u1", &models.GenerateQuizRequest{Subject: "rust", Topics: []string{"Arrays"}})
	if !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("unknown subject: got %v, want ErrUnknownSubject", err)
	}

	_, err = s.GenerateQuiz("u1", &models.GenerateQuizRequest{Subject: "java", Topics: []string{"Graphs"}})
	if !errors.Is(err, ErrNoQuestions) {
		t.Errorf("unknown topic: got %v, want ErrNoQuestions", err)
	}
}

func TestLoadBanksFromFileSkipsMalformedBanks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.json")
	seed := `{
		"subjects": [
			{
				"subject": "Java",
				"questions": [
					{"questionText": "ok", "options": ["a", "b"], "correctAnswerIndex": 1, "topic": "Arrays"}
				]
			},
			{
				"subject": "broken",
				"questions": [
					{"questionText": "bad", "options": ["a", "b"], "correctAnswerIndex": 5, "topic": "Arrays"}
				]
			}
		]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	banks := newFakeBankStore()
	s := NewQuestionService(banks, newFakePendingStore())
	if err := s.LoadBanksFromFile(path); err != nil {
		t.Fatalf("LoadBanksFromFile failed: %v", err)
	}

	if _, err := banks.GetBank("java"); err != nil {
		t.Errorf("valid bank missing: %v", err)
	}
	if _, err := banks.GetBank("broken"); err == nil {
		t.Error("malformed bank was stored")
	}
}
