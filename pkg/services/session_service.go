package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/redis"
)

// Errors surfaced by the session controller
var (
	ErrNoPendingQuiz   = errors.New("no pending quiz")
	ErrNoActiveSession = errors.New("no active session")
	ErrInvalidPosition = errors.New("question position out of range")
	ErrInvalidOption   = errors.New("option index out of range")
)

// PendingQuizStore is the single-slot mailbox holding the question set
// handed from the theory screen to the quiz runner.
type PendingQuizStore interface {
	GetPendingQuiz(userID string) (*models.QuizBundle, error)
	PutPendingQuiz(userID string, bundle *models.QuizBundle) error
	ClearPendingQuiz(userID string) error
}

// ReportSender transmits a submitted attempt to the grading/history endpoint
type ReportSender interface {
	Send(token string, report *models.QuizReport) error
}

// SessionNotifier receives session events for connected clients
type SessionNotifier interface {
	SessionEvent(userID, event string, data interface{})
}

// quizSession is one in-memory quiz attempt
type quizSession struct {
	bundle     *models.QuizBundle
	selections map[int]int
	bookmarks  map[int]bool
	remaining  int
	submitted  bool
	score      int
	token      string // bearer credential captured at load, used for the async report
	done       chan struct{}
}

// SessionService mediates all reads and writes to active quiz sessions.
// One session is active per user; a session moves Active -> Submitted
// exactly once, either on explicit submit or on countdown expiry.
type SessionService struct {
	store    PendingQuizStore
	sender   ReportSender
	notifier SessionNotifier
	budget   int           // countdown budget in seconds
	tick     time.Duration // countdown tick interval, shortened in tests

	mu       sync.Mutex
	sessions map[string]*quizSession
}

// NewSessionService creates the session controller
func NewSessionService(store PendingQuizStore, sender ReportSender, notifier SessionNotifier, budgetSeconds int) *SessionService {
	return &SessionService{
		store:    store,
		sender:   sender,
		notifier: notifier,
		budget:   budgetSeconds,
		tick:     time.Second,
		sessions: make(map[string]*quizSession),
	}
}

// Score counts the positions whose selection matches the correct option.
// Unanswered positions count as incorrect.
func Score(questions []models.Question, selections map[int]int) int {
	score := 0
	for i, q := range questions {
		if sel, ok := selections[i]; ok && sel == q.CorrectOptionIndex {
			score++
		}
	}
	return score
}

// Load reads the pending question set from the mailbox and starts a fresh
// session with a full countdown. Any previous session for the user is
// discarded and its countdown released.
func (s *SessionService) Load(userID, token string) (*models.SessionView, error) {
	bundle, err := s.store.GetPendingQuiz(userID)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrNoPendingQuiz
		}
		return nil, fmt.Errorf("error loading pending quiz: %v", err)
	}

	sess := &quizSession{
		bundle:     bundle,
		selections: make(map[int]int),
		bookmarks:  make(map[int]bool),
		remaining:  s.budget,
		token:      token,
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	if prev, ok := s.sessions[userID]; ok && !prev.submitted {
		close(prev.done)
	}
	s.sessions[userID] = sess
	s.mu.Unlock()

	go s.runCountdown(userID, sess)

	log.Printf("✅ Quiz session started for %s (%s, %d questions)", userID, bundle.Subject, len(bundle.Questions))
	return s.snapshot(sess), nil
}

// SelectAnswer records or overwrites the choice for one question.
// After submission the call is a silent no-op.
func (s *SessionService) SelectAnswer(userID string, position, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return ErrNoActiveSession
	}
	if sess.submitted {
		return nil
	}
	if position < 0 || position >= len(sess.bundle.Questions) {
		return ErrInvalidPosition
	}
	if optionIndex < 0 || optionIndex >= len(sess.bundle.Questions[position].Options) {
		return ErrInvalidOption
	}

	sess.selections[position] = optionIndex
	return nil
}

// ToggleBookmark flips the review flag for one question.
// Permitted before and after submission.
func (s *SessionService) ToggleBookmark(userID string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return ErrNoActiveSession
	}
	if position < 0 || position >= len(sess.bundle.Questions) {
		return ErrInvalidPosition
	}

	if sess.bookmarks[position] {
		delete(sess.bookmarks, position)
	} else {
		sess.bookmarks[position] = true
	}
	return nil
}

// Submit finalizes the session: freezes selections, computes the score and
// stops the countdown. The attempt summary is transmitted asynchronously;
// a send failure never rolls back the local outcome. Idempotent.
func (s *SessionService) Submit(userID string) (*models.SubmitResult, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	return s.finalize(userID, sess)
}

// finalize moves a session to Submitted and dispatches its report.
// Caller holds s.mu; the lock is released on return.
func (s *SessionService) finalize(userID string, sess *quizSession) (*models.SubmitResult, error) {
	if sess.submitted {
		result := &models.SubmitResult{
			Score:            sess.score,
			Total:            len(sess.bundle.Questions),
			AlreadySubmitted: true,
		}
		s.mu.Unlock()
		return result, nil
	}

	sess.submitted = true
	close(sess.done)
	sess.score = Score(sess.bundle.Questions, sess.selections)

	report := buildReport(sess)
	token := sess.token
	score := sess.score
	total := len(sess.bundle.Questions)
	s.mu.Unlock()

	go s.deliver(userID, token, report, score, total)

	return &models.SubmitResult{Score: score, Total: total}, nil
}

// View returns a snapshot of the user's session
func (s *SessionService) View(userID string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s.snapshot(sess), nil
}

// Abandon discards the user's session and releases its countdown
func (s *SessionService) Abandon(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return ErrNoActiveSession
	}
	if !sess.submitted {
		close(sess.done)
	}
	delete(s.sessions, userID)
	return nil
}

// runCountdown ticks once per second until the budget runs out or the
// session is finalized. A tick that loses the race with Submit observes
// the submitted flag under the lock and stops without re-triggering.
func (s *SessionService) runCountdown(userID string, sess *quizSession) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if sess.submitted {
				s.mu.Unlock()
				return
			}
			sess.remaining--
			remaining := sess.remaining
			s.mu.Unlock()

			if s.notifier != nil {
				s.notifier.SessionEvent(userID, "tick", map[string]interface{}{
					"remainingSeconds": remaining,
				})
			}

			if remaining <= 0 {
				s.mu.Lock()
				if s.sessions[userID] != sess {
					// A fresh session replaced this one while the final
					// tick was in flight; its own countdown owns it now.
					s.mu.Unlock()
					return
				}
				if _, err := s.finalize(userID, sess); err != nil {
					log.Printf("⚠️ Error auto-submitting session for %s: %v", userID, err)
				}
				return
			}
		}
	}
}

// deliver sends the attempt summary and, on acknowledgment, clears the
// mailbox. Fire-and-forget: the local score is already final.
func (s *SessionService) deliver(userID, token string, report *models.QuizReport, score, total int) {
	if err := s.sender.Send(token, report); err != nil {
		log.Printf("⚠️ Error submitting quiz report for %s: %v", userID, err)
		if s.notifier != nil {
			s.notifier.SessionEvent(userID, "submitFailed", map[string]interface{}{
				"message": "Error submitting quiz.",
			})
		}
		return
	}

	if err := s.store.ClearPendingQuiz(userID); err != nil {
		log.Printf("⚠️ Error clearing pending quiz for %s: %v", userID, err)
	}

	if s.notifier != nil {
		s.notifier.SessionEvent(userID, "submitted", map[string]interface{}{
			"message": fmt.Sprintf("Quiz submitted! Score: %d/%d", score, total),
			"score":   score,
			"total":   total,
		})
	}
}

// snapshot builds a SessionView; caller holds the lock
func (s *SessionService) snapshot(sess *quizSession) *models.SessionView {
	selections := make(map[int]int, len(sess.selections))
	for k, v := range sess.selections {
		selections[k] = v
	}

	bookmarks := make([]int, 0, len(sess.bookmarks))
	for pos := range sess.bookmarks {
		bookmarks = append(bookmarks, pos)
	}
	sort.Ints(bookmarks)

	status := models.SessionStatusActive
	if sess.submitted {
		status = models.SessionStatusSubmitted
	}

	return &models.SessionView{
		Subject:          sess.bundle.Subject,
		Source:           sess.bundle.Source,
		TopicsCovered:    sess.bundle.TopicsCovered,
		Questions:        sess.bundle.Questions,
		Selections:       selections,
		Bookmarks:        bookmarks,
		RemainingSeconds: sess.remaining,
		Status:           status,
		Score:            sess.score,
		Total:            len(sess.bundle.Questions),
	}
}

// buildReport assembles the submission payload; caller holds the lock
func buildReport(sess *quizSession) *models.QuizReport {
	questions := make([]models.AnsweredQuestion, len(sess.bundle.Questions))
	for i, q := range sess.bundle.Questions {
		answered := models.AnsweredQuestion{
			QuestionText:       q.Text,
			Options:            q.Options,
			CorrectAnswerIndex: q.CorrectOptionIndex,
			TopicTag:           q.Topic,
			Difficulty:         q.NormalizedDifficulty(),
			Explanation:        q.Explanation,
		}
		if sel, ok := sess.selections[i]; ok {
			selected := sel
			answered.SelectedAnswerIndex = &selected
		}
		questions[i] = answered
	}

	bookmarked := make([]models.BookmarkedQuestion, 0, len(sess.bookmarks))
	positions := make([]int, 0, len(sess.bookmarks))
	for pos := range sess.bookmarks {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	for _, pos := range positions {
		q := sess.bundle.Questions[pos]
		bookmarked = append(bookmarked, models.BookmarkedQuestion{
			QuestionText: q.Text,
			TopicTag:     q.Topic,
			Difficulty:   q.NormalizedDifficulty(),
		})
	}

	return &models.QuizReport{
		Subject:             sess.bundle.Subject,
		Source:              sess.bundle.Source,
		Topics:              sess.bundle.TopicsCovered,
		Questions:           questions,
		BookmarkedQuestions: bookmarked,
	}
}
