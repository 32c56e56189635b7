package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/redis"
)

// ErrUnknownTopic is returned when progress targets a topic that does not exist
var ErrUnknownTopic = errors.New("unknown topic")

// ErrInvalidProgressField is returned for an unsupported progress field
var ErrInvalidProgressField = errors.New("invalid progress field")

// ErrInvalidProgressValue is returned when the value does not match the field's type
var ErrInvalidProgressValue = errors.New("invalid progress value")

// ProgressStore persists topic catalogs and per-user progress
type ProgressStore interface {
	SaveTopics(subject string, topics []models.Topic) error
	GetTopics(subject string) ([]models.Topic, error)
	GetProgress(userID string) (map[string]models.TopicProgress, error)
	SaveProgress(userID string, progress map[string]models.TopicProgress) error
}

// ProgressService owns the theory learning paths: topic catalogs per
// subject and each user's completed/bookmarked/reminder/notes flags.
type ProgressService struct {
	store ProgressStore
}

// NewProgressService creates a new progress service
func NewProgressService(store ProgressStore) *ProgressService {
	return &ProgressService{
		store: store,
	}
}

// LoadTopicsFromFile loads the topic catalogs from a seed JSON file
func (s *ProgressService) LoadTopicsFromFile(filePath string) error {
	log.Printf("📂 Loading topic catalogs from: %s", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading topics file: %v", err)
	}

	var file models.TopicsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error parsing topics file: %v", err)
	}

	// Group by subject before storing
	bySubject := make(map[string][]models.Topic)
	for _, topic := range file.Topics {
		subject := strings.ToLower(topic.Subject)
		topic.Subject = subject
		bySubject[subject] = append(bySubject[subject], topic)
	}

	for subject, topics := range bySubject {
		if err := s.store.SaveTopics(subject, topics); err != nil {
			log.Printf("❌ Error saving topics for %q: %v", subject, err)
			continue
		}
	}

	log.Printf("✅ Topic catalogs loaded for %d subjects", len(bySubject))
	return nil
}

// GetTopics returns the learning path for a subject
func (s *ProgressService) GetTopics(subject string) ([]models.Topic, error) {
	topics, err := s.store.GetTopics(strings.ToLower(subject))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("error reading topics: %v", err)
	}
	return topics, nil
}

// GetProgress returns the user's per-topic progress map
func (s *ProgressService) GetProgress(userID string) (map[string]models.TopicProgress, error) {
	return s.store.GetProgress(userID)
}

// UpdateProgress changes one field of one topic's progress for a user
func (s *ProgressService) UpdateProgress(userID string, req *models.UpdateProgressRequest) (map[string]models.TopicProgress, error) {
	topics, err := s.GetTopics(req.Subject)
	if err != nil {
		return nil, err
	}

	known := false
	for _, t := range topics {
		if t.ID == req.TopicID {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrUnknownTopic
	}

	progress, err := s.store.GetProgress(userID)
	if err != nil {
		return nil, err
	}

	entry := progress[req.TopicID]
	switch req.Field {
	case "isCompleted":
		b, ok := asBool(req.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a boolean", ErrInvalidProgressValue, req.Field)
		}
		entry.IsCompleted = b
	case "isBookmarked":
		b, ok := asBool(req.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a boolean", ErrInvalidProgressValue, req.Field)
		}
		entry.IsBookmarked = b
	case "remindOn":
		str, ok := asString(req.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a string", ErrInvalidProgressValue, req.Field)
		}
		entry.RemindOn = str
	case "notes":
		str, ok := asString(req.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a string", ErrInvalidProgressValue, req.Field)
		}
		entry.Notes = str
	default:
		return nil, ErrInvalidProgressField
	}
	progress[req.TopicID] = entry

	if err := s.store.SaveProgress(userID, progress); err != nil {
		return nil, fmt.Errorf("error saving progress: %v", err)
	}

	return progress, nil
}

func asBool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asString accepts nil so string fields can be cleared.
func asString(v interface{}) (string, bool) {
	if v == nil {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}
