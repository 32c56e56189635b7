package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/redis"
)

type fakeProgressStore struct {
	topics   map[string][]models.Topic
	progress map[string]map[string]models.TopicProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{
		topics:   make(map[string][]models.Topic),
		progress: make(map[string]map[string]models.TopicProgress),
	}
}

func (f *fakeProgressStore) SaveTopics(subject string, topics []models.Topic) error {
	f.topics[subject] = topics
	return nil
}

func (f *fakeProgressStore) GetTopics(subject string) ([]models.Topic, error) {
	topics, ok := f.topics[subject]
	if !ok {
		return nil, fmt.Errorf("topics %s: %w", subject, redis.ErrNotFound)
	}
	return topics, nil
}

func (f *fakeProgressStore) GetProgress(userID string) (map[string]models.TopicProgress, error) {
	progress, ok := f.progress[userID]
	if !ok {
		return make(map[string]models.TopicProgress), nil
	}
	return progress, nil
}

func (f *fakeProgressStore) SaveProgress(userID string, progress map[string]models.TopicProgress) error {
	f.progress[userID] = progress
	return nil
}

func seedTopics(store *fakeProgressStore) {
	store.SaveTopics("java", []models.Topic{
		{ID: "t1", Subject: "java", Title: "Collections", Type: models.TopicTypeImportant, Order: 1},
		{ID: "t2", Subject: "java", Title: "Streams", Type: models.TopicTypeOther, Order: 2},
	})
}

func TestUpdateProgressFields(t *testing.T) {
	store := newFakeProgressStore()
	seedTopics(store)
	s := NewProgressService(store)

	progress, err := s.UpdateProgress("u1", &models.UpdateProgressRequest{
		Subject: "java",
		TopicID: "t1",
		Field:   "isCompleted",
		Value:   true,
	})
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if !progress["t1"].IsCompleted {
		t.Error("isCompleted not set")
	}

	progress, err = s.UpdateProgress("u1", &models.UpdateProgressRequest{
		Subject: "java",
		TopicID: "t1",
		Field:   "remindOn",
		Value:   "2026-09-15",
	})
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if progress["t1"].RemindOn != "2026-09-15" {
		t.Errorf("remindOn = %q", progress["t1"].RemindOn)
	}
	// Earlier flag survives the second update
	if !progress["t1"].IsCompleted {
		t.Error("isCompleted lost on second update")
	}
}

func TestUpdateProgressUnknownTopic(t *testing.T) {
	store := newFakeProgressStore()
	seedTopics(store)
	s := NewProgressService(store)

	_, err := s.UpdateProgress("u1", &models.UpdateProgressRequest{
		Subject: "java",
		TopicID: "nope",
		Field:   "isCompleted",
		Value:   true,
	})
	if !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("got %v, want ErrUnknownTopic", err)
	}

	_, err = s.UpdateProgress("u1", &models.UpdateProgressRequest{
		Subject: "rust",
		TopicID: "t1",
		Field:   "isCompleted",
		Value:   true,
	})
	if !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("got %v, want ErrUnknownSubject", err)
	}
}

func TestUpdateProgressRejectsMismatchedValue(t *testing.T) {
	store := newFakeProgressStore()
	seedTopics(store)
	s := NewProgressService(store)

	cases := []struct {
		name  string
		field string
		value interface{}
	}{
		{"string for bool field", "isCompleted", "yes"},
		{"number for bool field", "isBookmarked", float64(1)},
		{"bool for string field", "remindOn", true},
		{"number for string field", "notes", float64(42)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.UpdateProgress("u1", &models.UpdateProgressRequest{
				Subject: "java",
				TopicID: "t1",
				Field:   tc.field,
				Value:   tc.value,
			})
			if !errors.Is(err, ErrInvalidProgressValue) {
				t.Errorf("got %v, want ErrInvalidProgressValue", err)
			}
		})
	}

	// Nothing was persisted along the way
	progress, _ := s.GetProgress("u1")
	if len(progress) != 0 {
		t.Errorf("rejected updates were saved: %v", progress)
	}

	// nil clears a string field instead of being rejected
	progress, err := s.UpdateProgress("u1", &models.UpdateProgressRequest{
		Subject: "java",
		TopicID: "t1",
		Field:   "notes",
		Value:   nil,
	})
	if err != nil {
		t.Fatalf("UpdateProgress with nil notes failed: %v", err)
	}
	if progress["t1"].Notes != "" {
		t.Errorf("notes = %q, want empty", progress["t1"].Notes)
	}
}

func TestGetProgressStartsEmpty(t *testing.T) {
	store := newFakeProgressStore()
	seedTopics(store)
	s := NewProgressService(store)

	progress, err := s.GetProgress("new-user")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if len(progress) != 0 {
		t.Errorf("fresh user has progress: %v", progress)
	}
}
