package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/backsoul/studytrack/pkg/models"
)

// ErrNotFound is returned when a key has no value in Redis
var ErrNotFound = errors.New("not found")

// Key scheme used by the service
const (
	keyUser         = "studytrack:user:%s"          // email -> StoredUser JSON
	keyUserByID     = "studytrack:user_id:%s"       // id -> email
	keyBank         = "studytrack:bank:%s"          // subject -> []Question JSON
	keySubjects     = "studytrack:subjects"         // set of subjects with a bank
	keyTopics       = "studytrack:topics:%s"        // subject -> []Topic JSON
	keyPendingQuiz  = "studytrack:pending_quiz:%s"  // userID -> QuizBundle JSON
	keyAttempt      = "studytrack:attempt:%s"       // attemptID -> AttemptRecord JSON
	keyUserAttempts = "studytrack:user_attempts:%s" // userID -> set of attempt IDs
	keyProgress     = "studytrack:progress:%s"      // userID -> map[topicID]TopicProgress JSON
)

// RedisClient wraps the connection to Redis
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client and verifies the connection
func NewRedisClient(addr, password string, db int) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("❌ Error connecting to Redis: %v", err)
	}

	log.Println("✅ Connected to Redis")

	return &RedisClient{
		client: rdb,
		ctx:    ctx,
	}
}

// Close closes the connection to Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck verifies that Redis is reachable
func (r *RedisClient) HealthCheck() error {
	if _, err := r.client.Ping(r.ctx).Result(); err != nil {
		return fmt.Errorf("redis health check failed: %v", err)
	}
	return nil
}

// getJSON reads a key and unmarshals its JSON value into v
func (r *RedisClient) getJSON(key string, v interface{}) error {
	data, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("error reading %s: %v", key, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("error parsing %s: %v", key, err)
	}
	return nil
}

// setJSON marshals v and stores it under key
func (r *RedisClient) setJSON(key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error serializing %s: %v", key, err)
	}
	return r.client.Set(r.ctx, key, data, ttl).Err()
}

// --- Users ---

// SaveUser stores a user keyed by email plus an id index
func (r *RedisClient) SaveUser(user *models.StoredUser) error {
	if err := r.setJSON(fmt.Sprintf(keyUser, user.Email), user, 0); err != nil {
		return err
	}
	return r.client.Set(r.ctx, fmt.Sprintf(keyUserByID, user.ID), user.Email, 0).Err()
}

// GetUserByEmail returns the user registered under email
func (r *RedisClient) GetUserByEmail(email string) (*models.StoredUser, error) {
	var user models.StoredUser
	if err := r.getJSON(fmt.Sprintf(keyUser, email), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID resolves the id index and returns the user
func (r *RedisClient) GetUserByID(id string) (*models.StoredUser, error) {
	email, err := r.client.Get(r.ctx, fmt.Sprintf(keyUserByID, id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error resolving user %s: %v", id, err)
	}
	return r.GetUserByEmail(email)
}

// --- Question banks ---

// SaveBank stores the question bank for a subject
func (r *RedisClient) SaveBank(bank *models.QuestionBank) error {
	if err := r.setJSON(fmt.Sprintf(keyBank, bank.Subject), bank.Questions, 0); err != nil {
		return err
	}
	return r.client.SAdd(r.ctx, keySubjects, bank.Subject).Err()
}

// GetBank returns the question bank for a subject
func (r *RedisClient) GetBank(subject string) ([]models.Question, error) {
	var questions []models.Question
	if err := r.getJSON(fmt.Sprintf(keyBank, subject), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetSubjects returns every subject that has a question bank loaded
func (r *RedisClient) GetSubjects() ([]string, error) {
	subjects, err := r.client.SMembers(r.ctx, keySubjects).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading subjects: %v", err)
	}
	return subjects, nil
}

// BankCount returns the number of loaded question banks
func (r *RedisClient) BankCount() (int, error) {
	count, err := r.client.SCard(r.ctx, keySubjects).Result()
	if err != nil {
		return 0, fmt.Errorf("error counting banks: %v", err)
	}
	return int(count), nil
}

// --- Topic catalogs ---

// SaveTopics stores the topic catalog for a subject
func (r *RedisClient) SaveTopics(subject string, topics []models.Topic) error {
	return r.setJSON(fmt.Sprintf(keyTopics, subject), topics, 0)
}

// GetTopics returns the topic catalog for a subject
func (r *RedisClient) GetTopics(subject string) ([]models.Topic, error) {
	var topics []models.Topic
	if err := r.getJSON(fmt.Sprintf(keyTopics, subject), &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// --- Pending quiz mailbox ---

// PutPendingQuiz stores the pending question set for a user.
// TTL keeps abandoned bundles from piling up.
func (r *RedisClient) PutPendingQuiz(userID string, bundle *models.QuizBundle) error {
	return r.setJSON(fmt.Sprintf(keyPendingQuiz, userID), bundle, 24*time.Hour)
}

// GetPendingQuiz reads the pending question set for a user
func (r *RedisClient) GetPendingQuiz(userID string) (*models.QuizBundle, error) {
	var bundle models.QuizBundle
	if err := r.getJSON(fmt.Sprintf(keyPendingQuiz, userID), &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// ClearPendingQuiz removes the pending question set for a user
func (r *RedisClient) ClearPendingQuiz(userID string) error {
	return r.client.Del(r.ctx, fmt.Sprintf(keyPendingQuiz, userID)).Err()
}

// --- Attempt history ---

// SaveAttempt stores a graded attempt and indexes it for its user
func (r *RedisClient) SaveAttempt(attempt *models.AttemptRecord) error {
	if err := r.setJSON(fmt.Sprintf(keyAttempt, attempt.ID), attempt, 0); err != nil {
		return err
	}
	return r.client.SAdd(r.ctx, fmt.Sprintf(keyUserAttempts, attempt.UserID), attempt.ID).Err()
}

// GetAttempt returns one graded attempt by id
func (r *RedisClient) GetAttempt(id string) (*models.AttemptRecord, error) {
	var attempt models.AttemptRecord
	if err := r.getJSON(fmt.Sprintf(keyAttempt, id), &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// GetUserAttemptIDs returns the attempt ids recorded for a user
func (r *RedisClient) GetUserAttemptIDs(userID string) ([]string, error) {
	ids, err := r.client.SMembers(r.ctx, fmt.Sprintf(keyUserAttempts, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading attempts for %s: %v", userID, err)
	}
	return ids, nil
}

// --- Topic progress ---

// GetProgress returns the per-topic progress map for a user.
// A user with no recorded progress gets an empty map.
func (r *RedisClient) GetProgress(userID string) (map[string]models.TopicProgress, error) {
	progress := make(map[string]models.TopicProgress)
	if err := r.getJSON(fmt.Sprintf(keyProgress, userID), &progress); err != nil {
		if errors.Is(err, ErrNotFound) {
			return progress, nil
		}
		return nil, err
	}
	return progress, nil
}

// SaveProgress stores the per-topic progress map for a user
func (r *RedisClient) SaveProgress(userID string, progress map[string]models.TopicProgress) error {
	return r.setJSON(fmt.Sprintf(keyProgress, userID), progress, 0)
}
