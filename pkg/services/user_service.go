package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backsoul/studytrack/pkg/auth"
	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/redis"
)

// Errors surfaced by account operations
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserStore persists accounts
type UserStore interface {
	SaveUser(user *models.StoredUser) error
	GetUserByEmail(email string) (*models.StoredUser, error)
	GetUserByID(id string) (*models.StoredUser, error)
}

// UserService handles registration, login and profile lookups
type UserService struct {
	store  UserStore
	tokens *auth.Manager
}

// NewUserService creates a new user service
func NewUserService(store UserStore, tokens *auth.Manager) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
	}
}

// Register creates an account and returns a token for it
func (s *UserService) Register(req *models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, redis.ErrNotFound) {
		return nil, fmt.Errorf("error checking email: %v", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.StoredUser{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.store.SaveUser(user); err != nil {
		return nil, fmt.Errorf("error saving user: %v", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ New account registered: %s", email)
	return &models.AuthResponse{Token: token, User: user.Public()}, nil
}

// Login verifies credentials and returns a token
func (s *UserService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error reading user: %v", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: user.Public()}, nil
}

// GetProfile returns the public view of an account
func (s *UserService) GetProfile(userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}
