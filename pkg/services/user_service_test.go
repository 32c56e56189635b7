package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/backsoul/studytrack/pkg/auth"
	"github.com/backsoul/studytrack/pkg/models"
	"github.com/backsoul/studytrack/pkg/redis"
)

type fakeUserStore struct {
	byEmail map[string]*models.StoredUser
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*models.StoredUser)}
}

func (f *fakeUserStore) SaveUser(user *models.StoredUser) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStore) GetUserByEmail(email string) (*models.StoredUser, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, redis.ErrNotFound)
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByID(id string) (*models.StoredUser, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, redis.ErrNotFound)
}

func newTestUserService() *UserService {
	return NewUserService(newFakeUserStore(), auth.NewManager("test-secret", time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestUserService()

	registered, err := s.Register(&models.RegisterRequest{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.Token == "" {
		t.Error("Register issued no token")
	}
	if registered.User.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", registered.User.Email)
	}

	// Login with a differently cased email
	logged, err := s.Login(&models.LoginRequest{Email: "ADA@example.COM", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if logged.User.ID != registered.User.ID {
		t.Error("Login returned a different account")
	}

	profile, err := s.GetProfile(registered.User.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Name != "Ada" {
		t.Errorf("profile name = %q", profile.Name)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestUserService()

	req := &models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}
	if _, err := s.Register(req); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := s.Register(req); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("got %v, want ErrEmailTaken", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestUserService()
	s.Register(&models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})

	if _, err := s.Login(&models.LoginRequest{Email: "ada@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Login(&models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}
