package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-123", "Ada")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("subject = %q, want user-123", claims.Subject)
	}
	if claims.Name != "Ada" {
		t.Errorf("name = %q, want Ada", claims.Name)
	}
}

func TestVerifyAcceptsBearerPrefix(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-123", "Ada")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Verify("Bearer " + token)
	if err != nil {
		t.Fatalf("Verify with Bearer prefix failed: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("subject = %q, want user-123", claims.Subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.Issue("user-123", "Ada")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Issue("user-123", "Ada")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	if _, err := m.Verify(""); err == nil {
		t.Error("empty token was accepted")
	}
	if _, err := m.Verify("Bearer "); err == nil {
		t.Error("empty bearer token was accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "hunter22" {
		t.Error("password stored in plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("wrong password accepted")
	}
}
