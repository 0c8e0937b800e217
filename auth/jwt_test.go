package auth

import (
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("secret", time.Hour)

	token, expiresAt, err := svc.IssueToken("u1")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", expiresAt)
	}

	userID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %q", userID)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := NewService("secret-a", time.Hour).IssueToken("u1")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := NewService("secret-b", time.Hour).ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with wrong secret")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("secret", -time.Minute)
	token, _, err := svc.IssueToken("u1")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail for expired token")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("secret", time.Hour)
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Fatal("expected validation to fail for garbage token")
	}
}
