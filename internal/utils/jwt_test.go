package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateToken(secret, userID, "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parsedID, role, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsedID != userID {
		t.Errorf("user id = %s, want %s", parsedID, userID)
	}
	if role != "admin" {
		t.Errorf("role = %q, want admin", role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", uuid.New(), "user", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, _, err := ParseToken("secret-b", token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "user", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, _, err := ParseToken("secret", token); err == nil {
		t.Error("expired token must be rejected")
	}
}
