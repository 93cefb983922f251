package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

func TestAdapter_HashAndVerifyPassword(t *testing.T) {
	adapter := NewAdapter("test-secret")

	hash, err := adapter.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret" {
		t.Error("expected a hash, got the plaintext back")
	}

	if !adapter.VerifyPassword("s3cret", hash) {
		t.Error("expected the correct password to verify")
	}
	if adapter.VerifyPassword("wrong", hash) {
		t.Error("expected the wrong password to fail")
	}
}

func TestAdapter_TokenRoundTrip(t *testing.T) {
	adapter := NewAdapter("test-secret")
	now := time.Now()

	token, err := adapter.GenerateToken(&domain.GateClaims{
		Role:      domain.RoleGuest,
		GuestID:   "alice",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := adapter.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Role != domain.RoleGuest || claims.GuestID != "alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestAdapter_ParseToken_Expired(t *testing.T) {
	adapter := NewAdapter("test-secret")
	past := time.Now().Add(-2 * time.Hour)

	token, err := adapter.GenerateToken(&domain.GateClaims{
		Role:      domain.RoleGuest,
		GuestID:   "alice",
		IssuedAt:  past.Unix(),
		ExpiresAt: past.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := adapter.ParseToken(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAdapter_ParseToken_WrongSecret(t *testing.T) {
	adapter := NewAdapter("test-secret")
	other := NewAdapter("other-secret")
	now := time.Now()

	token, err := adapter.GenerateToken(&domain.GateClaims{
		Role:      domain.RoleAdmin,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.ParseToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAdapter_ParseToken_Garbage(t *testing.T) {
	adapter := NewAdapter("test-secret")
	if _, err := adapter.ParseToken("not-a-jwt"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
