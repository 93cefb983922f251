package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// MockGateAdapter is a mock implementation of GateAdapter for testing.
// Passwords are compared in plain text; tokens are opaque lookup keys.
type MockGateAdapter struct {
	mu     sync.Mutex
	tokens map[string]*domain.GateClaims
	seq    int
}

// NewMockGateAdapter creates a new MockGateAdapter.
func NewMockGateAdapter() *MockGateAdapter {
	return &MockGateAdapter{tokens: make(map[string]*domain.GateClaims)}
}

func (m *MockGateAdapter) HashPassword(password string) (string, error) {
	// Mock hasher uses plain text comparison
	return password, nil
}

func (m *MockGateAdapter) VerifyPassword(password, hash string) bool {
	return password == hash
}

func (m *MockGateAdapter) GenerateToken(claims *domain.GateClaims) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	token := fmt.Sprintf("token-%s-%d", claims.Role, m.seq)
	m.tokens[token] = claims
	return token, nil
}

func (m *MockGateAdapter) ParseToken(token string) (*domain.GateClaims, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	claims, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	if claims.ExpiresAt > 0 && claims.ExpiresAt < time.Now().Unix() {
		return nil, domain.ErrTokenExpired
	}
	return claims, nil
}
