package driven

import "github.com/custodia-labs/kbchat-core/internal/core/domain"

// GateAdapter handles the cryptographic parts of the access gate: password
// verification for the admin role and token issuing for both roles.
type GateAdapter interface {
	// HashPassword generates a hash from a plaintext password
	HashPassword(password string) (string, error)

	// VerifyPassword checks if a password matches a stored hash
	VerifyPassword(password, hash string) bool

	// GenerateToken creates a signed gate token from claims
	GenerateToken(claims *domain.GateClaims) (string, error)

	// ParseToken validates a gate token and returns its claims
	ParseToken(token string) (*domain.GateClaims, error)
}
