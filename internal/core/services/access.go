package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driving"
)

// Ensure accessService implements AccessService
var _ driving.AccessService = (*accessService)(nil)

// accessService implements the AccessService interface. The quota counter
// backend is injected so single-process deployments use memory while
// multi-instance ones share Redis or Postgres.
type accessService struct {
	gate          driven.GateAdapter
	counter       driven.UsageCounter
	adminPassHash string
	tokenTTL      time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewAccessService creates a new AccessService. adminPassHash is the hashed
// admin password; empty means the admin role is not configured.
func NewAccessService(gate driven.GateAdapter, counter driven.UsageCounter, adminPassHash string, logger *slog.Logger) driving.AccessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &accessService{
		gate:          gate,
		counter:       counter,
		adminPassHash: adminPassHash,
		tokenTTL:      24 * time.Hour,
		now:           time.Now,
		logger:        logger,
	}
}

// LoginAdmin verifies the admin password and issues an unrestricted gate
// token.
func (s *accessService) LoginAdmin(ctx context.Context, password string) (*domain.GateSession, error) {
	if s.adminPassHash == "" {
		return nil, domain.ErrGateNotConfigured
	}
	if password == "" {
		return nil, domain.ErrInvalidInput
	}
	if !s.gate.VerifyPassword(password, s.adminPassHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(domain.RoleAdmin, "")
}

// LoginGuest captures a guest identity and issues a quota-limited gate
// token.
func (s *accessService) LoginGuest(ctx context.Context, identity string) (*domain.GateSession, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.issue(domain.RoleGuest, identity)
}

// Validate parses a gate token into an access context.
func (s *accessService) Validate(ctx context.Context, token string) (*domain.AccessContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	claims, err := s.gate.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt > 0 && claims.ExpiresAt < s.now().Unix() {
		return nil, domain.ErrTokenExpired
	}
	return &domain.AccessContext{Role: claims.Role, GuestID: claims.GuestID}, nil
}

// Authorize checks and consumes quota for one query. The guest counter is
// keyed by (identity, calendar date) so it resets at midnight without
// cleanup.
func (s *accessService) Authorize(ctx context.Context, access *domain.AccessContext) error {
	if access == nil {
		return domain.ErrUnauthorized
	}
	if access.IsAdmin() {
		return nil
	}
	if access.GuestID == "" {
		return domain.ErrUnauthorized
	}

	day := s.now().Format(domain.QuotaDateLayout)
	used, err := s.counter.Used(ctx, access.GuestID, day)
	if err != nil {
		return err
	}
	if used >= domain.MaxGuestQueriesPerDay {
		s.logger.Info("guest quota exhausted", "guest_id", access.GuestID, "day", day)
		return domain.ErrQuotaExceeded
	}

	_, err = s.counter.Increment(ctx, access.GuestID, day)
	return err
}

// Remaining reports how many daily queries the guest has left. Counter
// failures degrade to a full allowance rather than blocking the readout.
func (s *accessService) Remaining(ctx context.Context, access *domain.AccessContext) (int, bool) {
	if access == nil || access.IsAdmin() || access.GuestID == "" {
		return 0, false
	}
	day := s.now().Format(domain.QuotaDateLayout)
	used, err := s.counter.Used(ctx, access.GuestID, day)
	if err != nil {
		return domain.MaxGuestQueriesPerDay, true
	}
	remaining := domain.MaxGuestQueriesPerDay - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (s *accessService) issue(role domain.Role, guestID string) (*domain.GateSession, error) {
	issued := s.now()
	expires := issued.Add(s.tokenTTL)
	token, err := s.gate.GenerateToken(&domain.GateClaims{
		Role:      role,
		GuestID:   guestID,
		IssuedAt:  issued.Unix(),
		ExpiresAt: expires.Unix(),
	})
	if err != nil {
		return nil, err
	}
	return &domain.GateSession{Token: token, Role: role, GuestID: guestID, ExpiresAt: expires}, nil
}
