package domain

import "time"

// Role is the usage tier of a gated caller.
type Role string

const (
	// RoleAdmin is the unrestricted, password-gated tier.
	RoleAdmin Role = "admin"

	// RoleGuest is the quota-limited tier keyed by a self-supplied identity.
	RoleGuest Role = "guest"
)

// MaxGuestQueriesPerDay caps guest usage per identity per calendar day.
// The counter resets implicitly at date rollover.
const MaxGuestQueriesPerDay = 25

// QuotaDateLayout formats the calendar-date component of quota keys.
const QuotaDateLayout = "2006-01-02"

// GateClaims is the payload of a gate token issued after the login-like gate.
type GateClaims struct {
	Role      Role   `json:"role"`
	GuestID   string `json:"guest_id,omitempty"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// AccessContext identifies a gated caller for the duration of one request.
type AccessContext struct {
	Role    Role   `json:"role"`
	GuestID string `json:"guest_id,omitempty"`
}

// IsAdmin reports whether the caller is on the unrestricted tier.
func (a *AccessContext) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// GateSession is the response to a successful gate login.
type GateSession struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	GuestID   string    `json:"guest_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
