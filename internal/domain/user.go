package domain

import "time"

// User represents a registered account. A user may hold either or both of
// the two marketplace capabilities: offering rides (provider) and finding
// rides (renter).
type User struct {
	ID            string
	Username      string
	Email         string
	Phone         string
	PasswordHash  string
	CanOfferRides bool
	CanFindRides  bool
	RidesTaken    int
	Verified      bool

	// VerifyToken is the one-time email verification token. Empty once
	// consumed, expired, or never issued.
	VerifyToken    string
	TokenExpiresAt time.Time

	LastLoginAt time.Time
	CreatedAt   time.Time
}

// RoleLabel derives the display label from the capability flags. It exists
// for presentation only; business rules branch on the flags, never on the
// label.
func (u *User) RoleLabel() string {
	switch {
	case u.CanOfferRides && u.CanFindRides:
		return "Renter, Provider"
	case u.CanOfferRides:
		return "Provider"
	case u.CanFindRides:
		return "Renter"
	default:
		return ""
	}
}

// TokenExpired reports whether the verification token has passed its expiry.
func (u *User) TokenExpired(now time.Time) bool {
	return !u.TokenExpiresAt.IsZero() && now.After(u.TokenExpiresAt)
}
