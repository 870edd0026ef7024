package repository

import (
	"context"
	"time"

	"tripbuddy/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user. Unique-constraint violations are mapped
	// to ErrDuplicateUsername / ErrDuplicateEmail / ErrDuplicatePhone.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByToken retrieves a user by verification token. Tokens are unique,
	// so at most one user matches.
	GetByToken(ctx context.Context, token string) (*domain.User, error)

	// SetVerification updates the verified flag, token and expiry together.
	// An empty token is stored as NULL so a cleared token can never match
	// a lookup.
	SetVerification(ctx context.Context, id string, verified bool, token string, expiresAt time.Time) error

	// SetCapabilities updates the two capability flags.
	SetCapabilities(ctx context.Context, id string, canOffer, canFind bool) error

	// RecordLogin sets the last-login timestamp.
	RecordLogin(ctx context.Context, id string, at time.Time) error

	// IncrementRidesTaken adds seats to the user's running booking counter.
	IncrementRidesTaken(ctx context.Context, id string, seats int) error

	// Delete removes the user row.
	Delete(ctx context.Context, id string) error
}
