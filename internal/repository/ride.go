package repository

import (
	"context"

	"tripbuddy/internal/domain"
)

// RideSearch holds the optional filters for browsing rides.
type RideSearch struct {
	// ViewerID excludes the viewer's own rides from results.
	ViewerID string

	// From and To are case-insensitive substring filters on the start and
	// end locations. Empty filters match everything. Both are ANDed.
	From string
	To   string
}

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// Search returns active rides with remaining seats matching the filters.
	Search(ctx context.Context, q RideSearch) ([]*domain.Ride, error)

	// DecrementSeats atomically subtracts seats from the ride's remaining
	// capacity. Returns ErrInsufficientSeats when the ride does not have
	// that many seats left, leaving the row untouched.
	DecrementSeats(ctx context.Context, id string, seats int) error

	// DeleteByCreator removes all rides owned by the given user.
	DeleteByCreator(ctx context.Context, creatorID string) error
}
