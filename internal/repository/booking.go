package repository

import (
	"context"

	"tripbuddy/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// ListByUser retrieves a user's bookings, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)

	// SumSeatsByRide returns the total seats booked across a ride's bookings.
	SumSeatsByRide(ctx context.Context, rideID string) (int, error)

	// DeleteByUser removes all bookings made by the given user.
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteByRideCreator removes all bookings on rides owned by the given
	// user. Used by account deletion before the rides themselves go.
	DeleteByRideCreator(ctx context.Context, creatorID string) error
}
