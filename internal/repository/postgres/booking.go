package postgres

import (
	"context"
	"database/sql"

	"tripbuddy/internal/domain"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, ride_id, seats_booked, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.RideID,
		booking.SeatsBooked,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
	)

	return err
}

// ListByUser retrieves a user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	query := `
		SELECT id, user_id, ride_id, seats_booked, total_price, status, created_at
		FROM bookings WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.RideID,
			&b.SeatsBooked,
			&b.TotalPrice,
			&b.Status,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

// SumSeatsByRide returns the total seats booked across a ride's bookings.
func (r *BookingRepository) SumSeatsByRide(ctx context.Context, rideID string) (int, error) {
	query := `SELECT COALESCE(SUM(seats_booked), 0) FROM bookings WHERE ride_id = $1`

	var total int
	if err := r.q.QueryRowContext(ctx, query, rideID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteByUser removes all bookings made by the given user.
func (r *BookingRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM bookings WHERE user_id = $1`, userID)
	return err
}

// DeleteByRideCreator removes all bookings on rides owned by the given user.
func (r *BookingRepository) DeleteByRideCreator(ctx context.Context, creatorID string) error {
	query := `DELETE FROM bookings WHERE ride_id IN (SELECT id FROM rides WHERE creator_id = $1)`
	_, err := r.q.ExecContext(ctx, query, creatorID)
	return err
}
