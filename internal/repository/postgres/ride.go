package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/repository"
)

const rideColumns = `id, creator_id, start_location, end_location, price, seats, seats_posted,
	ride_date, ride_time, description, status, created_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, creator_id, start_location, end_location, price, seats, seats_posted,
			ride_date, ride_time, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var description sql.NullString
	if ride.Description != "" {
		description = sql.NullString{String: ride.Description, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.CreatorID,
		ride.StartLocation,
		ride.EndLocation,
		ride.Price,
		ride.Seats,
		ride.SeatsPosted,
		ride.Date,
		ride.Time,
		description,
		ride.Status,
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	var ride domain.Ride
	var description sql.NullString

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&ride.ID,
		&ride.CreatorID,
		&ride.StartLocation,
		&ride.EndLocation,
		&ride.Price,
		&ride.Seats,
		&ride.SeatsPosted,
		&ride.Date,
		&ride.Time,
		&description,
		&ride.Status,
		&ride.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if description.Valid {
		ride.Description = description.String
	}

	return &ride, nil
}

// Search returns active rides with remaining seats, excluding the viewer's
// own rides, optionally filtered by start and end location substrings.
func (r *RideRepository) Search(ctx context.Context, q repository.RideSearch) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE status = $1
		  AND seats > 0
		  AND creator_id <> $2
		  AND start_location ILIKE '%' || $3 || '%'
		  AND end_location ILIKE '%' || $4 || '%'
		ORDER BY ride_date, created_at
	`

	rows, err := r.q.QueryContext(ctx, query, domain.RideStatusActive, q.ViewerID, q.From, q.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		var ride domain.Ride
		var description sql.NullString
		if err := rows.Scan(
			&ride.ID,
			&ride.CreatorID,
			&ride.StartLocation,
			&ride.EndLocation,
			&ride.Price,
			&ride.Seats,
			&ride.SeatsPosted,
			&ride.Date,
			&ride.Time,
			&description,
			&ride.Status,
			&ride.CreatedAt,
		); err != nil {
			return nil, err
		}
		if description.Valid {
			ride.Description = description.String
		}
		rides = append(rides, &ride)
	}
	return rides, rows.Err()
}

// DecrementSeats atomically subtracts seats from the remaining capacity.
// The WHERE clause doubles as a compare-and-swap: a concurrent booking that
// drained the seats first makes this match zero rows.
func (r *RideRepository) DecrementSeats(ctx context.Context, id string, seats int) error {
	query := `UPDATE rides SET seats = seats - $1 WHERE id = $2 AND seats >= $1`

	result, err := r.q.ExecContext(ctx, query, seats, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrInsufficientSeats
	}

	return nil
}

// DeleteByCreator removes all rides owned by the given user.
func (r *RideRepository) DeleteByCreator(ctx context.Context, creatorID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM rides WHERE creator_id = $1`, creatorID)
	return err
}
