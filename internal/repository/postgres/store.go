package postgres

import (
	"context"
	"database/sql"

	"tripbuddy/internal/repository"
)

// Store is the PostgreSQL implementation of repository.Store.
type Store struct {
	db            *sql.DB
	users         *UserRepository
	rides         *RideRepository
	bookings      *BookingRepository
	notifications *NotificationRepository
}

// NewStore creates a Store over the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		users:         NewUserRepository(db),
		rides:         NewRideRepository(db),
		bookings:      NewBookingRepository(db),
		notifications: NewNotificationRepository(db),
	}
}

func (s *Store) Users() repository.UserRepository                 { return s.users }
func (s *Store) Rides() repository.RideRepository                 { return s.rides }
func (s *Store) Bookings() repository.BookingRepository           { return s.bookings }
func (s *Store) Notifications() repository.NotificationRepository { return s.notifications }

// BeginTx opens a transaction and returns a transaction-scoped store view.
func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx}, nil
}

// storeTx is a transaction-scoped view of the store. All repositories it
// hands out run on the same *sql.Tx.
type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) Users() repository.UserRepository   { return NewUserRepositoryWithTx(t.tx) }
func (t *storeTx) Rides() repository.RideRepository   { return NewRideRepositoryWithTx(t.tx) }
func (t *storeTx) Bookings() repository.BookingRepository {
	return NewBookingRepositoryWithTx(t.tx)
}
func (t *storeTx) Notifications() repository.NotificationRepository {
	return NewNotificationRepositoryWithTx(t.tx)
}

func (t *storeTx) Commit() error   { return t.tx.Commit() }
func (t *storeTx) Rollback() error { return t.tx.Rollback() }

// Ensure interfaces are satisfied.
var (
	_ repository.Store = (*Store)(nil)
	_ repository.Tx    = (*storeTx)(nil)
)
