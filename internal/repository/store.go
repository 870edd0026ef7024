package repository

import "context"

// Store bundles the repositories and hands out transactions. Services depend
// on this interface so the booking and account-deletion flows can run their
// multi-row updates as one unit against the real database while tests supply
// an in-memory implementation.
type Store interface {
	Users() UserRepository
	Rides() RideRepository
	Bookings() BookingRepository
	Notifications() NotificationRepository

	// BeginTx opens a transaction-scoped view of the store. The caller must
	// finish it with Commit or Rollback.
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a transaction-scoped view of the store. Repositories obtained from
// it share one underlying transaction; none of their writes are visible
// until Commit.
type Tx interface {
	Users() UserRepository
	Rides() RideRepository
	Bookings() BookingRepository
	Notifications() NotificationRepository

	Commit() error
	Rollback() error
}
