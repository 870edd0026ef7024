package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/redis"
	"tripbuddy/internal/repository"
)

// bookingLockTTL bounds how long a crashed booking can hold a ride lock.
const bookingLockTTL = 5 * time.Second

// BookingService guarantees that seat inventory is never oversold and that
// the booking counters stay consistent.
type BookingService struct {
	store    repository.Store
	locks    redis.LockStoreInterface
	cache    redis.CacheStoreInterface
	notifier *NotificationService
	now      func() time.Time
}

// NewBookingService creates a new BookingService. locks and cache may be nil.
func NewBookingService(store repository.Store, locks redis.LockStoreInterface, cache redis.CacheStoreInterface, notifier *NotificationService) *BookingService {
	return &BookingService{
		store:    store,
		locks:    locks,
		cache:    cache,
		notifier: notifier,
		now:      time.Now,
	}
}

// Book reserves seats on a ride for the user. The seat decrement, the
// rides_taken increment and the booking insert commit as one transaction;
// the conditional UPDATE behind DecrementSeats is the overselling guard.
// The ride_booked notification to the owner goes out only after commit and
// never rolls the booking back.
func (s *BookingService) Book(ctx context.Context, userID, rideID string, seats int) (*domain.Booking, error) {
	if seats < 1 {
		return nil, ErrInvalidSeats
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.CanFindRides {
		return nil, ErrFindingNotActivated
	}

	ride, err := s.store.Rides().GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.CreatorID == userID {
		return nil, ErrOwnRide
	}
	if ride.Status != domain.RideStatusActive {
		return nil, ErrRideUnavailable
	}
	if seats > ride.Seats {
		return nil, fmt.Errorf("only %d seat(s) available: %w", ride.Seats, ErrNotEnoughSeats)
	}

	if s.locks != nil {
		ok, err := s.locks.AcquireRideLock(ctx, rideID, bookingLockTTL)
		if err != nil {
			logrus.WithError(err).Warn("ride lock unavailable, relying on database guard")
		} else if !ok {
			return nil, ErrRideBusy
		} else {
			defer func() {
				if err := s.locks.ReleaseRideLock(ctx, rideID); err != nil {
					logrus.WithError(err).Warn("failed to release ride lock")
				}
			}()
		}
	}

	booking, err := s.bookTx(ctx, user, ride, seats)
	if err != nil {
		return nil, err
	}

	s.invalidateSearchCache(ctx)

	s.notifier.notifyBestEffort(ctx, NotifyRequest{
		RecipientID: ride.CreatorID,
		SenderID:    user.ID,
		Message: fmt.Sprintf("%s booked %d seat(s) on your ride from %s to %s.",
			user.Username, seats, ride.StartLocation, ride.EndLocation),
		Type:   domain.NotificationRideBooked,
		RideID: ride.ID,
	})

	return booking, nil
}

// bookTx applies the three booking mutations atomically.
func (s *BookingService) bookTx(ctx context.Context, user *domain.User, ride *domain.Ride, seats int) (*domain.Booking, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.Rides().DecrementSeats(ctx, ride.ID, seats); err != nil {
		if errors.Is(err, repository.ErrInsufficientSeats) {
			err = ErrNotEnoughSeats
		}
		return nil, err
	}

	if err = tx.Users().IncrementRidesTaken(ctx, user.ID, seats); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		RideID:      ride.ID,
		SeatsBooked: seats,
		TotalPrice:  float64(seats) * ride.Price,
		Status:      domain.BookingStatusConfirmed,
		CreatedAt:   s.now(),
	}

	if err = tx.Bookings().Create(ctx, booking); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return booking, nil
}

// ListForUser retrieves the user's bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return s.store.Bookings().ListByUser(ctx, userID)
}

func (s *BookingService) invalidateSearchCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearches(ctx); err != nil {
		logrus.WithError(err).Debug("ride search cache invalidation failed")
	}
}
