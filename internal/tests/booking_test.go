package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/repository"
	"tripbuddy/internal/service"
)

// ──────────────────────────────────────────────
// BOOKING FLOW
// ──────────────────────────────────────────────

func seedBookingFixture(store *MockStore) (rider, provider *domain.User, ride *domain.Ride) {
	provider = &domain.User{
		ID:            "provider-1",
		Username:      "anna",
		Email:         "anna@example.com",
		CanOfferRides: true,
		Verified:      true,
	}
	rider = &domain.User{
		ID:           "rider-1",
		Username:     "ben",
		Email:        "ben@example.com",
		CanFindRides: true,
		Verified:     true,
	}
	ride = &domain.Ride{
		ID:            "ride-1",
		CreatorID:     provider.ID,
		StartLocation: "Berlin",
		EndLocation:   "Hamburg",
		Price:         15,
		Seats:         3,
		SeatsPosted:   3,
		Date:          time.Now().Add(48 * time.Hour),
		Status:        domain.RideStatusActive,
	}
	store.UserRepo.AddUser(provider)
	store.UserRepo.AddUser(rider)
	store.RideRepo.AddRide(ride)
	return rider, provider, ride
}

func newBookingService(store *MockStore, push *MockPublisher) *service.BookingService {
	notifier := service.NewNotificationService(store, push)
	return service.NewBookingService(store, NewMockLockStore(), NewMockCacheStore(), notifier)
}

func TestBooking_ValidRequest_Succeeds(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)
	bookingService := newBookingService(store, NewMockPublisher())

	booking, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 2)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if booking.SeatsBooked != 2 {
		t.Errorf("expected 2 seats booked, got %d", booking.SeatsBooked)
	}
	if booking.TotalPrice != 30 {
		t.Errorf("expected total price 30, got %v", booking.TotalPrice)
	}
	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected status CONFIRMED, got %s", booking.Status)
	}

	if got := store.RideRepo.GetRide(ride.ID).Seats; got != 1 {
		t.Errorf("expected 1 seat remaining, got %d", got)
	}
	if got := store.UserRepo.GetUser(rider.ID).RidesTaken; got != 2 {
		t.Errorf("expected rides_taken 2, got %d", got)
	}
}

func TestBooking_MoreSeatsThanRemaining_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)
	bookingService := newBookingService(store, NewMockPublisher())

	// First booking takes 2 of 3 seats.
	if _, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 2); err != nil {
		t.Fatalf("setup booking failed: %v", err)
	}

	// A second request for 2 must fail: only 1 seat remains.
	_, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 2)
	if !errors.Is(err, service.ErrNotEnoughSeats) {
		t.Fatalf("expected ErrNotEnoughSeats, got: %v", err)
	}

	// The rejected attempt must leave everything untouched.
	if got := store.RideRepo.GetRide(ride.ID).Seats; got != 1 {
		t.Errorf("expected 1 seat remaining after rejection, got %d", got)
	}
	if got := store.BookingRepo.CountBookings(); got != 1 {
		t.Errorf("expected 1 booking, got %d", got)
	}
	if got := store.UserRepo.GetUser(rider.ID).RidesTaken; got != 2 {
		t.Errorf("expected rides_taken unchanged at 2, got %d", got)
	}
}

func TestBooking_RaceLosesCAS_RollsBackEverything(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)
	bookingService := newBookingService(store, NewMockPublisher())

	// The pre-check read enough seats, but the conditional update loses the
	// race and reports insufficient capacity.
	store.RideRepo.DecrementSeatsError = repository.ErrInsufficientSeats

	_, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 1)
	if !errors.Is(err, service.ErrNotEnoughSeats) {
		t.Fatalf("expected ErrNotEnoughSeats, got: %v", err)
	}

	if int(store.RollbackCallCount) != 1 {
		t.Errorf("expected 1 rollback, got %d", store.RollbackCallCount)
	}
	if got := store.BookingRepo.CountBookings(); got != 0 {
		t.Errorf("expected 0 bookings, got %d", got)
	}
	if got := store.UserRepo.GetUser(rider.ID).RidesTaken; got != 0 {
		t.Errorf("expected rides_taken 0, got %d", got)
	}
}

func TestBooking_CounterFailure_RollsBackSeatDecrement(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)
	store.UserRepo.IncrementError = ErrMockDBFailure
	bookingService := newBookingService(store, NewMockPublisher())

	_, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 2)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	// The seat decrement inside the failed transaction must be undone.
	if got := store.RideRepo.GetRide(ride.ID).Seats; got != 3 {
		t.Errorf("expected all 3 seats restored, got %d", got)
	}
	if got := store.BookingRepo.CountBookings(); got != 0 {
		t.Errorf("expected 0 bookings, got %d", got)
	}
	if int(store.RollbackCallCount) != 1 {
		t.Errorf("expected 1 rollback, got %d", store.RollbackCallCount)
	}
}

func TestBooking_OwnRide_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	_, provider, ride := seedBookingFixture(store)
	// Give the provider the finding capability so only ownership blocks it.
	store.UserRepo.GetUser(provider.ID).CanFindRides = true
	bookingService := newBookingService(store, NewMockPublisher())

	_, err := bookingService.Book(context.Background(), provider.ID, ride.ID, 1)
	if !errors.Is(err, service.ErrOwnRide) {
		t.Fatalf("expected ErrOwnRide, got: %v", err)
	}
}

func TestBooking_WithoutFindingCapability_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)
	store.UserRepo.GetUser(rider.ID).CanFindRides = false
	bookingService := newBookingService(store, NewMockPublisher())

	_, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 1)
	if !errors.Is(err, service.ErrFindingNotActivated) {
		t.Fatalf("expected ErrFindingNotActivated, got: %v", err)
	}
}

func TestBooking_InvalidSeatCounts_Rejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		seats int
	}{
		{"zero seats", 0},
		{"negative seats", -1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := NewMockStore()
			rider, _, ride := seedBookingFixture(store)
			bookingService := newBookingService(store, NewMockPublisher())

			_, err := bookingService.Book(context.Background(), rider.ID, ride.ID, tc.seats)
			if !errors.Is(err, service.ErrInvalidSeats) {
				t.Fatalf("expected ErrInvalidSeats, got: %v", err)
			}
		})
	}
}

func TestBooking_InactiveRide_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)
	store.RideRepo.GetRide(ride.ID).Status = domain.RideStatusCancelled
	bookingService := newBookingService(store, NewMockPublisher())

	_, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 1)
	if !errors.Is(err, service.ErrRideUnavailable) {
		t.Fatalf("expected ErrRideUnavailable, got: %v", err)
	}
}

func TestBooking_LockHeldByAnotherBooking_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)

	locks := NewMockLockStore()
	locks.ForceAcquireFailure = true
	notifier := service.NewNotificationService(store, NewMockPublisher())
	bookingService := service.NewBookingService(store, locks, NewMockCacheStore(), notifier)

	_, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 1)
	if !errors.Is(err, service.ErrRideBusy) {
		t.Fatalf("expected ErrRideBusy, got: %v", err)
	}
	if got := store.BookingRepo.CountBookings(); got != 0 {
		t.Errorf("expected 0 bookings, got %d", got)
	}
}

func TestBooking_LockStoreDown_FallsBackToDatabaseGuard(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)

	locks := NewMockLockStore()
	locks.AcquireError = errors.New("redis: connection refused")
	notifier := service.NewNotificationService(store, NewMockPublisher())
	bookingService := service.NewBookingService(store, locks, NewMockCacheStore(), notifier)

	// A lock-store outage must not block bookings.
	booking, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if booking == nil {
		t.Fatal("expected a booking")
	}
}

func TestBooking_NotifiesRideOwnerAfterCommit(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, provider, ride := seedBookingFixture(store)
	push := NewMockPublisher()
	bookingService := newBookingService(store, push)

	if _, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 2); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if got := store.NotificationRepo.CountForUser(provider.ID); got != 1 {
		t.Fatalf("expected 1 notification for the owner, got %d", got)
	}
	msgs := push.MessagesFor(provider.ID)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 push for the owner, got %d", len(msgs))
	}
	if msgs[0].Payload["type"] != string(domain.NotificationRideBooked) {
		t.Errorf("expected type ride_booked, got %v", msgs[0].Payload["type"])
	}
	if msgs[0].Payload["sender_id"] != rider.ID {
		t.Errorf("expected sender %s, got %v", rider.ID, msgs[0].Payload["sender_id"])
	}
}

func TestBooking_NotificationFailure_DoesNotUndoBooking(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)
	bookingService := newBookingService(store, NewMockPublisher())
	store.NotificationRepo.CreateError = ErrMockDBFailure

	booking, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if booking == nil {
		t.Fatal("expected a booking despite notification failure")
	}
	if got := store.RideRepo.GetRide(ride.ID).Seats; got != 2 {
		t.Errorf("expected 2 seats remaining, got %d", got)
	}
}

func TestBooking_RidesTakenAccumulatesAcrossBookings(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, ride := seedBookingFixture(store)
	bookingService := newBookingService(store, NewMockPublisher())

	if _, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 1); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 2); err != nil {
		t.Fatalf("second booking failed: %v", err)
	}

	if got := store.UserRepo.GetUser(rider.ID).RidesTaken; got != 3 {
		t.Errorf("expected rides_taken 3, got %d", got)
	}
	if got := store.RideRepo.GetRide(ride.ID).Seats; got != 0 {
		t.Errorf("expected 0 seats remaining, got %d", got)
	}

	// The ride is fully booked now.
	_, err := bookingService.Book(context.Background(), rider.ID, ride.ID, 1)
	if !errors.Is(err, service.ErrNotEnoughSeats) {
		t.Fatalf("expected ErrNotEnoughSeats, got: %v", err)
	}
}

func TestBooking_ListForUser_NewestFirst(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	rider, _, _ := seedBookingFixture(store)
	base := time.Now()
	store.BookingRepo.Create(context.Background(), &domain.Booking{
		ID: "b-old", UserID: rider.ID, RideID: "ride-1", SeatsBooked: 1, CreatedAt: base.Add(-time.Hour),
	})
	store.BookingRepo.Create(context.Background(), &domain.Booking{
		ID: "b-new", UserID: rider.ID, RideID: "ride-1", SeatsBooked: 1, CreatedAt: base,
	})
	store.BookingRepo.Create(context.Background(), &domain.Booking{
		ID: "b-other", UserID: "someone-else", RideID: "ride-1", SeatsBooked: 1, CreatedAt: base,
	})

	bookingService := newBookingService(store, NewMockPublisher())
	bookings, err := bookingService.ListForUser(context.Background(), rider.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}
	if bookings[0].ID != "b-new" || bookings[1].ID != "b-old" {
		t.Errorf("expected newest first, got %s then %s", bookings[0].ID, bookings[1].ID)
	}
}
