package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
)

// Booking records one user reserving seats on one ride. TotalPrice is fixed
// at booking time (seats booked times the ride price then).
type Booking struct {
	ID          string
	UserID      string
	RideID      string
	SeatsBooked int
	TotalPrice  float64
	Status      BookingStatus
	CreatedAt   time.Time
}
