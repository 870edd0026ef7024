package domain

import "time"

// RideStatus represents the current status of a ride offer.
type RideStatus string

const (
	RideStatusActive    RideStatus = "ACTIVE"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// Ride represents an offer of transportation capacity posted by a provider.
type Ride struct {
	ID            string
	CreatorID     string
	StartLocation string
	EndLocation   string
	Price         float64

	// Seats is the remaining bookable capacity. It starts at SeatsPosted
	// and only decreases, never below zero.
	Seats       int
	SeatsPosted int

	Date        time.Time
	Time        string
	Description string
	Status      RideStatus
	CreatedAt   time.Time
}
