package service

import "errors"

var (
	// ErrInvalidUsername is returned when the username is missing.
	ErrInvalidUsername = errors.New("username is required")

	// ErrInvalidEmail is returned when the email is missing or malformed.
	ErrInvalidEmail = errors.New("a valid email address is required")

	// ErrInvalidPassword is returned when the password is missing.
	ErrInvalidPassword = errors.New("password is required")

	// ErrPasswordMismatch is returned when the password confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidRole is returned when the registration role is unknown.
	ErrInvalidRole = errors.New("role must be renter, provider or both")

	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username already exists, please choose a different one")

	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrPhoneTaken is returned when the phone number is already registered.
	ErrPhoneTaken = errors.New("phone number already registered")

	// ErrInvalidCredentials is returned for an unknown user or wrong
	// password. One error for both so logins cannot probe for accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotVerified is returned when an unverified account tries to log in.
	ErrNotVerified = errors.New("account not verified, please check your email for the verification link")

	// ErrInvalidToken is returned for any verification link that does not
	// match an outstanding token. Deliberately generic.
	ErrInvalidToken = errors.New("invalid or unknown verification link")

	// ErrTokenExpired is returned when the verification window has passed.
	// The token is burned; the user must request a fresh one.
	ErrTokenExpired = errors.New("verification link expired, please request a new one")

	// ErrOfferingAlreadyActive is returned when ride offering is already enabled.
	ErrOfferingAlreadyActive = errors.New("ride offering already activated")

	// ErrFindingAlreadyActive is returned when ride finding is already enabled.
	ErrFindingAlreadyActive = errors.New("ride finding already activated")

	// ErrOfferingNotActivated is returned when a user without the offering
	// capability tries to post a ride.
	ErrOfferingNotActivated = errors.New("activate ride offering before posting rides")

	// ErrFindingNotActivated is returned when a user without the finding
	// capability tries to search or book rides.
	ErrFindingNotActivated = errors.New("activate ride finding before booking rides")

	// ErrInvalidLocation is returned when a start or end location is missing.
	ErrInvalidLocation = errors.New("start and end locations are required")

	// ErrInvalidPrice is returned when the price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrInvalidSeats is returned when the seat count is not a positive integer.
	ErrInvalidSeats = errors.New("seats must be a positive number")

	// ErrInvalidDate is returned when the ride date does not parse.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

	// ErrOwnRide is returned when a user tries to book their own ride.
	ErrOwnRide = errors.New("you cannot book your own ride")

	// ErrRideUnavailable is returned when the ride is not active.
	ErrRideUnavailable = errors.New("ride is no longer available")

	// ErrNotEnoughSeats is returned when the requested seats exceed the
	// ride's remaining capacity.
	ErrNotEnoughSeats = errors.New("not enough seats available")

	// ErrRideBusy is returned when another booking holds the ride lock.
	ErrRideBusy = errors.New("ride is being booked by someone else, try again")

	// ErrNotYourNotification is returned when a user acts on a notification
	// addressed to someone else.
	ErrNotYourNotification = errors.New("notification belongs to another user")

	// ErrInvalidMessage is returned when a contact submission has no body.
	ErrInvalidMessage = errors.New("message is required")
)
