package domain

import "time"

// NotificationType tags the event a notification reports on.
type NotificationType string

const (
	NotificationLoginSuccess      NotificationType = "login_success"
	NotificationRidePosted        NotificationType = "ride_posted"
	NotificationRideBooked        NotificationType = "ride_booked"
	NotificationContactSubmission NotificationType = "contact_submission"
	NotificationAccountVerified   NotificationType = "account_verified"
)

// Notification is a durably stored message to one user. Immutable once
// created except for the read flag, which only moves unread -> read.
type Notification struct {
	ID        string
	UserID    string
	SenderID  string
	Message   string
	Type      NotificationType
	Read      bool
	RideID    string
	CreatedAt time.Time
}

// Payload returns the field set pushed over the live channel. Timestamps are
// RFC 3339 UTC with a 'Z' suffix.
func (n *Notification) Payload() map[string]any {
	return map[string]any{
		"id":        n.ID,
		"user_id":   n.UserID,
		"sender_id": n.SenderID,
		"message":   n.Message,
		"type":      string(n.Type),
		"is_read":   n.Read,
		"timestamp": n.CreatedAt.UTC().Format(time.RFC3339),
		"ride_id":   n.RideID,
	}
}
