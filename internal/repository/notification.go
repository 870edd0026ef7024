package repository

import (
	"context"

	"tripbuddy/internal/domain"
)

// NotificationRepository defines the persistence operations for notifications.
type NotificationRepository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *domain.Notification) error

	// GetByID retrieves a notification by ID.
	GetByID(ctx context.Context, id string) (*domain.Notification, error)

	// ListByUser retrieves a user's notifications ordered unread first,
	// then newest first within each read state.
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)

	// MarkRead sets the read flag on one notification. Idempotent.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead sets the read flag on every unread notification of the
	// user and returns how many rows changed.
	MarkAllRead(ctx context.Context, userID string) (int, error)

	// DeleteByUser removes all notifications where the user is recipient
	// or sender.
	DeleteByUser(ctx context.Context, userID string) error
}
