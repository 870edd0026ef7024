package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/repository"
)

const notificationColumns = `id, user_id, sender_id, message, type, is_read, ride_id, created_at`

// NotificationRepository is a PostgreSQL implementation of
// repository.NotificationRepository.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// NewNotificationRepositoryWithTx creates a notification repository using a transaction.
func NewNotificationRepositoryWithTx(tx *sql.Tx) *NotificationRepository {
	return &NotificationRepository{q: tx}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, sender_id, message, type, is_read, ride_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var senderID sql.NullString
	if n.SenderID != "" {
		senderID = sql.NullString{String: n.SenderID, Valid: true}
	}

	var rideID sql.NullString
	if n.RideID != "" {
		rideID = sql.NullString{String: n.RideID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		senderID,
		n.Message,
		n.Type,
		n.Read,
		rideID,
		n.CreatedAt,
	)

	return err
}

// GetByID retrieves a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// ListByUser retrieves a user's notifications, unread first, newest first
// within each read state.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY is_read ASC, created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead sets the read flag on one notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkAllRead sets the read flag on every unread notification of the user.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`

	result, err := r.q.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rowsAffected), nil
}

// DeleteByUser removes all notifications where the user is recipient or sender.
func (r *NotificationRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1 OR sender_id = $1`, userID)
	return err
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var n domain.Notification
	var senderID, rideID sql.NullString

	err := s.Scan(
		&n.ID,
		&n.UserID,
		&senderID,
		&n.Message,
		&n.Type,
		&n.Read,
		&rideID,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if senderID.Valid {
		n.SenderID = senderID.String
	}
	if rideID.Valid {
		n.RideID = rideID.String
	}

	return &n, nil
}
