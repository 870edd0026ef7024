package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/redis"
	"tripbuddy/internal/repository"
)

// NotificationService records domain events durably and pushes them to the
// recipient's live channel on a best-effort basis.
type NotificationService struct {
	store repository.Store
	push  redis.PublisherInterface
}

// NewNotificationService creates a new NotificationService. push may be nil,
// in which case events are stored but never pushed live.
func NewNotificationService(store repository.Store, push redis.PublisherInterface) *NotificationService {
	return &NotificationService{store: store, push: push}
}

// NotifyRequest describes the event to record.
type NotifyRequest struct {
	RecipientID string
	SenderID    string
	Message     string
	Type        domain.NotificationType
	RideID      string
}

// Notify inserts the notification row, then publishes its payload to the
// recipient's channel. The insert is authoritative; the publish is
// fire-and-forget and its failure is only logged.
func (s *NotificationService) Notify(ctx context.Context, req NotifyRequest) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    req.RecipientID,
		SenderID:  req.SenderID,
		Message:   req.Message,
		Type:      req.Type,
		Read:      false,
		RideID:    req.RideID,
		CreatedAt: time.Now(),
	}

	if err := s.store.Notifications().Create(ctx, n); err != nil {
		return nil, err
	}

	if s.push != nil {
		if err := s.push.Publish(ctx, n.UserID, n.Payload()); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"notification_id": n.ID,
				"recipient":       n.UserID,
				"type":            n.Type,
			}).Warn("live push failed, notification remains available in the feed")
		}
	}

	return n, nil
}

// List returns the user's notifications, unread first, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return s.store.Notifications().ListByUser(ctx, userID)
}

// MarkRead sets the read flag on one of the caller's notifications. Calling
// it again on an already-read notification succeeds and changes nothing.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	n, err := s.store.Notifications().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if n.UserID != userID {
		return ErrNotYourNotification
	}

	if n.Read {
		return nil
	}

	return s.store.Notifications().MarkRead(ctx, id)
}

// MarkAllRead sets every unread notification of the user to read. Returns
// how many were updated; zero is a valid no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.store.Notifications().MarkAllRead(ctx, userID)
}

// notifyBestEffort records an event without letting a storage failure reach
// the caller's already-committed primary operation.
func (s *NotificationService) notifyBestEffort(ctx context.Context, req NotifyRequest) {
	if _, err := s.Notify(ctx, req); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).WithFields(logrus.Fields{
			"recipient": req.RecipientID,
			"type":      req.Type,
		}).Warn("failed to record notification")
	}
}
