package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tripbuddy/internal/domain"
)

// ContactService relays contact-form submissions to the site operators.
type ContactService struct {
	mailer     Mailer
	notifier   *NotificationService
	adminEmail string
}

// NewContactService creates a new ContactService.
func NewContactService(mailer Mailer, notifier *NotificationService, adminEmail string) *ContactService {
	return &ContactService{
		mailer:     mailer,
		notifier:   notifier,
		adminEmail: adminEmail,
	}
}

// Submit relays the message by mail and records a contact_submission
// notification for the submitting user. Mail failure degrades to a logged
// warning; the submission is still recorded.
func (s *ContactService) Submit(ctx context.Context, user *domain.User, subject, message string) error {
	if message == "" {
		return ErrInvalidMessage
	}
	if subject == "" {
		subject = "Contact form submission"
	}

	body := fmt.Sprintf("From: %s <%s>\n\n%s\n", user.Username, user.Email, message)
	if err := s.mailer.Send(ctx, s.adminEmail, subject, body); err != nil {
		logrus.WithError(err).WithField("user", user.ID).Warn("contact mail relay failed")
	}

	s.notifier.notifyBestEffort(ctx, NotifyRequest{
		RecipientID: user.ID,
		Message:     "Thanks for getting in touch. We received your message and will reply by email.",
		Type:        domain.NotificationContactSubmission,
	})

	return nil
}
