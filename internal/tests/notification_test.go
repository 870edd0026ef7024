package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/service"
)

// ──────────────────────────────────────────────
// NOTIFICATION EMISSION
// ──────────────────────────────────────────────

func TestNotify_StoresRowAndPushesLive(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	push := NewMockPublisher()
	notificationService := service.NewNotificationService(store, push)

	n, err := notificationService.Notify(context.Background(), service.NotifyRequest{
		RecipientID: "user-1",
		SenderID:    "user-2",
		Message:     "hello",
		Type:        domain.NotificationRideBooked,
		RideID:      "ride-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if n.Read {
		t.Error("expected notification to start unread")
	}
	if store.NotificationRepo.GetNotification(n.ID) == nil {
		t.Fatal("expected the notification row to be stored")
	}

	msgs := push.MessagesFor("user-1")
	if len(msgs) != 1 {
		t.Fatalf("expected 1 push, got %d", len(msgs))
	}

	payload := msgs[0].Payload
	if payload["id"] != n.ID {
		t.Errorf("expected payload id %s, got %v", n.ID, payload["id"])
	}
	if payload["sender_id"] != "user-2" {
		t.Errorf("expected sender_id user-2, got %v", payload["sender_id"])
	}
	if payload["is_read"] != false {
		t.Errorf("expected is_read false, got %v", payload["is_read"])
	}

	// Timestamps on the wire are RFC 3339 in UTC.
	ts, ok := payload["timestamp"].(string)
	if !ok {
		t.Fatalf("expected a string timestamp, got %T", payload["timestamp"])
	}
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t.Fatalf("timestamp %q does not parse as RFC 3339: %v", ts, err)
	}
	if parsed.Location() != time.UTC {
		t.Errorf("expected a UTC timestamp, got %s", ts)
	}
}

func TestNotify_PushFailure_RowStillStored(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	push := NewMockPublisher()
	push.PublishError = ErrMockPushDown
	notificationService := service.NewNotificationService(store, push)

	n, err := notificationService.Notify(context.Background(), service.NotifyRequest{
		RecipientID: "user-1",
		Message:     "hello",
		Type:        domain.NotificationLoginSuccess,
	})
	if err != nil {
		t.Fatalf("push failure must not surface, got: %v", err)
	}
	if store.NotificationRepo.GetNotification(n.ID) == nil {
		t.Error("expected the row to be stored despite the failed push")
	}
}

func TestNotify_StoreFailure_Surfaces(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	store.NotificationRepo.CreateError = ErrMockDBFailure
	push := NewMockPublisher()
	notificationService := service.NewNotificationService(store, push)

	_, err := notificationService.Notify(context.Background(), service.NotifyRequest{
		RecipientID: "user-1",
		Message:     "hello",
		Type:        domain.NotificationLoginSuccess,
	})
	if !errors.Is(err, ErrMockDBFailure) {
		t.Fatalf("expected the storage error, got: %v", err)
	}
	// Nothing may be pushed for a notification that was never stored.
	if got := push.CountMessages(); got != 0 {
		t.Errorf("expected 0 pushes, got %d", got)
	}
}

// ──────────────────────────────────────────────
// FEED ORDERING AND READ STATE
// ──────────────────────────────────────────────

func seedFeed(store *MockStore) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.NotificationRepo.AddNotification(&domain.Notification{
		ID: "read-new", UserID: "user-1", Read: true, CreatedAt: base.Add(3 * time.Hour),
	})
	store.NotificationRepo.AddNotification(&domain.Notification{
		ID: "unread-old", UserID: "user-1", CreatedAt: base,
	})
	store.NotificationRepo.AddNotification(&domain.Notification{
		ID: "unread-new", UserID: "user-1", CreatedAt: base.Add(2 * time.Hour),
	})
	store.NotificationRepo.AddNotification(&domain.Notification{
		ID: "other-user", UserID: "user-2", CreatedAt: base.Add(time.Hour),
	})
}

func TestList_UnreadFirstThenNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	seedFeed(store)
	notificationService := service.NewNotificationService(store, NewMockPublisher())

	feed, err := notificationService.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	want := []string{"unread-new", "unread-old", "read-new"}
	if len(feed) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(feed))
	}
	for i, id := range want {
		if feed[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, feed[i].ID)
		}
	}
}

func TestMarkRead_OwnNotification_Succeeds(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	seedFeed(store)
	notificationService := service.NewNotificationService(store, NewMockPublisher())

	if err := notificationService.MarkRead(context.Background(), "unread-old", "user-1"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !store.NotificationRepo.GetNotification("unread-old").Read {
		t.Error("expected the notification to be read")
	}

	// Marking again is a no-op, not an error.
	if err := notificationService.MarkRead(context.Background(), "unread-old", "user-1"); err != nil {
		t.Fatalf("expected idempotent success, got: %v", err)
	}
}

func TestMarkRead_ForeignNotification_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	seedFeed(store)
	notificationService := service.NewNotificationService(store, NewMockPublisher())

	err := notificationService.MarkRead(context.Background(), "other-user", "user-1")
	if !errors.Is(err, service.ErrNotYourNotification) {
		t.Fatalf("expected ErrNotYourNotification, got: %v", err)
	}
	if store.NotificationRepo.GetNotification("other-user").Read {
		t.Error("expected the foreign notification to stay unread")
	}
}

func TestMarkAllRead_CountsOnlyUnread(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	seedFeed(store)
	notificationService := service.NewNotificationService(store, NewMockPublisher())

	count, err := notificationService.MarkAllRead(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 marked, got %d", count)
	}

	// The other user's feed is untouched.
	if store.NotificationRepo.GetNotification("other-user").Read {
		t.Error("expected the other user's notification to stay unread")
	}

	// Running it again finds nothing left to mark.
	count, err = notificationService.MarkAllRead(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 marked on second run, got %d", count)
	}
}
