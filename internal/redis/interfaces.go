package redis

import (
	"context"
	"time"
)

// CacheStoreInterface defines the interface for the ride search cache.
type CacheStoreInterface interface {
	GetSearch(ctx context.Context, key string) ([]CachedRide, error)
	SetSearch(ctx context.Context, key string, rides []CachedRide) error
	InvalidateSearches(ctx context.Context) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// PublisherInterface defines the interface for the live-push channel.
type PublisherInterface interface {
	Publish(ctx context.Context, userID string, payload map[string]any) error
}

// Ensure concrete types implement interfaces.
var (
	_ CacheStoreInterface = (*CacheStore)(nil)
	_ LockStoreInterface  = (*LockStore)(nil)
	_ PublisherInterface  = (*PushStore)(nil)
)
