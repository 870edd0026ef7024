package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore caches ride search results in Redis. Entries are short-lived;
// posting or booking a ride flushes the whole search namespace so stale
// seat counts never outlive the TTL.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// SearchCacheTTL bounds how stale a cached result set can get.
const SearchCacheTTL = 10 * time.Second

const searchCachePrefix = "cache:search:"

// CachedRide is the cached projection of a searchable ride. It carries every
// field the ride response serves, so a cache hit answers exactly like the
// database would.
type CachedRide struct {
	ID            string    `json:"id"`
	CreatorID     string    `json:"creator_id"`
	StartLocation string    `json:"start_location"`
	EndLocation   string    `json:"end_location"`
	Price         float64   `json:"price"`
	Seats         int       `json:"seats"`
	SeatsPosted   int       `json:"seats_posted"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SearchKey builds the cache key for one viewer's filtered search.
func SearchKey(viewerID, from, to string) string {
	return searchCachePrefix + viewerID + ":" + strings.ToLower(from) + ":" + strings.ToLower(to)
}

// GetSearch retrieves a cached result set. A nil slice with nil error is a
// cache miss.
func (s *CacheStore) GetSearch(ctx context.Context, key string) ([]CachedRide, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var rides []CachedRide
	if err := json.Unmarshal(data, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// SetSearch stores a result set.
func (s *CacheStore) SetSearch(ctx context.Context, key string, rides []CachedRide) error {
	data, err := json.Marshal(rides)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, SearchCacheTTL).Err()
}

// InvalidateSearches drops every cached search result set.
func (s *CacheStore) InvalidateSearches(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, searchCachePrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
