package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// UserChannel returns the pub/sub channel carrying live notifications for
// one user.
func UserChannel(userID string) string {
	return "notify:user:" + userID
}

// UserChannelPattern matches every per-user notification channel.
const UserChannelPattern = "notify:user:*"

// PushStore publishes notification payloads to per-user Redis channels.
// Delivery is fire-and-forget: subscribers that are not connected simply
// miss the message and fall back to the durable notification listing.
type PushStore struct {
	client *redis.Client
}

// NewPushStore creates a new PushStore.
func NewPushStore(client *redis.Client) *PushStore {
	return &PushStore{client: client}
}

// Publish sends the payload to the user's channel.
func (s *PushStore) Publish(ctx context.Context, userID string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, UserChannel(userID), data).Err()
}

// Subscribe opens a pattern subscription over every per-user channel. The
// caller owns the returned PubSub and must Close it.
func (s *PushStore) Subscribe(ctx context.Context) *redis.PubSub {
	return s.client.PSubscribe(ctx, UserChannelPattern)
}
