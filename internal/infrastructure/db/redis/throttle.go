package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerificationThrottle limits phone verification requests per user.
// Key format: verify:phone:<user_id>
type VerificationThrottle struct {
	client redis.Cmdable
}

// NewVerificationThrottle creates a VerificationThrottle wrapping the given Redis client.
func NewVerificationThrottle(client redis.Cmdable) *VerificationThrottle {
	return &VerificationThrottle{client: client}
}

// Acquire claims the user's slot for window. It reports false when the slot
// is already held.
func (t *VerificationThrottle) Acquire(ctx context.Context, userID string, window time.Duration) (bool, error) {
	ok, err := t.client.SetNX(ctx, key(userID), time.Now().UTC().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle acquire: %w", err)
	}
	return ok, nil
}

// Release frees the slot early, e.g. when delivery failed.
func (t *VerificationThrottle) Release(ctx context.Context, userID string) error {
	if err := t.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("throttle release: %w", err)
	}
	return nil
}

func key(userID string) string {
	return "verify:phone:" + userID
}
