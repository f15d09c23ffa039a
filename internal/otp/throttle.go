package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle caps how many codes one phone number can request inside a rolling
// window. It exists to keep the SMS gateway bill bounded, not as a security
// control; the verify path is unthrottled.
type Throttle struct {
	client   redis.Cmdable
	maxSends int
	window   time.Duration
}

// NewThrottle builds a send throttle over Redis. A nil client disables
// throttling entirely, which is the local-development mode.
func NewThrottle(client redis.Cmdable, maxSends int, window time.Duration) *Throttle {
	return &Throttle{client: client, maxSends: maxSends, window: window}
}

// Allow records one send attempt for the phone and reports whether it may
// proceed. The window starts at the first send and is not sliding.
func (t *Throttle) Allow(ctx context.Context, phone string) (bool, error) {
	if t.client == nil {
		return true, nil
	}

	key := "otp:sends:" + phone
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("throttle incr: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return false, fmt.Errorf("throttle expire: %w", err)
		}
	}
	return count <= int64(t.maxSends), nil
}
