package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleDisabledWithoutRedis(t *testing.T) {
	throttle := NewThrottle(nil, 1, time.Minute)
	for i := 0; i < 10; i++ {
		ok, err := throttle.Allow(context.Background(), "9876543210")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
