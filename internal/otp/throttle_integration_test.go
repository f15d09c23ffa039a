//go:build integration

package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/pkg/testutil/containers"
)

func TestThrottle(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	t.Run("caps sends per phone", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		throttle := NewThrottle(rc.Client, 3, time.Minute)

		for i := 0; i < 3; i++ {
			ok, err := throttle.Allow(ctx, "9876543210")
			require.NoError(t, err)
			assert.True(t, ok, "send %d should be allowed", i+1)
		}

		ok, err := throttle.Allow(ctx, "9876543210")
		require.NoError(t, err)
		assert.False(t, ok, "fourth send should be throttled")
	})

	t.Run("phones are counted independently", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		throttle := NewThrottle(rc.Client, 1, time.Minute)

		ok, err := throttle.Allow(ctx, "9000000001")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = throttle.Allow(ctx, "9000000002")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		throttle := NewThrottle(rc.Client, 1, time.Second)

		ok, err := throttle.Allow(ctx, "9876543210")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = throttle.Allow(ctx, "9876543210")
		require.NoError(t, err)
		assert.False(t, ok)

		time.Sleep(1500 * time.Millisecond)

		ok, err = throttle.Allow(ctx, "9876543210")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
