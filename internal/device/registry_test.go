package device

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewInMemoryStore())

	t.Run("register and authenticate", func(t *testing.T) {
		device, secret, err := registry.Register(ctx, "lobby-kiosk-1", nil)
		require.NoError(t, err)
		require.NotEmpty(t, secret)
		assert.NotEqual(t, secret, device.SecretHash, "plaintext secret must not be stored")

		got, err := registry.Authenticate(ctx, device.ID, secret)
		require.NoError(t, err)
		assert.Equal(t, device.ID, got.ID)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		device, _, err := registry.Register(ctx, "lobby-kiosk-2", nil)
		require.NoError(t, err)

		_, err = registry.Authenticate(ctx, device.ID, "wrong")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown device looks like a bad secret", func(t *testing.T) {
		_, err := registry.Authenticate(ctx, domain.DeviceID(uuid.New()), "whatever")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("deactivated device is rejected", func(t *testing.T) {
		device, secret, err := registry.Register(ctx, "lobby-kiosk-3", nil)
		require.NoError(t, err)
		require.NoError(t, registry.Deactivate(ctx, device.ID))

		_, err = registry.Authenticate(ctx, device.ID, secret)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("empty name is invalid", func(t *testing.T) {
		_, _, err := registry.Register(ctx, "", nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
