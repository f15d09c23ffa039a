package badge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/platform/config"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

func tokenService(ttl time.Duration) *TokenService {
	return NewTokenService(config.BadgeConfig{
		SigningKey: "test-signing-key",
		TokenTTL:   ttl,
	})
}

func TestTokenService(t *testing.T) {
	now := time.Now()

	t.Run("round trip", func(t *testing.T) {
		svc := tokenService(24 * time.Hour)
		attachmentID := domain.NewAttachmentID()

		token, err := svc.Sign(attachmentID, now)
		require.NoError(t, err)

		got, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, attachmentID, got)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		svc := tokenService(time.Minute)
		token, err := svc.Sign(domain.NewAttachmentID(), now.Add(-time.Hour))
		require.NoError(t, err)

		_, err = svc.Validate(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		token, err := tokenService(time.Hour).Sign(domain.NewAttachmentID(), now)
		require.NoError(t, err)

		other := NewTokenService(config.BadgeConfig{SigningKey: "different-key", TokenTTL: time.Hour})
		_, err = other.Validate(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := tokenService(time.Hour).Validate("not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
