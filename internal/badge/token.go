package badge

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"visitgate/internal/platform/config"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

// DownloadClaims binds a download token to one attachment.
type DownloadClaims struct {
	AttachmentID string `json:"attachment_id"`
	jwt.RegisteredClaims
}

// TokenService signs and validates the badge download tokens embedded in
// the SMS and email links. Tokens expire; the pass itself does not.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenService(cfg config.BadgeConfig) *TokenService {
	return &TokenService{
		signingKey: []byte(cfg.SigningKey),
		ttl:        cfg.TokenTTL,
	}
}

// Sign creates a download token for the attachment.
func (s *TokenService) Sign(attachmentID domain.AttachmentID, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, DownloadClaims{
		AttachmentID: attachmentID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate checks a download token and returns the attachment it grants.
func (s *TokenService) Validate(tokenString string) (domain.AttachmentID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &DownloadClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.AttachmentID{}, dErrors.New(dErrors.CodeUnauthorized, "download link has expired")
		}
		return domain.AttachmentID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid download token")
	}

	claims, ok := parsed.Claims.(*DownloadClaims)
	if !ok || !parsed.Valid {
		return domain.AttachmentID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid download token")
	}
	return domain.ParseAttachmentID(claims.AttachmentID)
}
