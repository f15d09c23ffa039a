// Package device holds the registry of kiosk scanners allowed to verify
// badge QR codes.
package device

import (
	"time"

	"visitgate/pkg/domain"
)

// Device is one registered kiosk. The secret is issued once at registration
// and only its bcrypt hash is stored.
type Device struct {
	ID         domain.DeviceID
	Name       string
	LocationID *domain.LocationID
	SecretHash string
	Active     bool
	CreatedAt  time.Time
}
