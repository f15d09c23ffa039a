package device

import (
	"context"

	"visitgate/pkg/domain"
)

type Store interface {
	Save(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, id domain.DeviceID) (*Device, error)
}
