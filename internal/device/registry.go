package device

import (
	"context"

	"github.com/google/uuid"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/requestcontext"
)

// Registry issues and authenticates kiosk devices.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Register creates a new active device and returns it with the plaintext
// secret. The secret is shown exactly once; only its hash is stored.
func (r *Registry) Register(ctx context.Context, name string, locationID *domain.LocationID) (*Device, string, error) {
	if name == "" {
		return nil, "", dErrors.New(dErrors.CodeInvalidInput, "device name is required")
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := HashSecret(secret)
	if err != nil {
		return nil, "", err
	}

	device := &Device{
		ID:         domain.DeviceID(uuid.New()),
		Name:       name,
		LocationID: locationID,
		SecretHash: hash,
		Active:     true,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := r.store.Save(ctx, device); err != nil {
		return nil, "", err
	}
	return device, secret, nil
}

// Authenticate verifies a device ID and secret pair. Inactive devices are
// rejected with the same code as a bad secret so probes learn nothing.
func (r *Registry) Authenticate(ctx context.Context, id domain.DeviceID, secret string) (*Device, error) {
	device, err := r.store.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid device secret")
		}
		return nil, err
	}
	if !device.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid device secret")
	}
	if err := VerifySecret(secret, device.SecretHash); err != nil {
		return nil, err
	}
	return device, nil
}

// Deactivate disables a device without deleting its audit history.
func (r *Registry) Deactivate(ctx context.Context, id domain.DeviceID) error {
	device, err := r.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	device.Active = false
	return r.store.Save(ctx, device)
}
