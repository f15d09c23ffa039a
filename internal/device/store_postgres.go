package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

const Schema = `
CREATE TABLE IF NOT EXISTS devices (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	location_id UUID,
	secret_hash TEXT NOT NULL,
	active      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL
);
`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure device schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, device *Device) error {
	query := `
		INSERT INTO devices (id, name, location_id, secret_hash, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			location_id = EXCLUDED.location_id,
			secret_hash = EXCLUDED.secret_hash,
			active = EXCLUDED.active
	`
	var locationID any
	if device.LocationID != nil {
		locationID = uuid.UUID(*device.LocationID)
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(device.ID), device.Name, locationID,
		device.SecretHash, device.Active, device.CreatedAt)
	if err != nil {
		return fmt.Errorf("save device: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.DeviceID) (*Device, error) {
	query := `
		SELECT id, name, location_id, secret_hash, active, created_at
		FROM devices WHERE id = $1
	`
	var (
		device        Device
		rawID         uuid.UUID
		rawLocationID uuid.NullUUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(id)).Scan(
		&rawID, &device.Name, &rawLocationID, &device.SecretHash,
		&device.Active, &device.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "device not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	device.ID = domain.DeviceID(rawID)
	if rawLocationID.Valid {
		lid := domain.LocationID(rawLocationID.UUID)
		device.LocationID = &lid
	}
	return &device, nil
}
