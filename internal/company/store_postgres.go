package company

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
CREATE TABLE IF NOT EXISTS companies (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	nda_content TEXT NOT NULL DEFAULT '',
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
		return fmt.Errorf("ensure company schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.CompanyID) (*Company, error) {
	query := `SELECT id, name, nda_content, created_at FROM companies WHERE id = $1`
	var (
		company Company
		rawID   uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(id)).
		Scan(&rawID, &company.Name, &company.NDAContent, &company.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "company not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	company.ID = domain.CompanyID(rawID)
	return &company, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Company, error) {
	query := `SELECT id, name, nda_content, created_at FROM companies ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []*Company
	for rows.Next() {
		var (
			company Company
			rawID   uuid.UUID
		)
		if err := rows.Scan(&rawID, &company.Name, &company.NDAContent, &company.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		company.ID = domain.CompanyID(rawID)
		out = append(out, &company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list companies rows: %w", err)
	}
	return out, nil
}
