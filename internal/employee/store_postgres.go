package employee

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
CREATE TABLE IF NOT EXISTS employees (
	id         UUID PRIMARY KEY,
	company_id UUID NOT NULL,
	user_id    UUID,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
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
		return fmt.Errorf("ensure employee schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.EmployeeID) (*Employee, error) {
	query := `
		SELECT id, company_id, user_id, name, email, phone, created_at
		FROM employees WHERE id = $1
	`
	emp, err := scanEmployee(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Employee, error) {
	query := `
		SELECT id, company_id, user_id, name, email, phone, created_at
		FROM employees ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []*Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employees rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*Employee, error) {
	var (
		emp                 Employee
		rawID, rawCompanyID uuid.UUID
		rawUserID           uuid.NullUUID
	)
	err := row.Scan(&rawID, &rawCompanyID, &rawUserID, &emp.Name, &emp.Email, &emp.Phone, &emp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "employee not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	emp.ID = domain.EmployeeID(rawID)
	emp.CompanyID = domain.CompanyID(rawCompanyID)
	if rawUserID.Valid {
		uid := domain.UserID(rawUserID.UUID)
		emp.UserID = &uid
	}
	return &emp, nil
}
