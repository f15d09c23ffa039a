package location

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
CREATE TABLE IF NOT EXISTS locations (
	id                 UUID PRIMARY KEY,
	company_id         UUID NOT NULL,
	name               TEXT NOT NULL,
	nda_enabled        BOOLEAN NOT NULL DEFAULT FALSE,
	nda_required       BOOLEAN NOT NULL DEFAULT FALSE,
	nda_details        TEXT NOT NULL DEFAULT '',
	photo_enabled      BOOLEAN NOT NULL DEFAULT FALSE,
	photo_required     BOOLEAN NOT NULL DEFAULT FALSE,
	questions_enabled  BOOLEAN NOT NULL DEFAULT FALSE,
	questions_required BOOLEAN NOT NULL DEFAULT FALSE,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS location_questions (
	id          UUID PRIMARY KEY,
	location_id UUID NOT NULL REFERENCES locations (id) ON DELETE CASCADE,
	text        TEXT NOT NULL,
	required    BOOLEAN NOT NULL DEFAULT FALSE,
	sequence    INT NOT NULL DEFAULT 0
);
`

const locationColumns = `
	id, company_id, name, nda_enabled, nda_required, nda_details,
	photo_enabled, photo_required, questions_enabled, questions_required,
	created_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure location schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.LocationID) (*Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	return scanLocation(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *PostgresStore) List(ctx context.Context) ([]*Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []*Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListQuestions(ctx context.Context, id domain.LocationID) ([]Question, error) {
	query := `
		SELECT id, location_id, text, required, sequence
		FROM location_questions
		WHERE location_id = $1
		ORDER BY sequence
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var (
			question        Question
			rawID, rawLocID uuid.UUID
		)
		if err := rows.Scan(&rawID, &rawLocID, &question.Text, &question.Required, &question.Sequence); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		question.ID = domain.QuestionID(rawID)
		question.LocationID = domain.LocationID(rawLocID)
		out = append(out, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (*Location, error) {
	var (
		loc                 Location
		rawID, rawCompanyID uuid.UUID
	)
	err := row.Scan(&rawID, &rawCompanyID, &loc.Name,
		&loc.NDA.Enabled, &loc.NDA.Required, &loc.NDADetails,
		&loc.Photo.Enabled, &loc.Photo.Required,
		&loc.Questions.Enabled, &loc.Questions.Required,
		&loc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "location not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan location: %w", err)
	}
	loc.ID = domain.LocationID(rawID)
	loc.CompanyID = domain.CompanyID(rawCompanyID)
	return &loc, nil
}
