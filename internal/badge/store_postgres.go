package badge

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
CREATE TABLE IF NOT EXISTS badge_attachments (
	id         UUID PRIMARY KEY,
	visit_id   UUID NOT NULL,
	name       TEXT NOT NULL,
	mime_type  TEXT NOT NULL,
	content    BYTEA NOT NULL,
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
		return fmt.Errorf("ensure badge schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, attachment *Attachment) error {
	query := `
		INSERT INTO badge_attachments (id, visit_id, name, mime_type, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			mime_type = EXCLUDED.mime_type,
			content = EXCLUDED.content
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(attachment.ID), uuid.UUID(attachment.VisitID),
		attachment.Name, attachment.MIMEType, attachment.Content, attachment.CreatedAt)
	if err != nil {
		return fmt.Errorf("save attachment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.AttachmentID) (*Attachment, error) {
	query := `
		SELECT id, visit_id, name, mime_type, content, created_at
		FROM badge_attachments WHERE id = $1
	`
	var (
		attachment        Attachment
		rawID, rawVisitID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(id)).Scan(
		&rawID, &rawVisitID, &attachment.Name, &attachment.MIMEType,
		&attachment.Content, &attachment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "attachment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	attachment.ID = domain.AttachmentID(rawID)
	attachment.VisitID = domain.VisitID(rawVisitID)
	return &attachment, nil
}
