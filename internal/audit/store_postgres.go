package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visitgate/pkg/domain"
)

const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	action     TEXT NOT NULL,
	visit_id   UUID,
	phone      TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	client_ip  TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	platform   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_events_visit ON audit_events (visit_id);

CREATE TABLE IF NOT EXISTS audit_outbox (
	id           UUID PRIMARY KEY,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS audit_outbox_unpublished
	ON audit_outbox (created_at) WHERE published_at IS NULL;
`

// outboxPayload is the JSON structure published to Kafka.
type outboxPayload struct {
	ID        string `json:"ID"`
	Action    string `json:"Action"`
	VisitID   string `json:"VisitID,omitempty"`
	Phone     string `json:"Phone,omitempty"`
	Reason    string `json:"Reason,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
	ClientIP  string `json:"ClientIP,omitempty"`
	UserAgent string `json:"UserAgent,omitempty"`
	Platform  string `json:"Platform,omitempty"`
	Timestamp string `json:"Timestamp"`
}

// PostgresStore implements Store using the transactional outbox pattern:
// each event lands in audit_events for querying and in audit_outbox for the
// worker to ship to Kafka.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	eventID := uuid.New()

	payload := outboxPayload{
		ID:        eventID.String(),
		Action:    event.Action,
		Phone:     event.Phone,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		UserAgent: event.UserAgent,
		Platform:  event.Platform,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
	}
	var visitID any
	if event.VisitID != nil {
		payload.VisitID = event.VisitID.String()
		visitID = uuid.UUID(*event.VisitID)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, action, visit_id, phone, reason, request_id, client_ip, user_agent, platform, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, eventID, event.Action, visitID, event.Phone, event.Reason,
		event.RequestID, event.ClientIP, event.UserAgent, event.Platform,
		event.Timestamp); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_outbox (id, payload, created_at) VALUES ($1, $2, $3)
	`, eventID, payloadBytes, event.Timestamp); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit append: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByVisit(ctx context.Context, visitID domain.VisitID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT action, visit_id, phone, reason, request_id, client_ip, user_agent, platform, created_at
		FROM audit_events
		WHERE visit_id = $1
		ORDER BY created_at
	`, uuid.UUID(visitID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			event      Event
			rawVisitID uuid.NullUUID
		)
		if err := rows.Scan(&event.Action, &rawVisitID, &event.Phone, &event.Reason,
			&event.RequestID, &event.ClientIP, &event.UserAgent, &event.Platform,
			&event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if rawVisitID.Valid {
			vid := domain.VisitID(rawVisitID.UUID)
			event.VisitID = &vid
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events rows: %w", err)
	}
	return out, nil
}

// OutboxEntry is one event waiting to be published.
type OutboxEntry struct {
	ID      uuid.UUID
	Payload []byte
}

// FetchUnpublished returns the oldest unpublished outbox entries.
func (s *PostgresStore) FetchUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		if err := rows.Scan(&entry.ID, &entry.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch outbox rows: %w", err)
	}
	return out, nil
}

// MarkPublished stamps an outbox entry as shipped.
func (s *PostgresStore) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE audit_outbox SET published_at = $2 WHERE id = $1
	`, id, at); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
