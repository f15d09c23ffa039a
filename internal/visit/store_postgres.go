package visit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visitgate/pkg/daywindow"
	"visitgate/pkg/domain"
)

// Schema creates the visit tables. The partial unique index hardens the
// upsert-by-(phone, day) rule against concurrent form submissions.
const Schema = `
CREATE TABLE IF NOT EXISTS visits (
	id                  UUID PRIMARY KEY,
	name                TEXT NOT NULL,
	phone               TEXT NOT NULL,
	email               TEXT NOT NULL DEFAULT '',
	purpose             TEXT NOT NULL DEFAULT '',
	instructions        TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL,
	visit_type          TEXT NOT NULL,
	visiting_date       TIMESTAMPTZ NOT NULL,
	check_in_at         TIMESTAMPTZ,
	check_out_at        TIMESTAMPTZ,
	otp_code            TEXT NOT NULL DEFAULT '',
	otp_last_sent       TIMESTAMPTZ,
	employee_id         UUID,
	location_id         UUID,
	company_id          UUID,
	nda_image           BYTEA,
	photo_image         BYTEA,
	badge_attachment_id UUID,
	cancellation_reason TEXT NOT NULL DEFAULT '',
	qr_token            TEXT NOT NULL UNIQUE,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS visits_phone_day
	ON visits (phone, (visiting_date::date));

CREATE TABLE IF NOT EXISTS visit_escorts (
	visit_id    UUID NOT NULL REFERENCES visits (id) ON DELETE CASCADE,
	employee_id UUID NOT NULL,
	PRIMARY KEY (visit_id, employee_id)
);

CREATE TABLE IF NOT EXISTS notebook_entries (
	visit_id    UUID NOT NULL REFERENCES visits (id) ON DELETE CASCADE,
	question_id UUID NOT NULL,
	answer      TEXT NOT NULL,
	answered_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (visit_id, question_id)
);
`

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure visit schema: %w", err)
	}
	return nil
}

const visitColumns = `
	id, name, phone, email, purpose, instructions, status, visit_type,
	visiting_date, check_in_at, check_out_at, otp_code, otp_last_sent,
	employee_id, location_id, company_id, nda_image, photo_image,
	badge_attachment_id, cancellation_reason, qr_token, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, record *Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create visit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO visits (` + visitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`
	if _, err := tx.ExecContext(ctx, query, insertArgs(record)...); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	if err := replaceEscorts(ctx, tx, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create visit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, record *Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update visit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE visits SET
			name = $2, phone = $3, email = $4, purpose = $5,
			instructions = $6, status = $7, visit_type = $8,
			visiting_date = $9, check_in_at = $10, check_out_at = $11,
			otp_code = $12, otp_last_sent = $13, employee_id = $14,
			location_id = $15, company_id = $16, nda_image = $17,
			photo_image = $18, badge_attachment_id = $19,
			cancellation_reason = $20, qr_token = $21, created_at = $22,
			updated_at = $23
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, insertArgs(record)...)
	if err != nil {
		return fmt.Errorf("update visit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update visit rows affected: %w", err)
	}
	if affected == 0 {
		return errVisitNotFound()
	}
	if err := replaceEscorts(ctx, tx, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update visit: %w", err)
	}
	return nil
}

func insertArgs(record *Record) []any {
	return []any{
		uuid.UUID(record.ID),
		record.Name,
		record.Phone,
		record.Email,
		record.Purpose,
		record.Instructions,
		string(record.Status),
		string(record.VisitType),
		record.VisitingDate,
		record.CheckInAt,
		record.CheckOutAt,
		record.OTPCode,
		record.OTPLastSent,
		nullableID(record.EmployeeID, func(id domain.EmployeeID) uuid.UUID { return uuid.UUID(id) }),
		nullableID(record.LocationID, func(id domain.LocationID) uuid.UUID { return uuid.UUID(id) }),
		nullableID(record.CompanyID, func(id domain.CompanyID) uuid.UUID { return uuid.UUID(id) }),
		record.NDAImage,
		record.PhotoImage,
		nullableID(record.BadgeAttachmentID, func(id domain.AttachmentID) uuid.UUID { return uuid.UUID(id) }),
		record.CancellationReason,
		record.QRToken,
		record.CreatedAt,
		record.UpdatedAt,
	}
}

func nullableID[T any](id *T, conv func(T) uuid.UUID) any {
	if id == nil {
		return nil
	}
	return conv(*id)
}

func replaceEscorts(ctx context.Context, tx *sql.Tx, record *Record) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM visit_escorts WHERE visit_id = $1`, uuid.UUID(record.ID)); err != nil {
		return fmt.Errorf("clear escorts: %w", err)
	}
	for _, escort := range record.Escorts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO visit_escorts (visit_id, employee_id) VALUES ($1, $2)`,
			uuid.UUID(record.ID), uuid.UUID(escort)); err != nil {
			return fmt.Errorf("insert escort: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.VisitID) (*Record, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE id = $1`
	return s.scanOne(ctx, s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *PostgresStore) GetByPhoneInWindow(ctx context.Context, phone string, w daywindow.Window) (*Record, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE phone = $1 AND visiting_date >= $2 AND visiting_date < $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.scanOne(ctx, s.db.QueryRowContext(ctx, query, phone, w.Start, w.End))
}

func (s *PostgresStore) GetByQRToken(ctx context.Context, token string) (*Record, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE qr_token = $1`
	return s.scanOne(ctx, s.db.QueryRowContext(ctx, query, token))
}

func (s *PostgresStore) ListInWindow(ctx context.Context, w daywindow.Window) ([]*Record, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE visiting_date >= $1 AND visiting_date < $2
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		record, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visits rows: %w", err)
	}
	for _, record := range out {
		if err := s.loadEscorts(ctx, record); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) CountsInWindow(ctx context.Context, w daywindow.Window) (Counts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE check_in_at IS NOT NULL AND check_out_at IS NULL),
			COUNT(*) FILTER (WHERE check_out_at IS NOT NULL),
			COUNT(*) FILTER (WHERE check_in_at IS NULL AND check_out_at IS NULL)
		FROM visits
		WHERE visiting_date >= $1 AND visiting_date < $2
	`
	var counts Counts
	err := s.db.QueryRowContext(ctx, query, w.Start, w.End).Scan(
		&counts.Total, &counts.Pending, &counts.Approved, &counts.Cancelled,
		&counts.CheckedIn, &counts.CheckedOut, &counts.NotArrived,
	)
	if err != nil {
		return Counts{}, fmt.Errorf("count visits: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) ListEntries(ctx context.Context, visitID domain.VisitID) ([]NotebookEntry, error) {
	query := `
		SELECT visit_id, question_id, answer, answered_at
		FROM notebook_entries
		WHERE visit_id = $1
		ORDER BY answered_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(visitID))
	if err != nil {
		return nil, fmt.Errorf("list notebook entries: %w", err)
	}
	defer rows.Close()

	var out []NotebookEntry
	for rows.Next() {
		var entry NotebookEntry
		var visit, question uuid.UUID
		if err := rows.Scan(&visit, &question, &entry.Answer, &entry.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan notebook entry: %w", err)
		}
		entry.VisitID = domain.VisitID(visit)
		entry.QuestionID = domain.QuestionID(question)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notebook entries rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpsertEntry(ctx context.Context, entry NotebookEntry) error {
	query := `
		INSERT INTO notebook_entries (visit_id, question_id, answer, answered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (visit_id, question_id)
		DO UPDATE SET answer = EXCLUDED.answer, answered_at = EXCLUDED.answered_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(entry.VisitID), uuid.UUID(entry.QuestionID), entry.Answer, entry.AnsweredAt)
	if err != nil {
		return fmt.Errorf("upsert notebook entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(ctx context.Context, row *sql.Row) (*Record, error) {
	record, err := scanVisit(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadEscorts(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func scanVisit(row rowScanner) (*Record, error) {
	var (
		record                       Record
		id                           uuid.UUID
		employeeID, locationID       uuid.NullUUID
		companyID, badgeAttachmentID uuid.NullUUID
		checkIn, checkOut, otpLast   sql.NullTime
	)
	err := row.Scan(
		&id, &record.Name, &record.Phone, &record.Email, &record.Purpose,
		&record.Instructions, &record.Status, &record.VisitType,
		&record.VisitingDate, &checkIn, &checkOut, &record.OTPCode,
		&otpLast, &employeeID, &locationID, &companyID, &record.NDAImage,
		&record.PhotoImage, &badgeAttachmentID, &record.CancellationReason,
		&record.QRToken, &record.CreatedAt, &record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errVisitNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("scan visit: %w", err)
	}

	record.ID = domain.VisitID(id)
	record.CheckInAt = timePtr(checkIn)
	record.CheckOutAt = timePtr(checkOut)
	record.OTPLastSent = timePtr(otpLast)
	if employeeID.Valid {
		eid := domain.EmployeeID(employeeID.UUID)
		record.EmployeeID = &eid
	}
	if locationID.Valid {
		lid := domain.LocationID(locationID.UUID)
		record.LocationID = &lid
	}
	if companyID.Valid {
		cid := domain.CompanyID(companyID.UUID)
		record.CompanyID = &cid
	}
	if badgeAttachmentID.Valid {
		aid := domain.AttachmentID(badgeAttachmentID.UUID)
		record.BadgeAttachmentID = &aid
	}
	return &record, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (s *PostgresStore) loadEscorts(ctx context.Context, record *Record) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id FROM visit_escorts WHERE visit_id = $1`, uuid.UUID(record.ID))
	if err != nil {
		return fmt.Errorf("load escorts: %w", err)
	}
	defer rows.Close()

	record.Escorts = nil
	for rows.Next() {
		var escort uuid.UUID
		if err := rows.Scan(&escort); err != nil {
			return fmt.Errorf("scan escort: %w", err)
		}
		record.Escorts = append(record.Escorts, domain.EmployeeID(escort))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load escorts rows: %w", err)
	}
	return nil
}
