// Package audit captures the trail of visitor-facing actions. Events are
// written to the store (with a transactional outbox on Postgres) and shipped
// to Kafka by the outbox worker; Kafka is the source of truth downstream.
package audit

import (
	"time"

	"visitgate/pkg/domain"
)

// Actions emitted by the visit lifecycle.
const (
	ActionVisitCreated     = "visit.created"
	ActionFormSubmitted    = "visit.form_submitted"
	ActionNDASubmitted     = "visit.nda_submitted"
	ActionAnswersSubmitted = "visit.answers_submitted"
	ActionOTPSent          = "otp.sent"
	ActionOTPVerified      = "otp.verified"
	ActionOTPRejected      = "otp.rejected"
	ActionCheckedIn        = "visit.checked_in"
	ActionCheckedOut       = "visit.checked_out"
	ActionApproved         = "visit.approved"
	ActionCancelled        = "visit.cancelled"
	ActionQRVerified       = "qr.verified"
	ActionQRRejected       = "qr.rejected"
	ActionBadgeDownloaded  = "badge.downloaded"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Action    string
	VisitID   *domain.VisitID
	Phone     string
	Reason    string

	// Request metadata, filled by the publisher from the context.
	RequestID string
	ClientIP  string
	UserAgent string
	Platform  string
}
