// Package visit holds the visit record model and its lifecycle rules.
package visit

import (
	"regexp"
	"time"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/email"
)

// Status is the approval state of a visit.
type Status string

const (
	// StatusPending is the initial state of every new visit.
	StatusPending Status = "pending"
	// StatusApproved means a host approved the visit; the badge is issued.
	StatusApproved Status = "approved"
	// StatusCancelled means the visit was cancelled with a reason.
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status value received over the wire.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusApproved, StatusCancelled:
		return Status(raw), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown visit status: "+raw)
}

// VisitType distinguishes scheduled visits from walk-ins.
type VisitType string

const (
	// TypePreRegistered is a visit scheduled ahead of time by a host.
	TypePreRegistered VisitType = "pre_registered"
	// TypeWalkIn is a visitor who registered at the front desk.
	TypeWalkIn VisitType = "walk_in"
)

// ParseVisitType validates a visit type value received over the wire.
func ParseVisitType(raw string) (VisitType, error) {
	switch VisitType(raw) {
	case TypePreRegistered, TypeWalkIn:
		return VisitType(raw), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown visit type: "+raw)
}

// AttendanceState is derived from the check-in/check-out timestamps.
type AttendanceState string

const (
	AttendanceNotArrived AttendanceState = "not_arrived"
	AttendanceCheckedIn  AttendanceState = "checked_in"
	AttendanceCheckedOut AttendanceState = "checked_out"
)

// phonePattern is the only accepted phone format: exactly ten digits,
// no country prefix. The gateway prefix is added at send time.
var phonePattern = regexp.MustCompile(`^\d{10}$`)

// ValidPhone reports whether raw is an acceptable visitor phone number.
func ValidPhone(raw string) bool {
	return phonePattern.MatchString(raw)
}

// Record is one visitor's visit on one day. The same person visiting on two
// different days is two records; within a day the record is upserted by phone.
type Record struct {
	ID domain.VisitID

	Name         string
	Phone        string
	Email        string
	Purpose      string
	Instructions string

	Status    Status
	VisitType VisitType

	// VisitingDate is the scheduled day of the visit. Lookups compare it
	// against the [start-of-day, next-day) window, never by equality.
	VisitingDate time.Time

	CheckInAt  *time.Time
	CheckOutAt *time.Time

	// OTPCode is the last one-time code sent, as the literal digits.
	// Empty means no code has ever been issued.
	OTPCode     string
	OTPLastSent *time.Time

	EmployeeID *domain.EmployeeID
	LocationID *domain.LocationID
	// CompanyID is always derived from the host employee, never taken
	// from the caller.
	CompanyID *domain.CompanyID

	// Escorts are additional hosts notified alongside the primary
	// employee. Assignment replaces the whole set.
	Escorts []domain.EmployeeID

	NDAImage   []byte
	PhotoImage []byte

	// BadgeAttachmentID points at the rendered badge PDF, set on approval.
	BadgeAttachmentID *domain.AttachmentID

	CancellationReason string

	// QRToken is minted once at creation and never rotated, so a badge
	// printed at approval time stays scannable for the whole day.
	QRToken string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attendance derives the attendance state from the stored timestamps.
func (r *Record) Attendance() AttendanceState {
	switch {
	case r.CheckOutAt != nil:
		return AttendanceCheckedOut
	case r.CheckInAt != nil:
		return AttendanceCheckedIn
	default:
		return AttendanceNotArrived
	}
}

// Validate enforces the record invariants at the trust boundary.
func (r *Record) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if !ValidPhone(r.Phone) {
		return dErrors.New(dErrors.CodeInvalidInput, "phone must be exactly 10 digits")
	}
	if r.Email != "" && !email.Valid(r.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "email address is not valid")
	}
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return err
	}
	if _, err := ParseVisitType(string(r.VisitType)); err != nil {
		return err
	}
	if r.VisitingDate.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "visiting date is required")
	}
	return nil
}

// NotebookEntry is one answered questionnaire item for a visit. Entries are
// upserted per (visit, question); re-answering overwrites.
type NotebookEntry struct {
	VisitID    domain.VisitID
	QuestionID domain.QuestionID
	// Answer is "yes" or "no"; anything else is dropped before it gets here.
	Answer     string
	AnsweredAt time.Time
}

// ValidAnswer reports whether raw is a storable questionnaire answer.
func ValidAnswer(raw string) bool {
	return raw == "yes" || raw == "no"
}
