// Package domain holds the typed identifiers shared across features.
//
// IDs are distinct named types over uuid.UUID so that a VisitID can never be
// passed where an EmployeeID is expected. Parsing enforces the trust-boundary
// invariant that IDs are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "visitgate/pkg/domain-errors"
)

type (
	// VisitID identifies a single visit record.
	VisitID uuid.UUID
	// LocationID identifies a company location.
	LocationID uuid.UUID
	// QuestionID identifies a location questionnaire item.
	QuestionID uuid.UUID
	// EmployeeID identifies a host employee.
	EmployeeID uuid.UUID
	// CompanyID identifies a company.
	CompanyID uuid.UUID
	// UserID identifies an internal platform user (realtime notification target).
	UserID uuid.UUID
	// DeviceID identifies a registered kiosk/scanner device.
	DeviceID uuid.UUID
	// AttachmentID identifies a stored badge document.
	AttachmentID uuid.UUID
)

func (id VisitID) String() string    { return uuid.UUID(id).String() }
func (id LocationID) String() string { return uuid.UUID(id).String() }
func (id QuestionID) String() string { return uuid.UUID(id).String() }
func (id EmployeeID) String() string { return uuid.UUID(id).String() }
func (id CompanyID) String() string  { return uuid.UUID(id).String() }
func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id DeviceID) String() string   { return uuid.UUID(id).String() }
func (id AttachmentID) String() string { return uuid.UUID(id).String() }

func (id VisitID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id LocationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id QuestionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EmployeeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DeviceID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id AttachmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewVisitID returns a fresh random visit ID.
func NewVisitID() VisitID { return VisitID(uuid.New()) }

// NewQuestionID returns a fresh random question ID.
func NewQuestionID() QuestionID { return QuestionID(uuid.New()) }

// NewAttachmentID returns a fresh random attachment ID.
func NewAttachmentID() AttachmentID { return AttachmentID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseVisitID parses and validates a visit ID from its string form.
func ParseVisitID(raw string) (VisitID, error) {
	parsed, err := parseUUID(raw)
	return VisitID(parsed), err
}

// ParseLocationID parses and validates a location ID from its string form.
func ParseLocationID(raw string) (LocationID, error) {
	parsed, err := parseUUID(raw)
	return LocationID(parsed), err
}

// ParseQuestionID parses and validates a question ID from its string form.
func ParseQuestionID(raw string) (QuestionID, error) {
	parsed, err := parseUUID(raw)
	return QuestionID(parsed), err
}

// ParseEmployeeID parses and validates an employee ID from its string form.
func ParseEmployeeID(raw string) (EmployeeID, error) {
	parsed, err := parseUUID(raw)
	return EmployeeID(parsed), err
}

// ParseCompanyID parses and validates a company ID from its string form.
func ParseCompanyID(raw string) (CompanyID, error) {
	parsed, err := parseUUID(raw)
	return CompanyID(parsed), err
}

// ParseDeviceID parses and validates a device ID from its string form.
func ParseDeviceID(raw string) (DeviceID, error) {
	parsed, err := parseUUID(raw)
	return DeviceID(parsed), err
}

// ParseAttachmentID parses and validates an attachment ID from its string form.
func ParseAttachmentID(raw string) (AttachmentID, error) {
	parsed, err := parseUUID(raw)
	return AttachmentID(parsed), err
}
