// Package badge renders visitor passes, stores them as attachments and signs
// the download links sent out by SMS and email.
package badge

import (
	"time"

	"visitgate/pkg/domain"
)

// Attachment is one rendered badge PDF kept for download.
type Attachment struct {
	ID        domain.AttachmentID
	VisitID   domain.VisitID
	Name      string
	MIMEType  string
	Content   []byte
	CreatedAt time.Time
}

// Badge is the data printed on a visitor pass.
type Badge struct {
	VisitorName  string    `json:"VisitorName"`
	CompanyName  string    `json:"CompanyName"`
	LocationName string    `json:"LocationName"`
	HostName     string    `json:"HostName"`
	Purpose      string    `json:"Purpose"`
	VisitingDate time.Time `json:"VisitingDate"`
	// QRToken is encoded into the QR code the kiosk scans at the gate.
	QRToken string `json:"QRToken"`
}
