// Package notify carries messages out of the service: SMS through the Route
// Mobile gateway, email over SMTP and realtime host notifications over Kafka.
package notify

import (
	"visitgate/pkg/domain"
)

// Attachment is one file carried by an email.
type Attachment struct {
	Name     string
	MIMEType string
	Content  []byte
}

// Email is one outbound message, ready to send.
type Email struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Notification is one realtime ping for a host's dashboard.
type Notification struct {
	UserID  domain.UserID `json:"UserID"`
	Title   string        `json:"Title"`
	Message string        `json:"Message"`
	Sticky  bool          `json:"Sticky"`
	Kind    string        `json:"Kind"`
}
