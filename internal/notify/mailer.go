package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"visitgate/internal/platform/config"
	dErrors "visitgate/pkg/domain-errors"
)

// SMTPMailer sends email over plain SMTP with STARTTLS. Attachments ride a
// multipart/mixed body with base64 parts.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendEmail delivers one message. Context cancellation is checked before the
// dial; net/smtp does not support mid-transfer cancellation.
func (m *SMTPMailer) SendEmail(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "email has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := buildMessage(m.cfg.From, email)
	if err != nil {
		return err
	}

	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, email.To, msg); err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "smtp send failed", err)
	}
	return nil
}

// buildMessage assembles the RFC 5322 message bytes. Plain text goes out as
// a simple body; attachments switch the message to multipart/mixed.
func buildMessage(from string, email Email) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(email.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", email.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(email.Attachments) == 0 {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(email.Body)
		return buf.Bytes(), nil
	}

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(email.Body)); err != nil {
		return nil, fmt.Errorf("write text part: %w", err)
	}

	for _, attachment := range email.Attachments {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", attachment.MIMEType)
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Name))
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create attachment part: %w", err)
		}
		encoded := base64.StdEncoding.EncodeToString(attachment.Content)
		if _, err := part.Write([]byte(encoded)); err != nil {
			return nil, fmt.Errorf("write attachment part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return buf.Bytes(), nil
}
