package notify

import (
	"fmt"
	"time"
)

// OTPText is the SMS body carrying a one-time code. The wording is locked to
// the registered DLT template; change the template ID if you change this.
func OTPText(code string) string {
	return fmt.Sprintf("%s is your one time password for Visitgate", code)
}

// PassLinkText is the SMS body carrying the badge download link.
func PassLinkText(name, link string) string {
	return fmt.Sprintf("Hi %s, your visit is approved. Download your pass here: %s", name, link)
}

// ApprovalEmail builds the visitor-facing approval email with the badge
// attached.
func ApprovalEmail(to, name, link string, badge Attachment) Email {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour visit has been approved. Your visitor pass is attached.\n\n"+
			"You can also download it here: %s\n\n"+
			"Please carry the pass and a photo ID when you arrive.\n",
		name, link)
	return Email{
		To:          []string{to},
		Subject:     "Your visit is approved",
		Body:        body,
		Attachments: []Attachment{badge},
	}
}

// CancellationEmail builds the visitor-facing cancellation notice.
func CancellationEmail(to, name, reason string) Email {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour visit has been cancelled.\n\nReason: %s\n\n"+
			"Please contact your host if you believe this is a mistake.\n",
		name, reason)
	return Email{
		To:      []string{to},
		Subject: "Your visit has been cancelled",
		Body:    body,
	}
}

// VisitRequestEmail asks the host to approve a pending visit.
func VisitRequestEmail(to, hostName, visitorName, purpose string, at time.Time) Email {
	body := fmt.Sprintf(
		"Hi %s,\n\n%s has requested to visit you on %s.\n\nPurpose: %s\n\n"+
			"Please approve or cancel the visit from your dashboard.\n",
		hostName, visitorName, at.Format("2006-01-02 15:04"), purpose)
	return Email{
		To:      []string{to},
		Subject: fmt.Sprintf("Visit request from %s", visitorName),
		Body:    body,
	}
}

// HostArrivalEmail tells the host their visitor has arrived.
func HostArrivalEmail(to, hostName, visitorName string, at time.Time) Email {
	body := fmt.Sprintf(
		"Hi %s,\n\n%s checked in at %s and is waiting for you.\n",
		hostName, visitorName, at.Format("15:04"))
	return Email{
		To:      []string{to},
		Subject: fmt.Sprintf("%s has arrived", visitorName),
		Body:    body,
	}
}

// AutoCheckInNotification is the realtime ping sent when a walk-in visitor
// is checked in automatically at approval.
func AutoCheckInNotification(visitorName string, at time.Time) (title, message string) {
	return "Visitor Auto Check-in",
		fmt.Sprintf("%s has been auto checked-in at %s.", visitorName, at.Format("15:04"))
}

// ArrivalNotification is the realtime ping sent on a regular check-in.
func ArrivalNotification(visitorName string, at time.Time) (title, message string) {
	return "Visitor Checked In",
		fmt.Sprintf("%s checked in at %s.", visitorName, at.Format("15:04"))
}
