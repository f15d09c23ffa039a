package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"visitgate/internal/audit"
	"visitgate/internal/badge"
	"visitgate/internal/notify"
	"visitgate/internal/visit"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/requestcontext"
)

// Approve marks the visit approved and issues the pass. The status write is
// the only step that can fail the operation; badge rendering, SMS and email
// are best-effort and only logged when they break.
func (s *Service) Approve(ctx context.Context, id domain.VisitID) (*visit.Record, error) {
	ctx, span := s.tracer.Start(ctx, "visit.Approve")
	defer span.End()

	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found.")
		}
		return nil, err
	}

	now := requestcontext.Now(ctx)
	record.Status = visit.StatusApproved
	record.UpdatedAt = now

	// A walk-in is standing at the desk, so approval checks them in too.
	autoCheckIn := record.VisitType == visit.TypeWalkIn && record.CheckInAt == nil
	if autoCheckIn {
		record.CheckInAt = &now
	}

	if err := s.deps.Visits.Update(ctx, record); err != nil {
		return nil, err
	}
	s.deps.Metrics.VisitsApproved.Inc()
	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionApproved, VisitID: &record.ID, Phone: record.Phone,
	})
	if autoCheckIn {
		s.deps.Metrics.CheckIns.Inc()
		title, message := notify.AutoCheckInNotification(record.Name, now)
		s.notifyHost(ctx, record, title, message)
		s.deps.Audit.Emit(ctx, audit.Event{
			Action: audit.ActionCheckedIn, VisitID: &record.ID, Phone: record.Phone,
		})
	}

	attachment, err := s.issueBadge(ctx, record)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "badge issue failed",
			"visit_id", record.ID.String(), "error", err)
		s.deps.Metrics.NotificationFailures.WithLabelValues("badge").Inc()
		return record, nil
	}

	record.BadgeAttachmentID = &attachment.ID
	record.UpdatedAt = requestcontext.Now(ctx)
	if err := s.deps.Visits.Update(ctx, record); err != nil {
		s.deps.Logger.ErrorContext(ctx, "badge attachment link failed",
			"visit_id", record.ID.String(), "error", err)
		return record, nil
	}

	link, err := s.downloadLink(ctx, attachment.ID)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "download link signing failed",
			"visit_id", record.ID.String(), "error", err)
		return record, nil
	}

	// SMS and email are independent; fan out and absorb failures in each arm
	// so one slow or broken channel never blocks the other.
	var g errgroup.Group
	g.Go(func() error {
		if err := s.deps.SMS.SendSMS(ctx, record.Phone, notify.PassLinkText(record.Name, link)); err != nil {
			s.deps.Logger.WarnContext(ctx, "pass link sms failed",
				"visit_id", record.ID.String(), "error", err)
			s.deps.Metrics.NotificationFailures.WithLabelValues("sms").Inc()
		}
		return nil
	})
	if record.Email != "" {
		email := notify.ApprovalEmail(record.Email, record.Name, link, notify.Attachment{
			Name:     attachment.Name,
			MIMEType: attachment.MIMEType,
			Content:  attachment.Content,
		})
		g.Go(func() error {
			if err := s.deps.Email.SendEmail(ctx, email); err != nil {
				s.deps.Logger.WarnContext(ctx, "approval email failed",
					"visit_id", record.ID.String(), "error", err)
				s.deps.Metrics.NotificationFailures.WithLabelValues("email").Inc()
			}
			return nil
		})
	}
	_ = g.Wait()
	return record, nil
}

// issueBadge renders the pass and stores it as a download attachment.
func (s *Service) issueBadge(ctx context.Context, record *visit.Record) (*badge.Attachment, error) {
	data := badge.Badge{
		VisitorName:  record.Name,
		Purpose:      record.Purpose,
		VisitingDate: record.VisitingDate,
		QRToken:      record.QRToken,
	}
	if record.CompanyID != nil {
		if comp, err := s.deps.Companies.GetByID(ctx, *record.CompanyID); err == nil {
			data.CompanyName = comp.Name
		}
	}
	if record.LocationID != nil {
		if loc, err := s.deps.Locations.GetByID(ctx, *record.LocationID); err == nil {
			data.LocationName = loc.Name
		}
	}
	if record.EmployeeID != nil {
		if host, err := s.deps.Employees.GetByID(ctx, *record.EmployeeID); err == nil {
			data.HostName = host.Name
		}
	}

	pdf, err := s.deps.Renderer.Render(ctx, data)
	if err != nil {
		return nil, err
	}

	attachment := &badge.Attachment{
		ID:        domain.NewAttachmentID(),
		VisitID:   record.ID,
		Name:      fmt.Sprintf("Approved_Visit_%s.pdf", record.Name),
		MIMEType:  "application/pdf",
		Content:   pdf,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.deps.Attachments.Save(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *Service) downloadLink(ctx context.Context, id domain.AttachmentID) (string, error) {
	token, err := s.deps.Tokens.Sign(id, requestcontext.Now(ctx))
	if err != nil {
		return "", err
	}
	return s.deps.BaseURL + "/visitor/pass/" + token, nil
}

// Cancel marks the visit cancelled with a reason and notifies the visitor.
func (s *Service) Cancel(ctx context.Context, id domain.VisitID, reason string) (*visit.Record, error) {
	ctx, span := s.tracer.Start(ctx, "visit.Cancel")
	defer span.End()

	if reason == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Cancellation reason is required.")
	}

	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found.")
		}
		return nil, err
	}
	if record.Status == visit.StatusCancelled {
		return nil, dErrors.New(dErrors.CodeConflict, "Visit is already cancelled.")
	}

	now := requestcontext.Now(ctx)
	record.Status = visit.StatusCancelled
	record.CancellationReason = reason
	record.UpdatedAt = now
	if err := s.deps.Visits.Update(ctx, record); err != nil {
		return nil, err
	}
	s.deps.Metrics.VisitsCancelled.Inc()
	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionCancelled, VisitID: &record.ID, Phone: record.Phone, Reason: reason,
	})

	if record.Email != "" {
		if err := s.deps.Email.SendEmail(ctx, notify.CancellationEmail(record.Email, record.Name, reason)); err != nil {
			s.deps.Logger.WarnContext(ctx, "cancellation email failed",
				"visit_id", record.ID.String(), "error", err)
			s.deps.Metrics.NotificationFailures.WithLabelValues("email").Inc()
		}
	}
	return record, nil
}

// ResendPassLink re-signs the download link for today's visit and sends it
// by SMS.
func (s *Service) ResendPassLink(ctx context.Context, phone string) error {
	ctx, span := s.tracer.Start(ctx, "visit.ResendPassLink")
	defer span.End()

	if phone == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Invalid request. Mobile number is required.")
	}

	record, err := s.findTodayByPhone(ctx, phone)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Visitor not found")
		}
		return err
	}
	if record.BadgeAttachmentID == nil {
		return dErrors.New(dErrors.CodeNotFound, "No attachment found for this visitor")
	}

	link, err := s.downloadLink(ctx, *record.BadgeAttachmentID)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "could not sign download link", err)
	}
	if err := s.deps.SMS.SendSMS(ctx, record.Phone, notify.PassLinkText(record.Name, link)); err != nil {
		s.deps.Metrics.NotificationFailures.WithLabelValues("sms").Inc()
		return dErrors.Wrap(dErrors.CodeUnavailable, "Failed to send SMS", err)
	}
	return nil
}

// DownloadBadge resolves a signed download token to the stored pass.
func (s *Service) DownloadBadge(ctx context.Context, token string) (*badge.Attachment, error) {
	ctx, span := s.tracer.Start(ctx, "visit.DownloadBadge")
	defer span.End()

	attachmentID, err := s.deps.Tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	attachment, err := s.deps.Attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionBadgeDownloaded, VisitID: &attachment.VisitID,
	})
	return attachment, nil
}
