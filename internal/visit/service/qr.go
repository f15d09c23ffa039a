package service

import (
	"context"

	"visitgate/internal/audit"
	"visitgate/internal/visit"
	"visitgate/pkg/daywindow"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/requestcontext"
)

// VerifyQR checks a scanned badge token at the gate. The scanning device
// authenticates first; a bad device secret is rejected before the token is
// even looked at.
func (s *Service) VerifyQR(ctx context.Context, token string, deviceID domain.DeviceID, deviceSecret string) (*visit.Record, error) {
	ctx, span := s.tracer.Start(ctx, "visit.VerifyQR")
	defer span.End()

	if token == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "QR token is required.")
	}
	if _, err := s.deps.Devices.Authenticate(ctx, deviceID, deviceSecret); err != nil {
		s.deps.Audit.Emit(ctx, audit.Event{Action: audit.ActionQRRejected})
		return nil, err
	}

	record, err := s.deps.Visits.GetByQRToken(ctx, token)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.deps.Audit.Emit(ctx, audit.Event{Action: audit.ActionQRRejected})
			return nil, dErrors.New(dErrors.CodeNotFound, "QR does not match any registered visitor.")
		}
		return nil, err
	}
	if record.Status != visit.StatusApproved {
		s.deps.Audit.Emit(ctx, audit.Event{
			Action: audit.ActionQRRejected, VisitID: &record.ID, Phone: record.Phone,
		})
		return nil, dErrors.New(dErrors.CodeNotFound, "QR does not match any registered visitor.")
	}
	if !daywindow.For(requestcontext.Now(ctx)).Contains(record.VisitingDate) {
		s.deps.Audit.Emit(ctx, audit.Event{
			Action: audit.ActionQRRejected, VisitID: &record.ID, Phone: record.Phone,
		})
		return nil, dErrors.New(dErrors.CodeForbidden, "Visitor registered, but not scheduled for today.")
	}

	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionQRVerified, VisitID: &record.ID, Phone: record.Phone,
	})
	return record, nil
}
