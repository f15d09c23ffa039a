package service

import (
	"context"
	"fmt"
	"time"

	"visitgate/internal/audit"
	"visitgate/internal/visit"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/requestcontext"
)

// Attendance actions accepted by CheckInOut.
const (
	ActionCheckIn  = "checkin"
	ActionCheckOut = "checkout"
)

// AttendanceResult reports the state after a check-in or check-out.
type AttendanceResult struct {
	Visit  *visit.Record
	Action string
	At     time.Time
}

// CheckInOut moves an approved visit through the attendance machine. The
// transitions are one-way: a visit can check in once, check out once, and
// never check in again after checking out.
func (s *Service) CheckInOut(ctx context.Context, id domain.VisitID, action string) (*AttendanceResult, error) {
	ctx, span := s.tracer.Start(ctx, "visit.CheckInOut")
	defer span.End()

	if id.IsNil() || action == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid request. Visitor ID and action are required.")
	}
	if action != ActionCheckIn && action != ActionCheckOut {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Invalid action. Use 'checkin' or 'checkout'.")
	}

	record, err := s.deps.Visits.GetByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found.")
		}
		return nil, err
	}
	if record.Status != visit.StatusApproved {
		return nil, dErrors.New(dErrors.CodeForbidden,
			fmt.Sprintf("Visitor not approved yet (status=%s).", record.Status))
	}

	now := requestcontext.Now(ctx)
	switch action {
	case ActionCheckIn:
		if record.CheckOutAt != nil {
			return nil, dErrors.New(dErrors.CodeConflict, "Already checked out. Cannot check-in again.")
		}
		if record.CheckInAt != nil {
			return nil, dErrors.New(dErrors.CodeConflict, "Already checked in.")
		}
		record.CheckInAt = &now
		record.UpdatedAt = now
		if err := s.deps.Visits.Update(ctx, record); err != nil {
			return nil, err
		}
		s.deps.Metrics.CheckIns.Inc()
		s.notifyHost(ctx, record, "Visitor Check-in",
			fmt.Sprintf("%s has checked in at %s.", record.Name, now.Format("15:04")))
		s.deps.Audit.Emit(ctx, audit.Event{
			Action: audit.ActionCheckedIn, VisitID: &record.ID, Phone: record.Phone,
		})

	case ActionCheckOut:
		if record.CheckInAt == nil {
			return nil, dErrors.New(dErrors.CodeConflict, "Cannot check-out before check-in.")
		}
		if record.CheckOutAt != nil {
			return nil, dErrors.New(dErrors.CodeConflict, "Already checked out.")
		}
		record.CheckOutAt = &now
		record.UpdatedAt = now
		if err := s.deps.Visits.Update(ctx, record); err != nil {
			return nil, err
		}
		s.deps.Metrics.CheckOuts.Inc()
		s.notifyHost(ctx, record, "Visitor Check-out",
			fmt.Sprintf("%s has checked out at %s.", record.Name, now.Format("15:04")))
		s.deps.Audit.Emit(ctx, audit.Event{
			Action: audit.ActionCheckedOut, VisitID: &record.ID, Phone: record.Phone,
		})
	}

	return &AttendanceResult{Visit: record, Action: action, At: now}, nil
}
