package service

import (
	"context"
	"strconv"

	"visitgate/internal/audit"
	"visitgate/internal/notify"
	"visitgate/internal/visit"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/requestcontext"

	"github.com/google/uuid"
)

// CodeDelivery is the result of requesting a one-time code.
type CodeDelivery struct {
	VisitID domain.VisitID
	// Sent reports whether the SMS dispatch succeeded. A failed dispatch is
	// a soft failure: the code is stored either way.
	Sent bool
	// Code is surfaced to the caller only when Sent is true.
	Code string
}

// RequestCode issues a fresh code for the phone's visit today, creating a
// minimal record when the phone has none yet.
func (s *Service) RequestCode(ctx context.Context, phone string) (*CodeDelivery, error) {
	ctx, span := s.tracer.Start(ctx, "visit.RequestCode")
	defer span.End()

	if phone == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid request. Mobile number is required.")
	}
	if !visit.ValidPhone(phone) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Phone number must be exactly 10 digits.")
	}

	// The throttle fails open: a Redis outage must not lock visitors out.
	allowed, err := s.deps.Throttle.Allow(ctx, phone)
	if err != nil {
		s.deps.Logger.WarnContext(ctx, "otp throttle unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		s.deps.Metrics.OTPThrottled.Inc()
		return nil, dErrors.New(dErrors.CodeUnavailable, "Too many OTP requests. Please try again later.")
	}

	code, err := s.deps.GenerateCode()
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "could not generate code", err)
	}

	now := requestcontext.Now(ctx)
	record, err := s.findTodayByPhone(ctx, phone)
	switch {
	case err == nil:
		record.OTPCode = code
		record.OTPLastSent = &now
		record.UpdatedAt = now
		if err := s.deps.Visits.Update(ctx, record); err != nil {
			return nil, err
		}
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		record = &visit.Record{
			ID:           domain.NewVisitID(),
			Phone:        phone,
			Status:       visit.StatusPending,
			VisitType:    visit.TypeWalkIn,
			VisitingDate: now,
			OTPCode:      code,
			OTPLastSent:  &now,
			QRToken:      uuid.NewString(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.deps.Visits.Create(ctx, record); err != nil {
			return nil, err
		}
		s.deps.Metrics.VisitsCreated.Inc()
		s.deps.Audit.Emit(ctx, audit.Event{
			Action: audit.ActionVisitCreated, VisitID: &record.ID, Phone: phone,
		})
	default:
		return nil, err
	}

	delivery := &CodeDelivery{VisitID: record.ID}
	if err := s.deps.SMS.SendSMS(ctx, phone, notify.OTPText(code)); err != nil {
		s.deps.Logger.WarnContext(ctx, "otp sms dispatch failed", "error", err)
		s.deps.Metrics.NotificationFailures.WithLabelValues("sms").Inc()
		return delivery, nil
	}

	delivery.Sent = true
	delivery.Code = code
	s.deps.Metrics.OTPSent.Inc()
	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionOTPSent, VisitID: &record.ID, Phone: phone,
	})
	return delivery, nil
}

// Verification outcomes. NewUserMustRegister and NotApprovedYet are normal
// outcomes, not errors: they direct the caller to the next step.
type VerificationKind string

const (
	VerificationVerified    VerificationKind = "verified"
	VerificationNewUser     VerificationKind = "new_user"
	VerificationNotApproved VerificationKind = "not_approved"
)

type Verification struct {
	Kind VerificationKind
	// Visit is nil for a new-user outcome with no record yet.
	Visit *visit.Record
	// Status is set for the not-approved outcome.
	Status visit.Status
}

// VerifyCode checks a submitted code against today's record for the phone.
// Codes compare as integers; a record with no stored code compares as 0, so
// a missing code never matches a real six-digit submission.
func (s *Service) VerifyCode(ctx context.Context, phone, code string) (*Verification, error) {
	ctx, span := s.tracer.Start(ctx, "visit.VerifyCode")
	defer span.End()

	if phone == "" || code == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid request. Mobile and OTP are required.")
	}

	var record *visit.Record
	found, err := s.findTodayByPhone(ctx, phone)
	switch {
	case err == nil:
		record = found
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		// No record: the stored code is treated as 0 below.
	default:
		return nil, err
	}

	submitted, err := strconv.Atoi(code)
	if err != nil {
		s.deps.Metrics.OTPRejected.Inc()
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid OTP!")
	}
	stored := 0
	if record != nil && record.OTPCode != "" {
		stored, _ = strconv.Atoi(record.OTPCode)
	}
	if submitted != stored {
		s.deps.Metrics.OTPRejected.Inc()
		if record != nil {
			s.deps.Audit.Emit(ctx, audit.Event{
				Action: audit.ActionOTPRejected, VisitID: &record.ID, Phone: phone,
			})
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid OTP!")
	}

	s.deps.Metrics.OTPVerified.Inc()
	if record == nil || record.Name == "" {
		return &Verification{Kind: VerificationNewUser, Visit: record}, nil
	}

	s.deps.Audit.Emit(ctx, audit.Event{
		Action: audit.ActionOTPVerified, VisitID: &record.ID, Phone: phone,
	})
	if record.Status != visit.StatusApproved {
		return &Verification{Kind: VerificationNotApproved, Visit: record, Status: record.Status}, nil
	}
	return &Verification{Kind: VerificationVerified, Visit: record}, nil
}
