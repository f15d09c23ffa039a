// Package service orchestrates the visit lifecycle: code verification,
// check-in and check-out, approval with badge issue, cancellation and the
// kiosk form flows.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"visitgate/internal/audit"
	"visitgate/internal/badge"
	"visitgate/internal/company"
	"visitgate/internal/device"
	"visitgate/internal/employee"
	"visitgate/internal/location"
	"visitgate/internal/notify"
	"visitgate/internal/otp"
	"visitgate/internal/platform/metrics"
	"visitgate/internal/visit"
	"visitgate/pkg/daywindow"
	"visitgate/pkg/domain"
	"visitgate/pkg/requestcontext"
)

// Collaborator ports. Implementations live in internal/notify,
// internal/otp and internal/device; tests swap in fakes.
type (
	SMSSender interface {
		SendSMS(ctx context.Context, phone, text string) error
	}
	EmailSender interface {
		SendEmail(ctx context.Context, email notify.Email) error
	}
	RealtimeNotifier interface {
		Notify(ctx context.Context, notification notify.Notification)
	}
	Throttle interface {
		Allow(ctx context.Context, phone string) (bool, error)
	}
	AuditPublisher interface {
		Emit(ctx context.Context, event audit.Event)
	}
	DeviceAuthenticator interface {
		Authenticate(ctx context.Context, id domain.DeviceID, secret string) (*device.Device, error)
	}
)

// Deps collects everything the service needs. All fields are required
// except GenerateCode, which defaults to the crypto/rand generator.
type Deps struct {
	Visits      visit.Store
	Locations   location.Store
	Employees   employee.Store
	Companies   company.Store
	Attachments badge.Store
	Renderer    badge.Renderer
	Tokens      *badge.TokenService
	Devices     DeviceAuthenticator

	SMS      SMSSender
	Email    EmailSender
	Realtime RealtimeNotifier
	Throttle Throttle
	Audit    AuditPublisher

	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// BaseURL is the public origin used in download links.
	BaseURL string

	GenerateCode func() (string, error)
}

type Service struct {
	deps   Deps
	tracer trace.Tracer
}

func New(deps Deps) *Service {
	if deps.GenerateCode == nil {
		deps.GenerateCode = otp.Generate
	}
	return &Service{
		deps:   deps,
		tracer: otel.Tracer("visitgate/visit"),
	}
}

// todayWindow is the day window of the request-scoped clock.
func todayWindow(ctx context.Context) daywindow.Window {
	return daywindow.For(requestcontext.Now(ctx))
}

// findTodayByPhone looks up the visit for this phone scheduled today.
func (s *Service) findTodayByPhone(ctx context.Context, phone string) (*visit.Record, error) {
	return s.deps.Visits.GetByPhoneInWindow(ctx, phone, todayWindow(ctx))
}

// notifyHost pings the host's dashboard if they have a platform account.
func (s *Service) notifyHost(ctx context.Context, record *visit.Record, title, message string) {
	targets := make([]domain.EmployeeID, 0, len(record.Escorts)+1)
	if record.EmployeeID != nil {
		targets = append(targets, *record.EmployeeID)
	}
	targets = append(targets, record.Escorts...)

	for _, employeeID := range targets {
		host, err := s.deps.Employees.GetByID(ctx, employeeID)
		if err != nil || host.UserID == nil {
			continue
		}
		s.deps.Realtime.Notify(ctx, notify.Notification{
			UserID:  *host.UserID,
			Title:   title,
			Message: message,
			Sticky:  true,
			Kind:    "info",
		})
	}
}
