package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"visitgate/internal/audit"
	"visitgate/internal/badge"
	"visitgate/internal/company"
	"visitgate/internal/device"
	"visitgate/internal/employee"
	"visitgate/internal/location"
	"visitgate/internal/notify"
	"visitgate/internal/platform/config"
	"visitgate/internal/platform/metrics"
	"visitgate/internal/visit"
	"visitgate/pkg/domain"
	"visitgate/pkg/requestcontext"
)

type sentSMS struct {
	Phone string
	Text  string
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{Phone: phone, Text: text})
	return nil
}

func (f *fakeSMS) all() []sentSMS {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentSMS(nil), f.sent...)
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []notify.Email
	err  error
}

func (f *fakeEmail) SendEmail(_ context.Context, email notify.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeEmail) all() []notify.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Email(nil), f.sent...)
}

type fakeThrottle struct {
	allowed bool
	err     error
}

func (f *fakeThrottle) Allow(context.Context, string) (bool, error) {
	return f.allowed, f.err
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Emit(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Action)
	}
	return out
}

func (r *recordingAudit) has(action string) bool {
	for _, got := range r.actions() {
		if got == action {
			return true
		}
	}
	return false
}

type fakeDevices struct {
	device *device.Device
	err    error
}

func (f *fakeDevices) Authenticate(context.Context, domain.DeviceID, string) (*device.Device, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.device, nil
}

// harness wires the service against in-memory stores and fakes.
type harness struct {
	svc       *Service
	visits    *visit.InMemoryStore
	locations *location.InMemoryStore
	employees *employee.InMemoryStore
	companies *company.InMemoryStore
	badges    *badge.InMemoryStore
	sms       *fakeSMS
	email     *fakeEmail
	realtime  *notify.InMemoryNotifier
	throttle  *fakeThrottle
	audit     *recordingAudit
	devices   *fakeDevices
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		visits:    visit.NewInMemoryStore(),
		locations: location.NewInMemoryStore(),
		employees: employee.NewInMemoryStore(),
		companies: company.NewInMemoryStore(),
		badges:    badge.NewInMemoryStore(),
		sms:       &fakeSMS{},
		email:     &fakeEmail{},
		realtime:  notify.NewInMemoryNotifier(),
		throttle:  &fakeThrottle{allowed: true},
		audit:     &recordingAudit{},
		devices:   &fakeDevices{device: &device.Device{Active: true}},
		now:       time.Date(2026, 3, 17, 10, 30, 0, 0, time.UTC),
	}
	h.svc = New(Deps{
		Visits:      h.visits,
		Locations:   h.locations,
		Employees:   h.employees,
		Companies:   h.companies,
		Attachments: h.badges,
		Renderer:    badge.FallbackRenderer{},
		Tokens: badge.NewTokenService(config.BadgeConfig{
			SigningKey: "test-signing-key",
			TokenTTL:   time.Hour,
		}),
		Devices:      h.devices,
		SMS:          h.sms,
		Email:        h.email,
		Realtime:     h.realtime,
		Throttle:     h.throttle,
		Audit:        h.audit,
		Metrics:      metrics.NewWith(prometheus.NewRegistry()),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		BaseURL:      "https://visitgate.example.com",
		GenerateCode: func() (string, error) { return "123456", nil },
	})
	return h
}

// ctx returns a context with the harness clock pinned.
func (h *harness) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), h.now)
}

// seedVisit stores a ready-made record and returns it.
func (h *harness) seedVisit(t *testing.T, mutate func(*visit.Record)) *visit.Record {
	t.Helper()
	record := &visit.Record{
		ID:           domain.NewVisitID(),
		Name:         "Asha Pillai",
		Phone:        "9876543210",
		Email:        "asha@example.com",
		Purpose:      "Vendor meeting",
		Status:       visit.StatusPending,
		VisitType:    visit.TypePreRegistered,
		VisitingDate: h.now,
		QRToken:      uuid.NewString(),
		CreatedAt:    h.now.Add(-time.Hour),
		UpdatedAt:    h.now.Add(-time.Hour),
	}
	if mutate != nil {
		mutate(record)
	}
	if err := h.visits.Create(h.ctx(), record); err != nil {
		t.Fatalf("seed visit: %v", err)
	}
	return record
}

// seedHost stores an employee with a linked user and returns it.
func (h *harness) seedHost(name string) *employee.Employee {
	userID := domain.UserID(uuid.New())
	host := &employee.Employee{
		ID:        domain.EmployeeID(uuid.New()),
		CompanyID: domain.CompanyID(uuid.New()),
		UserID:    &userID,
		Name:      name,
		Email:     "host@example.com",
		Phone:     "9000000001",
		CreatedAt: h.now,
	}
	h.employees.Seed(host)
	return host
}
