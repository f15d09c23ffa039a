package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	"visitgate/internal/visit/service"
	"visitgate/pkg/domain"
	"visitgate/pkg/testutil"
)

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, _, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type fakeEmail struct{}

func (fakeEmail) SendEmail(context.Context, notify.Email) error { return nil }

type openThrottle struct{}

func (openThrottle) Allow(context.Context, string) (bool, error) { return true, nil }

type noopAudit struct{}

func (noopAudit) Emit(context.Context, audit.Event) {}

type testEnv struct {
	router  chi.Router
	visits  *visit.InMemoryStore
	devices *device.Registry
	sms     *fakeSMS
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		visits:  visit.NewInMemoryStore(),
		devices: device.NewRegistry(device.NewInMemoryStore()),
		sms:     &fakeSMS{},
		now:     time.Date(2026, 3, 17, 10, 30, 0, 0, time.UTC),
	}
	svc := service.New(service.Deps{
		Visits:      env.visits,
		Locations:   location.NewInMemoryStore(),
		Employees:   employee.NewInMemoryStore(),
		Companies:   company.NewInMemoryStore(),
		Attachments: badge.NewInMemoryStore(),
		Renderer:    badge.FallbackRenderer{},
		Tokens: badge.NewTokenService(config.BadgeConfig{
			SigningKey: "test-signing-key",
			TokenTTL:   time.Hour,
		}),
		Devices:      env.devices,
		SMS:          env.sms,
		Email:        fakeEmail{},
		Realtime:     notify.NewInMemoryNotifier(),
		Throttle:     openThrottle{},
		Audit:        noopAudit{},
		Metrics:      metrics.NewWith(prometheus.NewRegistry()),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		BaseURL:      "https://visitgate.example.com",
		GenerateCode: func() (string, error) { return "123456", nil },
	})

	env.router = chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(env.router)
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	req = testutil.WithRequestTime(req, env.now)
	return testutil.DoRequest(env.router, req)
}

func (env *testEnv) seedVisit(t *testing.T, mutate func(*visit.Record)) *visit.Record {
	t.Helper()
	record := &visit.Record{
		ID:           domain.NewVisitID(),
		Name:         "Asha Pillai",
		Phone:        "9876543210",
		Status:       visit.StatusPending,
		VisitType:    visit.TypePreRegistered,
		VisitingDate: env.now,
		QRToken:      uuid.NewString(),
		CreatedAt:    env.now,
		UpdatedAt:    env.now,
	}
	if mutate != nil {
		mutate(record)
	}
	ctx := context.Background()
	require.NoError(t, env.visits.Create(ctx, record))
	return record
}

func TestSendOTPEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/visitor/SendOTP", map[string]any{
		"mobileNumber": "9876543210",
	})
	envlp := testutil.AssertEnvelope(t, rr, 1, "OTP sent successfully.")
	assert.Equal(t, float64(123456), envlp.Rest["Data"])
	assert.NotEmpty(t, envlp.Rest["VisitorID"])
}

func TestSendOTPEndpointSoftFailure(t *testing.T) {
	env := newTestEnv(t)
	env.sms.err = context.DeadlineExceeded

	rr := env.do(t, http.MethodPost, "/visitor/SendOTP", map[string]any{
		"mobileNumber": "9876543210",
	})
	envlp := testutil.AssertEnvelope(t, rr, 0, "Failed to send OTP. Please try again.")
	assert.Nil(t, envlp.Rest["Data"])
}

func TestSendOTPEndpointMissingMobile(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/visitor/SendOTP", map[string]any{})
	testutil.AssertEnvelope(t, rr, 0, "Invalid request. Mobile number is required.")
}

func TestVerifyOTPEndpointFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedVisit(t, func(r *visit.Record) {
		r.OTPCode = "123456"
		r.Status = visit.StatusApproved
	})

	rr := env.do(t, http.MethodPost, "/visitor/verifyOTP", map[string]any{
		"mobileNumber": "9876543210",
		"accessToken":  "123456",
	})
	envlp := testutil.AssertEnvelope(t, rr, 1, "OTP verified successfully.")
	assert.NotEmpty(t, envlp.Rest["VisitorID"])

	rr = env.do(t, http.MethodPost, "/visitor/verifyOTP", map[string]any{
		"mobileNumber": "9876543210",
		"accessToken":  "999999",
	})
	testutil.AssertEnvelope(t, rr, 0, "Invalid OTP!")
}

func TestVerifyOTPEndpointNewUser(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/visitor/verifyOTP", map[string]any{
		"mobileNumber": "9123456780",
		"accessToken":  "0",
	})
	envlp := testutil.AssertEnvelope(t, rr, 1, "New user - please register")
	assert.Equal(t, float64(1), envlp.Rest["Newuser"])
}

func TestVerifyOTPEndpointNotApproved(t *testing.T) {
	env := newTestEnv(t)
	env.seedVisit(t, func(r *visit.Record) { r.OTPCode = "123456" })

	rr := env.do(t, http.MethodPost, "/visitor/verifyOTP", map[string]any{
		"mobileNumber": "9876543210",
		"accessToken":  "123456",
	})
	testutil.AssertEnvelope(t, rr, 0, "Visitor not approved yet (status=pending).")
}

func TestCheckInOutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	record := env.seedVisit(t, func(r *visit.Record) { r.Status = visit.StatusApproved })

	rr := env.do(t, http.MethodPost, "/visitor/checkin_out", map[string]any{
		"visitor_id": record.ID.String(),
		"action":     "checkin",
	})
	envlp := testutil.AssertEnvelope(t, rr, 1, "Visitor check-in successful.")
	data := envlp.Rest["Data"].(map[string]any)
	assert.Equal(t, "Asha Pillai", data["name"])
	assert.Equal(t, "2026-03-17 10:30:00", data["check_in"])

	rr = env.do(t, http.MethodPost, "/visitor/checkin_out", map[string]any{
		"visitor_id": record.ID.String(),
		"action":     "checkin",
	})
	testutil.AssertEnvelope(t, rr, 0, "Already checked in.")

	rr = env.do(t, http.MethodPost, "/visitor/checkin_out", map[string]any{
		"visitor_id": record.ID.String(),
		"action":     "checkout",
	})
	testutil.AssertEnvelope(t, rr, 1, "Visitor check-out successful.")
}

func TestCheckInOutEndpointInvalidAction(t *testing.T) {
	env := newTestEnv(t)
	record := env.seedVisit(t, func(r *visit.Record) { r.Status = visit.StatusApproved })

	rr := env.do(t, http.MethodPost, "/visitor/checkin_out", map[string]any{
		"visitor_id": record.ID.String(),
		"action":     "loiter",
	})
	testutil.AssertEnvelope(t, rr, 0, "Invalid action. Use 'checkin' or 'checkout'.")
}

func TestSubmitFormEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/visitor/submitForm", map[string]any{
		"name":  "Meera Nair",
		"phone": "9123456780",
	})
	envlp := testutil.AssertEnvelope(t, rr, 1, "Form submitted successfully!")
	assert.NotEmpty(t, envlp.Rest["VisitorID"])
}

func TestApproveAndPassDownloadEndpoints(t *testing.T) {
	env := newTestEnv(t)
	record := env.seedVisit(t, nil)

	rr := env.do(t, http.MethodPost, "/visitor/approve", map[string]any{
		"visitor_id": record.ID.String(),
	})
	testutil.AssertEnvelope(t, rr, 1, "Visitor approved.")

	env.sms.mu.Lock()
	require.Len(t, env.sms.sent, 1)
	text := env.sms.sent[0]
	env.sms.mu.Unlock()

	require.Contains(t, text, "https://visitgate.example.com/visitor/pass/")
	token := text[strings.LastIndex(text, "/")+1:]

	req := testutil.NewRequest(t, http.MethodGet, "/visitor/pass/"+token)
	dl := testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, dl, http.StatusOK)
	assert.Equal(t, "application/pdf", dl.Header().Get("Content-Type"))
}

func TestCancelEndpoint(t *testing.T) {
	env := newTestEnv(t)
	record := env.seedVisit(t, nil)

	rr := env.do(t, http.MethodPost, "/visitor/cancel", map[string]any{
		"visitor_id": record.ID.String(),
		"reason":     "host unavailable",
	})
	testutil.AssertEnvelope(t, rr, 1, "Visit cancelled.")

	rr = env.do(t, http.MethodPost, "/visitor/cancel", map[string]any{
		"visitor_id": record.ID.String(),
	})
	testutil.AssertEnvelope(t, rr, 0, "Cancellation reason is required.")
}

func TestRequirementsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	record := env.seedVisit(t, nil)

	rr := env.do(t, http.MethodPost, "/visitor/requirements", map[string]any{
		"visitor_id": record.ID.String(),
	})
	envlp := testutil.AssertEnvelope(t, rr, 1, "Requirements")
	nda := envlp.Rest["NDA"].(map[string]any)
	assert.Equal(t, false, nda["Enabled"])
}

func TestNdaPhotoEndpoint(t *testing.T) {
	env := newTestEnv(t)
	record := env.seedVisit(t, nil)

	rr := env.do(t, http.MethodPost, "/visitor/nda_photo", map[string]any{
		"visitor_id": record.ID.String(),
		"nda_answer": []byte("signed-nda"),
	})
	envlp := testutil.AssertEnvelope(t, rr, 1, "NDA/Photo updated successfully!")
	assert.Contains(t, envlp.Rest["NDA_URL"], "/visitor/image/")
	assert.Equal(t, "", envlp.Rest["PhotoURL"])

	req := testutil.NewRequest(t, http.MethodGet, "/visitor/image/"+record.ID.String()+"/nda")
	img := testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, img, http.StatusOK)
	assert.Equal(t, "signed-nda", img.Body.String())
}

func TestSubmitAnswersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	record := env.seedVisit(t, nil)
	question := domain.NewQuestionID()

	rr := env.do(t, http.MethodPost, "/visitor/submit_answer", map[string]any{
		"visitor_id": record.ID.String(),
		"answers": []map[string]any{
			{"question_id": question.String(), "answer_selection": "yes"},
			{"question_id": "garbage", "answer_selection": "no"},
		},
	})
	testutil.AssertEnvelope(t, rr, 1, "Answers submitted successfully")

	entries, err := env.visits.ListEntries(context.Background(), record.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, question, entries[0].QuestionID)
}

func TestVerifyQREndpoint(t *testing.T) {
	env := newTestEnv(t)
	registered, secret, err := env.devices.Register(context.Background(), "gate-1", nil)
	require.NoError(t, err)
	record := env.seedVisit(t, func(r *visit.Record) { r.Status = visit.StatusApproved })

	rr := env.do(t, http.MethodPost, "/visitor/verify/"+record.QRToken, map[string]any{
		"device_id":     registered.ID.String(),
		"device_secret": secret,
	})
	envlp := testutil.AssertEnvelope(t, rr, 1, "QR verified successfully.")
	assert.Equal(t, record.ID.String(), envlp.Rest["VisitorID"])

	rr = env.do(t, http.MethodPost, "/visitor/verify/"+record.QRToken, map[string]any{
		"device_id":     registered.ID.String(),
		"device_secret": "wrong",
	})
	testutil.AssertEnvelope(t, rr, 0, "invalid device secret")
}

func TestVerifyQREndpointUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	registered, secret, err := env.devices.Register(context.Background(), "gate-1", nil)
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/visitor/verify/"+uuid.NewString(), map[string]any{
		"device_id":     registered.ID.String(),
		"device_secret": secret,
	})
	testutil.AssertEnvelope(t, rr, 0, "QR does not match any registered visitor.")
}
