package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/audit"
	"visitgate/internal/visit"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/requestcontext"
)

func TestVerifyQRApprovedToday(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, func(r *visit.Record) { r.Status = visit.StatusApproved })

	record, err := h.svc.VerifyQR(h.ctx(), seeded.QRToken, domain.DeviceID{}, "secret")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, record.ID)
	assert.True(t, h.audit.has(audit.ActionQRVerified))
}

func TestVerifyQRChecksDeviceFirst(t *testing.T) {
	h := newHarness(t)
	h.devices.err = dErrors.New(dErrors.CodeUnauthorized, "invalid device secret")
	seeded := h.seedVisit(t, func(r *visit.Record) { r.Status = visit.StatusApproved })

	_, err := h.svc.VerifyQR(h.ctx(), seeded.QRToken, domain.DeviceID{}, "wrong")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.True(t, h.audit.has(audit.ActionQRRejected))
}

func TestVerifyQRUnknownToken(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.VerifyQR(h.ctx(), "no-such-token", domain.DeviceID{}, "secret")
	require.Error(t, err)
	assert.Equal(t, "QR does not match any registered visitor.", dErrors.MessageOf(err))
}

func TestVerifyQRPendingVisitLooksUnregistered(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, nil)

	_, err := h.svc.VerifyQR(h.ctx(), seeded.QRToken, domain.DeviceID{}, "secret")
	require.Error(t, err)
	assert.Equal(t, "QR does not match any registered visitor.", dErrors.MessageOf(err))
}

func TestVerifyQRWrongDay(t *testing.T) {
	h := newHarness(t)
	seeded := h.seedVisit(t, func(r *visit.Record) {
		r.Status = visit.StatusApproved
		r.VisitingDate = h.now.AddDate(0, 0, 1)
	})

	_, err := h.svc.VerifyQR(h.ctx(), seeded.QRToken, domain.DeviceID{}, "secret")
	require.Error(t, err)
	assert.Equal(t, "Visitor registered, but not scheduled for today.", dErrors.MessageOf(err))

	// The same scan passes once the visiting day arrives.
	tomorrow := requestcontext.WithTime(context.Background(), h.now.Add(24*time.Hour))
	record, err := h.svc.VerifyQR(tomorrow, seeded.QRToken, domain.DeviceID{}, "secret")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, record.ID)
}

func TestVerifyQRMissingToken(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.VerifyQR(h.ctx(), "", domain.DeviceID{}, "secret")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
