package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/pkg/domain"
	"visitgate/pkg/requestcontext"
)

func TestPublisherEmit(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store, slog.New(slog.DiscardHandler))

	at := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "VisitgateKiosk/2.1", "kiosk")

	visitID := domain.NewVisitID()
	publisher.Emit(ctx, Event{
		Action:  ActionCheckedIn,
		VisitID: &visitID,
		Phone:   "9876543210",
	})

	events := store.All()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, ActionCheckedIn, event.Action)
	assert.Equal(t, at, event.Timestamp)
	assert.Equal(t, "req-42", event.RequestID)
	assert.Equal(t, "10.0.0.1", event.ClientIP)
	assert.Equal(t, "kiosk", event.Platform)

	byVisit, err := store.ListByVisit(ctx, visitID)
	require.NoError(t, err)
	assert.Len(t, byVisit, 1)
}
