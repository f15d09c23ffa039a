// Package dashboard serves the reception desk's live view of today's
// visits.
package dashboard

import (
	"context"

	"visitgate/internal/visit"
	"visitgate/pkg/daywindow"
	"visitgate/pkg/requestcontext"
)

type Service struct {
	visits visit.Store
}

func New(visits visit.Store) *Service {
	return &Service{visits: visits}
}

// Counts aggregates today's visits by status and attendance.
func (s *Service) Counts(ctx context.Context) (visit.Counts, error) {
	return s.visits.CountsInWindow(ctx, daywindow.For(requestcontext.Now(ctx)))
}

// Today lists today's visit records, newest first per the store contract.
func (s *Service) Today(ctx context.Context) ([]*visit.Record, error) {
	return s.visits.ListInWindow(ctx, daywindow.For(requestcontext.Now(ctx)))
}
