package audit

import (
	"context"

	"visitgate/pkg/domain"
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByVisit(ctx context.Context, visitID domain.VisitID) ([]Event, error)
}
