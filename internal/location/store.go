package location

import (
	"context"

	"visitgate/pkg/domain"
)

type Store interface {
	GetByID(ctx context.Context, id domain.LocationID) (*Location, error)
	List(ctx context.Context) ([]*Location, error)
	ListQuestions(ctx context.Context, id domain.LocationID) ([]Question, error)
}
