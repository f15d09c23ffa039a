package employee

import (
	"context"

	"visitgate/pkg/domain"
)

type Store interface {
	GetByID(ctx context.Context, id domain.EmployeeID) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
}
