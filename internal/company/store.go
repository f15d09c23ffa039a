package company

import (
	"context"

	"visitgate/pkg/domain"
)

type Store interface {
	GetByID(ctx context.Context, id domain.CompanyID) (*Company, error)
	List(ctx context.Context) ([]*Company, error)
}
