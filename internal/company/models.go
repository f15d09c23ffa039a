// Package company holds the tenant companies visitors sign in to.
package company

import (
	"time"

	"visitgate/pkg/domain"
)

// Company is one tenant. The NDA content is company-wide; locations decide
// whether signing it is required.
type Company struct {
	ID         domain.CompanyID
	Name       string
	NDAContent string
	CreatedAt  time.Time
}
