// Package employee holds the host directory.
package employee

import (
	"time"

	"visitgate/pkg/domain"
)

// Employee is a host a visitor can be signed in against. UserID links the
// employee to their platform account for realtime notifications; hosts
// without an account simply get no desktop pings.
type Employee struct {
	ID        domain.EmployeeID
	CompanyID domain.CompanyID
	UserID    *domain.UserID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}
