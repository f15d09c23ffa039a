// Package location holds company locations and their check-in requirements.
package location

import (
	"time"

	"visitgate/pkg/domain"
)

// Capability is one optional check-in step: whether the location offers it
// and whether a visitor must complete it before check-in.
type Capability struct {
	Enabled  bool `json:"Enabled"`
	Required bool `json:"Required"`
}

// Location is one physical site a visitor can sign in at. The capability
// flags drive which extra steps the kiosk shows before check-in.
type Location struct {
	ID        domain.LocationID
	CompanyID domain.CompanyID
	Name      string

	NDA        Capability
	NDADetails string
	Photo      Capability
	Questions  Capability

	CreatedAt time.Time
}

// Question is one yes/no questionnaire item asked at this location.
type Question struct {
	ID         domain.QuestionID
	LocationID domain.LocationID
	Text       string
	Required   bool
	Sequence   int
}
