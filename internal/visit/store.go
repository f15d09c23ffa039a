package visit

import (
	"context"

	"visitgate/pkg/daywindow"
	"visitgate/pkg/domain"
)

// Counts is the dashboard aggregate over one day window.
type Counts struct {
	Total      int `json:"Total"`
	Pending    int `json:"Pending"`
	Approved   int `json:"Approved"`
	Cancelled  int `json:"Cancelled"`
	CheckedIn  int `json:"CheckedIn"`
	CheckedOut int `json:"CheckedOut"`
	NotArrived int `json:"NotArrived"`
}

type Store interface {
	Create(ctx context.Context, record *Record) error
	Update(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, id domain.VisitID) (*Record, error)
	// GetByPhoneInWindow returns the most recently created visit for the
	// phone number whose visiting date falls inside the window.
	GetByPhoneInWindow(ctx context.Context, phone string, w daywindow.Window) (*Record, error)
	GetByQRToken(ctx context.Context, token string) (*Record, error)
	ListInWindow(ctx context.Context, w daywindow.Window) ([]*Record, error)
	CountsInWindow(ctx context.Context, w daywindow.Window) (Counts, error)

	ListEntries(ctx context.Context, visitID domain.VisitID) ([]NotebookEntry, error)
	UpsertEntry(ctx context.Context, entry NotebookEntry) error
}
