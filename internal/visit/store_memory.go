package visit

import (
	"context"
	"sync"

	"visitgate/pkg/daywindow"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

// InMemoryStore backs the service in tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.VisitID]*Record
	entries map[domain.VisitID]map[domain.QuestionID]NotebookEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[domain.VisitID]*Record),
		entries: make(map[domain.VisitID]map[domain.QuestionID]NotebookEntry),
	}
}

func errVisitNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "visit not found")
}

func (s *InMemoryStore) Create(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; ok {
		return dErrors.New(dErrors.CodeConflict, "visit already exists")
	}
	// Mirrors the partial unique index on (phone, visiting day) in the
	// Postgres schema; the service's find-then-create spans two lock
	// acquisitions, so the check has to live inside this one.
	day := daywindow.For(record.VisitingDate)
	for _, existing := range s.records {
		if existing.Phone == record.Phone && day.Contains(existing.VisitingDate) {
			return dErrors.New(dErrors.CodeConflict, "visit already exists for this phone today")
		}
	}
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		return errVisitNotFound()
	}
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.VisitID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, errVisitNotFound()
	}
	clone := *record
	return &clone, nil
}

func (s *InMemoryStore) GetByPhoneInWindow(_ context.Context, phone string, w daywindow.Window) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *Record
	for _, record := range s.records {
		if record.Phone != phone || !w.Contains(record.VisitingDate) {
			continue
		}
		if best == nil || record.CreatedAt.After(best.CreatedAt) {
			best = record
		}
	}
	if best == nil {
		return nil, errVisitNotFound()
	}
	clone := *best
	return &clone, nil
}

func (s *InMemoryStore) GetByQRToken(_ context.Context, token string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.QRToken == token {
			clone := *record
			return &clone, nil
		}
	}
	return nil, errVisitNotFound()
}

func (s *InMemoryStore) ListInWindow(_ context.Context, w daywindow.Window) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, record := range s.records {
		if w.Contains(record.VisitingDate) {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountsInWindow(ctx context.Context, w daywindow.Window) (Counts, error) {
	records, err := s.ListInWindow(ctx, w)
	if err != nil {
		return Counts{}, err
	}
	var counts Counts
	for _, record := range records {
		counts.Total++
		switch record.Status {
		case StatusPending:
			counts.Pending++
		case StatusApproved:
			counts.Approved++
		case StatusCancelled:
			counts.Cancelled++
		}
		switch record.Attendance() {
		case AttendanceCheckedIn:
			counts.CheckedIn++
		case AttendanceCheckedOut:
			counts.CheckedOut++
		default:
			counts.NotArrived++
		}
	}
	return counts, nil
}

func (s *InMemoryStore) ListEntries(_ context.Context, visitID domain.VisitID) ([]NotebookEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []NotebookEntry
	for _, entry := range s.entries[visitID] {
		out = append(out, entry)
	}
	return out, nil
}

func (s *InMemoryStore) UpsertEntry(_ context.Context, entry NotebookEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[entry.VisitID]; !ok {
		return errVisitNotFound()
	}
	byQuestion, ok := s.entries[entry.VisitID]
	if !ok {
		byQuestion = make(map[domain.QuestionID]NotebookEntry)
		s.entries[entry.VisitID] = byQuestion
	}
	byQuestion[entry.QuestionID] = entry
	return nil
}
