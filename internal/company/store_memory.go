package company

import (
	"context"
	"sort"
	"sync"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	companies map[domain.CompanyID]*Company
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{companies: make(map[domain.CompanyID]*Company)}
}

// Seed inserts a company, replacing any existing entry with the same ID.
func (s *InMemoryStore) Seed(company *Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *company
	s.companies[company.ID] = &clone
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.CompanyID) (*Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "company not found")
	}
	clone := *company
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Company, 0, len(s.companies))
	for _, company := range s.companies {
		clone := *company
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
