package employee

import (
	"context"
	"sort"
	"sync"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	employees map[domain.EmployeeID]*Employee
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{employees: make(map[domain.EmployeeID]*Employee)}
}

// Seed inserts an employee, replacing any existing entry with the same ID.
func (s *InMemoryStore) Seed(emp *Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *emp
	s.employees[emp.ID] = &clone
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.EmployeeID) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "employee not found")
	}
	clone := *emp
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		clone := *emp
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
