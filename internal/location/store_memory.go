package location

import (
	"context"
	"sort"
	"sync"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	locations map[domain.LocationID]*Location
	questions map[domain.LocationID][]Question
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		locations: make(map[domain.LocationID]*Location),
		questions: make(map[domain.LocationID][]Question),
	}
}

// Seed inserts a location with its questions, replacing any existing entry.
func (s *InMemoryStore) Seed(loc *Location, questions ...Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *loc
	s.locations[loc.ID] = &clone
	s.questions[loc.ID] = append([]Question(nil), questions...)
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.LocationID) (*Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "location not found")
	}
	clone := *loc
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Location, 0, len(s.locations))
	for _, loc := range s.locations {
		clone := *loc
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) ListQuestions(_ context.Context, id domain.LocationID) ([]Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.locations[id]; !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "location not found")
	}
	questions := append([]Question(nil), s.questions[id]...)
	sort.Slice(questions, func(i, j int) bool { return questions[i].Sequence < questions[j].Sequence })
	return questions, nil
}
