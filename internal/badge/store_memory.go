package badge

import (
	"context"
	"sync"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	attachments map[domain.AttachmentID]*Attachment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{attachments: make(map[domain.AttachmentID]*Attachment)}
}

func (s *InMemoryStore) Save(_ context.Context, attachment *Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *attachment
	s.attachments[attachment.ID] = &clone
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.AttachmentID) (*Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attachment, ok := s.attachments[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "attachment not found")
	}
	clone := *attachment
	return &clone, nil
}
