package catalog

import (
	"context"
	"sort"
	"sync"

	"impostor/internal/game"
)

// MemorySubjectStore keeps the subject pool in memory.
type MemorySubjectStore struct {
	mu       sync.RWMutex
	subjects map[string]game.Subject
	names    map[string]bool
}

// NewMemorySubjectStore creates an empty in-memory subject store.
func NewMemorySubjectStore() *MemorySubjectStore {
	return &MemorySubjectStore{
		subjects: make(map[string]game.Subject),
		names:    make(map[string]bool),
	}
}

func (s *MemorySubjectStore) Add(ctx context.Context, subject game.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subjects[subject.ID] = subject
	s.names[subject.Name] = true
	return nil
}

func (s *MemorySubjectStore) Get(ctx context.Context, id string) (game.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subject, ok := s.subjects[id]
	if !ok {
		return game.Subject{}, ErrSubjectNotFound
	}
	return subject, nil
}

// List returns subjects in a stable id order.
func (s *MemorySubjectStore) List(ctx context.Context) ([]game.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.subjects))
	for id := range s.subjects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	subjects := make([]game.Subject, 0, len(ids))
	for _, id := range ids {
		subjects = append(subjects, s.subjects[id])
	}
	return subjects, nil
}

func (s *MemorySubjectStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.names[name], nil
}
