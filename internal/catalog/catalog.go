// Package catalog manages the pool of reveal subjects games draw from.
// Subjects are bulk-loaded over HTTP and handed to the engine one at a
// time, picked uniformly at random at game start.
package catalog

import (
	"context"
	"errors"
	"math/rand"

	"github.com/google/uuid"

	"impostor/internal/game"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrNoSubjects      = errors.New("no subjects loaded")
)

// SubjectStore persists the subject pool.
type SubjectStore interface {
	Add(ctx context.Context, subject game.Subject) error
	Get(ctx context.Context, id string) (game.Subject, error)
	List(ctx context.Context) ([]game.Subject, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// Service is the catalog collaborator the engine and the HTTP surface
// share.
type Service struct {
	store SubjectStore

	// pick selects an index among n subjects. Defaults to rand.Intn;
	// tests inject a deterministic pick.
	pick func(n int) int
}

// NewService creates a catalog service over the given store.
func NewService(store SubjectStore) *Service {
	return &Service{store: store, pick: rand.Intn}
}

// LoadSubjects inserts the given subjects, skipping any whose name is
// already present, and returns how many were inserted.
func (s *Service) LoadSubjects(ctx context.Context, subjects []game.Subject) (int, error) {
	inserted := 0
	for _, subject := range subjects {
		exists, err := s.store.ExistsByName(ctx, subject.Name)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}
		if subject.ID == "" {
			subject.ID = uuid.NewString()
		}
		if err := s.store.Add(ctx, subject); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// Subjects lists the whole pool.
func (s *Service) Subjects(ctx context.Context) ([]game.Subject, error) {
	return s.store.List(ctx)
}

// Subject returns one subject by id.
func (s *Service) Subject(ctx context.Context, id string) (game.Subject, error) {
	return s.store.Get(ctx, id)
}

// PickRandomSubject returns one uniformly random subject. It satisfies
// the engine's catalog contract.
func (s *Service) PickRandomSubject(ctx context.Context) (game.Subject, error) {
	subjects, err := s.store.List(ctx)
	if err != nil {
		return game.Subject{}, err
	}
	if len(subjects) == 0 {
		return game.Subject{}, ErrNoSubjects
	}
	return subjects[s.pick(len(subjects))], nil
}
