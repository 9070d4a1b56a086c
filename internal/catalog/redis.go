package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"impostor/internal/game"
)

const (
	subjectKeyPrefix = "subject:"
	subjectIDsKey    = "subject_ids"
	subjectNamesKey  = "subject_names"
)

// RedisSubjectStore persists the subject pool as JSON documents in
// Redis, with an id set for listing and a name set for dedupe.
type RedisSubjectStore struct {
	client *redis.Client
}

// NewRedisSubjectStore creates a Redis-backed subject store.
func NewRedisSubjectStore(client *redis.Client) (*RedisSubjectStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisSubjectStore{client: client}, nil
}

func (s *RedisSubjectStore) Add(ctx context.Context, subject game.Subject) error {
	data, err := json.Marshal(subject)
	if err != nil {
		return fmt.Errorf("failed to marshal subject: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, subjectKeyPrefix+subject.ID, data, 0)
	pipe.SAdd(ctx, subjectIDsKey, subject.ID)
	pipe.SAdd(ctx, subjectNamesKey, subject.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save subject: %w", err)
	}
	return nil
}

func (s *RedisSubjectStore) Get(ctx context.Context, id string) (game.Subject, error) {
	data, err := s.client.Get(ctx, subjectKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Subject{}, ErrSubjectNotFound
	}
	if err != nil {
		return game.Subject{}, fmt.Errorf("failed to load subject: %w", err)
	}

	var subject game.Subject
	if err := json.Unmarshal(data, &subject); err != nil {
		return game.Subject{}, fmt.Errorf("failed to unmarshal subject %s: %w", id, err)
	}
	return subject, nil
}

// List returns subjects in a stable id order. Redis set order is
// unspecified, so the ids are sorted before loading.
func (s *RedisSubjectStore) List(ctx context.Context) ([]game.Subject, error) {
	ids, err := s.client.SMembers(ctx, subjectIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list subject ids: %w", err)
	}
	sort.Strings(ids)

	subjects := make([]game.Subject, 0, len(ids))
	for _, id := range ids {
		subject, err := s.Get(ctx, id)
		if errors.Is(err, ErrSubjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	return subjects, nil
}

func (s *RedisSubjectStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	exists, err := s.client.SIsMember(ctx, subjectNamesKey, name).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check subject name: %w", err)
	}
	return exists, nil
}
