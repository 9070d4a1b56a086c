package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"impostor/internal/game"
)

const (
	roomKeyPrefix  = "room:"
	connKeyPrefix  = "conn:"
	activeRoomsKey = "active_rooms"

	// Finished rooms and connection indexes expire on their own so an
	// abandoned deployment does not accumulate keys forever.
	finishedRoomTTL = 24 * time.Hour
	connIndexTTL    = 24 * time.Hour
)

// RedisStore persists rooms as JSON documents in Redis. Room codes live
// in an active set for uniqueness checks, and each live connection maps
// to its room code so disconnects resolve without a payload.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed room store and verifies the
// connection.
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Create stores a new room, failing if its code is already active.
func (s *RedisStore) Create(ctx context.Context, room *game.Room) error {
	added, err := s.client.SAdd(ctx, activeRoomsKey, room.Code).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve room code: %w", err)
	}
	if added == 0 {
		return game.ErrCodeInUse
	}
	return s.Save(ctx, room)
}

// Save persists a room and refreshes its connection index entries.
func (s *RedisStore) Save(ctx context.Context, room *game.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	pipe := s.client.Pipeline()

	roomKey := roomKeyPrefix + room.Code
	if room.Phase == game.PhaseFinished {
		pipe.Set(ctx, roomKey, data, finishedRoomTTL)
		pipe.SRem(ctx, activeRoomsKey, room.Code)
	} else {
		pipe.Set(ctx, roomKey, data, 0)
		pipe.SAdd(ctx, activeRoomsKey, room.Code)
	}

	for _, p := range room.Players {
		if p.ConnectionID != "" {
			pipe.Set(ctx, connKeyPrefix+p.ConnectionID, room.Code, connIndexTTL)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// Load retrieves a room by code.
func (s *RedisStore) Load(ctx context.Context, code string) (*game.Room, error) {
	data, err := s.client.Get(ctx, roomKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	var room game.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", code, err)
	}
	return &room, nil
}

// LoadByConnection resolves a connection to its room via the index.
func (s *RedisStore) LoadByConnection(ctx context.Context, connectionID string) (*game.Room, error) {
	code, err := s.client.Get(ctx, connKeyPrefix+connectionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve connection: %w", err)
	}
	return s.Load(ctx, code)
}
