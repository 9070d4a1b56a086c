package store

import (
	"context"
	"sync"

	"impostor/internal/game"
)

// MemoryStore holds all room state in memory. The engine serializes
// access per room, so the store only guards its own maps.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*game.Room
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*game.Room),
	}
}

// Create stores a new room, failing if its code is already taken by a
// room that has not finished.
func (s *MemoryStore) Create(ctx context.Context, room *game.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.rooms[room.Code]; ok && existing.Phase != game.PhaseFinished {
		return game.ErrCodeInUse
	}
	s.rooms[room.Code] = room
	return nil
}

// Load retrieves a room by code
func (s *MemoryStore) Load(ctx context.Context, code string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[code]
	if !exists {
		return nil, game.ErrRoomNotFound
	}
	return room, nil
}

// Save updates a room
func (s *MemoryStore) Save(ctx context.Context, room *game.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[room.Code] = room
	return nil
}

// LoadByConnection finds the room containing a player bound to the
// given connection, preferring rooms still in play.
func (s *MemoryStore) LoadByConnection(ctx context.Context, connectionID string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var finished *game.Room
	for _, room := range s.rooms {
		if room.Players.FindByConnection(connectionID) == nil {
			continue
		}
		if room.Phase != game.PhaseFinished {
			return room, nil
		}
		finished = room
	}
	if finished != nil {
		return finished, nil
	}
	return nil, game.ErrRoomNotFound
}
