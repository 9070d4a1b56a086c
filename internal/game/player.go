package game

import (
	"time"
)

// Player represents a player in a room. Eliminated is monotonic: once a
// player is voted out or disconnects it never flips back within the same
// room.
type Player struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ConnectionID string    `json:"connectionId,omitempty"` // live connection, empty after disconnect
	IsOddOneOut  bool      `json:"isOddOneOut"`
	Eliminated   bool      `json:"eliminated"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// NewPlayer creates a new player
func NewPlayer(id, name, connectionID string) *Player {
	return &Player{
		ID:           id,
		Name:         name,
		ConnectionID: connectionID,
		JoinedAt:     time.Now(),
	}
}

// Roster is a room's ordered player list. Join order is preserved; the
// first entry is the host.
type Roster []*Player

// FindByID returns the player with the given id, or nil.
func (r Roster) FindByID(id string) *Player {
	for _, p := range r {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindByConnection returns the player bound to the given connection, or nil.
func (r Roster) FindByConnection(connectionID string) *Player {
	if connectionID == "" {
		return nil
	}
	for _, p := range r {
		if p.ConnectionID == connectionID {
			return p
		}
	}
	return nil
}

// Alive returns the non-eliminated players in join order.
func (r Roster) Alive() []*Player {
	alive := make([]*Player, 0, len(r))
	for _, p := range r {
		if !p.Eliminated {
			alive = append(alive, p)
		}
	}
	return alive
}

// AliveCount returns the number of non-eliminated players.
func (r Roster) AliveCount() int {
	count := 0
	for _, p := range r {
		if !p.Eliminated {
			count++
		}
	}
	return count
}
