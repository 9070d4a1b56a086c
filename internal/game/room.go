package game

import (
	"time"
)

// Phase represents the room-level state of a game
type Phase string

const (
	PhaseWaiting          Phase = "waiting"
	PhasePlaying          Phase = "playing"
	PhaseAwaitingDecision Phase = "awaiting_decision"
	PhaseFinished         Phase = "finished"
)

// Room is one game instance, addressed by a short join code. Rooms carry
// no lock of their own: the engine serializes every mutation of a room
// (player actions and timer callbacks alike) through a per-code lock, so
// the document survives a JSON round-trip through any store unchanged.
type Room struct {
	Code          string   `json:"code"`
	Players       Roster   `json:"players"`
	HostID        string   `json:"hostId"`
	OddOneOutID   string   `json:"oddOneOutId,omitempty"`
	Phase         Phase    `json:"phase"`
	CurrentRound  int      `json:"currentRound"`
	Rounds        []*Round `json:"rounds"`
	Subject       *Subject `json:"subject,omitempty"` // fixed at game start, reused by every round
	EndVotes      []string `json:"endVotes"`          // player ids voting to end after the odd one out fell
	ContinueVotes []string `json:"continueVotes"`     // player ids voting to play another game

	// PhaseVersion increases on every phase transition. Timer callbacks
	// capture it when scheduled and abort if it moved, so a stale timer
	// can never re-run a transition that already happened.
	PhaseVersion uint64 `json:"phaseVersion"`

	CreatedAt  time.Time `json:"createdAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// NewRoom creates a waiting room hosted by the given player.
func NewRoom(code string, host *Player) *Room {
	return &Room{
		Code:          code,
		Players:       Roster{host},
		HostID:        host.ID,
		Phase:         PhaseWaiting,
		Rounds:        []*Round{},
		EndVotes:      []string{},
		ContinueVotes: []string{},
		CreatedAt:     time.Now(),
	}
}

// AddPlayer appends a player to the roster.
func (r *Room) AddPlayer(player *Player, maxPlayers int) error {
	if r.Phase != PhaseWaiting {
		return ErrRoomNotJoinable
	}
	if len(r.Players) >= maxPlayers {
		return ErrRoomFull
	}
	r.Players = append(r.Players, player)
	return nil
}

// CurrentRoundRef returns the round in progress, or nil before the game
// starts.
func (r *Room) CurrentRoundRef() *Round {
	if r.CurrentRound < 1 || r.CurrentRound > len(r.Rounds) {
		return nil
	}
	return r.Rounds[r.CurrentRound-1]
}

// HasEndVote reports whether the player already voted to end the game.
func (r *Room) HasEndVote(playerID string) bool {
	for _, id := range r.EndVotes {
		if id == playerID {
			return true
		}
	}
	return false
}

// HasContinueVote reports whether the player already voted to continue.
func (r *Room) HasContinueVote(playerID string) bool {
	for _, id := range r.ContinueVotes {
		if id == playerID {
			return true
		}
	}
	return false
}
