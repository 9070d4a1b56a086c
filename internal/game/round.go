package game

// RoundStage is the sub-state a round moves through. Transitions only go
// forward; checking the stage before acting keeps quorum- and
// timer-driven transitions idempotent when they race.
type RoundStage string

const (
	StageCommenting RoundStage = "commenting"
	StageVoting     RoundStage = "voting"
	StageResolved   RoundStage = "resolved"
)

// Comment is one player's clue for the round.
type Comment struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}

// Vote is one player's accusation for the round.
type Vote struct {
	VoterID   string `json:"voterId"`
	SuspectID string `json:"suspectId"`
}

// Round is one comment-vote-resolve cycle. Rounds are appended to the
// room's history and never removed; only the last round of a room may be
// unfinalized.
type Round struct {
	Number             int        `json:"number"`
	Subject            Subject    `json:"subject"` // snapshot, identical for every round of a game
	Stage              RoundStage `json:"stage"`
	Comments           []Comment  `json:"comments"`
	Votes              []Vote     `json:"votes"`
	EliminatedPlayerID string     `json:"eliminatedPlayerId,omitempty"`
	Finalized          bool       `json:"finalized"`
	Confirmations      []string   `json:"confirmations"` // player ids ready for the next round
}

// NewRound creates an empty round for the given number and subject.
func NewRound(number int, subject Subject) *Round {
	return &Round{
		Number:        number,
		Subject:       subject,
		Stage:         StageCommenting,
		Comments:      []Comment{},
		Votes:         []Vote{},
		Confirmations: []string{},
	}
}

// HasComment reports whether the player already commented this round.
func (r *Round) HasComment(playerID string) bool {
	for _, c := range r.Comments {
		if c.PlayerID == playerID {
			return true
		}
	}
	return false
}

// HasVote reports whether the player already voted this round.
func (r *Round) HasVote(voterID string) bool {
	for _, v := range r.Votes {
		if v.VoterID == voterID {
			return true
		}
	}
	return false
}

// HasConfirmation reports whether the player already confirmed the next round.
func (r *Round) HasConfirmation(playerID string) bool {
	for _, id := range r.Confirmations {
		if id == playerID {
			return true
		}
	}
	return false
}

// Tally counts votes per suspect id.
func (r *Round) Tally() map[string]int {
	tally := make(map[string]int, len(r.Votes))
	for _, v := range r.Votes {
		tally[v.SuspectID]++
	}
	return tally
}
