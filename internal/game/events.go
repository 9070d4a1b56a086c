package game

// Broadcast event names. These are the wire-level names clients subscribe
// to; changing one is a breaking protocol change.
const (
	EventRoomUpdated          = "room_updated"
	EventGameStarted          = "game_started"
	EventCommentPhaseStarted  = "comment_phase_started"
	EventCommentAdded         = "comment_added"
	EventVotingPhaseStarted   = "voting_phase_started"
	EventVoteRegistered       = "vote_registered"
	EventVotingConcluded      = "voting_concluded"
	EventRoundResult          = "round_result"
	EventConfirmationUpdated  = "confirmation_updated"
	EventOddOneOutEliminated  = "odd_one_out_eliminated"
	EventGameOver             = "game_over"
	EventEndVoteUpdated       = "end_vote_updated"
	EventContinueVoteUpdated  = "continue_vote_updated"
	EventNewRoomCreated       = "new_room_created"
	EventWaitingForPlayers    = "waiting_for_players"
	EventPlayerDisconnected   = "player_disconnected"
	EventReturnedToLobby      = "returned_to_lobby"
)

// CommentPhasePayload announces a comment phase and its deadline.
type CommentPhasePayload struct {
	Room       *Room  `json:"room"`
	Round      *Round `json:"round"`
	DurationMs int64  `json:"durationMs"`
}

// CommentAddedPayload carries running comment totals.
type CommentAddedPayload struct {
	PlayerID      string `json:"playerId"`
	PlayerName    string `json:"playerName"`
	Text          string `json:"text"`
	TotalComments int    `json:"totalComments"`
	ActivePlayers int    `json:"activePlayers"`
}

// VotingComment is a round comment annotated with its author's name for
// the voting screen.
type VotingComment struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
}

// VotingPhasePayload announces a voting phase and its deadline.
type VotingPhasePayload struct {
	Comments     []VotingComment `json:"comments"`
	AlivePlayers []*Player       `json:"alivePlayers"`
	DurationMs   int64           `json:"durationMs"`
}

// VoteRegisteredPayload carries running vote totals.
type VoteRegisteredPayload struct {
	VoterID       string `json:"voterId"`
	TotalVotes    int    `json:"totalVotes"`
	ActivePlayers int    `json:"activePlayers"`
}

// RoundResultPayload reveals the elimination outcome of a round.
// Eliminated is nil when the vote timed out with no ballots cast.
type RoundResultPayload struct {
	Eliminated            *Player        `json:"eliminated"`
	WasOddOneOut          bool           `json:"wasOddOneOut"`
	Tally                 map[string]int `json:"tally"`
	AwaitingConfirmations bool           `json:"awaitingConfirmations"`
}

// ConfirmationPayload carries running next-round confirmation totals.
type ConfirmationPayload struct {
	Confirmations int `json:"confirmations"`
	ActivePlayers int `json:"activePlayers"`
}

// OddOneOutEliminatedPayload reveals the true subject once the odd one
// out has been caught, and prompts the end-or-continue decision.
type OddOneOutEliminatedPayload struct {
	Message      string   `json:"message"`
	AlivePlayers int      `json:"alivePlayers"`
	Subject      *Subject `json:"subject"`
	Room         *Room    `json:"room"`
}

// GameOverPayload announces an odd-one-out win.
type GameOverPayload struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
	Room   *Room  `json:"room"`
}

// DecisionVotePayload carries running end/continue vote totals.
type DecisionVotePayload struct {
	Votes        int `json:"votes"`
	AlivePlayers int `json:"alivePlayers"`
}

// NewRoomCreatedPayload announces the follow-up room after a unanimous
// continue vote.
type NewRoomCreatedPayload struct {
	Room    *Room  `json:"room"`
	Message string `json:"message"`
}

// WaitingForPlayersPayload is sent instead of a follow-up room when too
// few players survived.
type WaitingForPlayersPayload struct {
	Message        string `json:"message"`
	CurrentPlayers int    `json:"currentPlayers"`
	PlayersNeeded  int    `json:"playersNeeded"`
}
