package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"impostor/internal/game"
)

// Inbound action names.
const (
	ActionCreateRoom       = "create_room"
	ActionJoinRoom         = "join_room"
	ActionStartGame        = "start_game"
	ActionSubmitComment    = "submit_comment"
	ActionSubmitVote       = "submit_vote"
	ActionConfirmNextRound = "confirm_next_round"
	ActionVoteEndGame      = "vote_end_game"
	ActionVoteContinueGame = "vote_continue_game"
)

// Actions is the engine surface the gateway dispatches into.
type Actions interface {
	CreateRoom(ctx context.Context, connectionID, name string) (*game.Room, error)
	JoinRoom(ctx context.Context, connectionID, code, name string) (*game.Room, error)
	StartGame(ctx context.Context, code, playerID string) (*game.Room, error)
	SubmitComment(ctx context.Context, code, playerID, text string) error
	SubmitVote(ctx context.Context, code, voterID, suspectID string) error
	ConfirmNextRound(ctx context.Context, code, playerID string) error
	VoteEndGame(ctx context.Context, code, playerID string) error
	VoteContinueGame(ctx context.Context, code, playerID string) error
	HandleDisconnect(ctx context.Context, connectionID string)
}

// actionFrame is the inbound wire frame.
type actionFrame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type actionPayload struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	PlayerID  string `json:"playerId"`
	VoterID   string `json:"voterId"`
	SuspectID string `json:"suspectId"`
	Text      string `json:"text"`
}

type errorPayload struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// dispatch routes one inbound frame to the engine. Duplicate
// contributions and phase-inapplicable actions are deliberate no-ops;
// everything else that fails is reported back to the sender only.
func (c *Client) dispatch(raw []byte) {
	var frame actionFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		log.Printf("⚠️ Connection %s sent an unparseable frame", c.ID)
		return
	}
	var p actionPayload
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			log.Printf("⚠️ Connection %s sent bad %s payload", c.ID, frame.Action)
			return
		}
	}

	ctx := context.Background()
	var err error

	switch frame.Action {
	case ActionCreateRoom:
		_, err = c.actions.CreateRoom(ctx, c.ID, p.Name)
	case ActionJoinRoom:
		_, err = c.actions.JoinRoom(ctx, c.ID, p.Code, p.Name)
	case ActionStartGame:
		_, err = c.actions.StartGame(ctx, p.Code, p.PlayerID)
	case ActionSubmitComment:
		err = c.actions.SubmitComment(ctx, p.Code, p.PlayerID, p.Text)
	case ActionSubmitVote:
		err = c.actions.SubmitVote(ctx, p.Code, p.VoterID, p.SuspectID)
	case ActionConfirmNextRound:
		err = c.actions.ConfirmNextRound(ctx, p.Code, p.PlayerID)
	case ActionVoteEndGame:
		err = c.actions.VoteEndGame(ctx, p.Code, p.PlayerID)
	case ActionVoteContinueGame:
		err = c.actions.VoteContinueGame(ctx, p.Code, p.PlayerID)
	default:
		log.Printf("⚠️ Connection %s sent unknown action %q", c.ID, frame.Action)
		return
	}

	if err == nil || isSilent(err) {
		return
	}
	c.hub.SendTo(c.ID, "error", errorPayload{Action: frame.Action, Message: err.Error()})
}

// isSilent reports whether an engine error is an intentional no-op
// rather than something the sender should hear about.
func isSilent(err error) bool {
	return errors.Is(err, game.ErrAlreadyActed) ||
		errors.Is(err, game.ErrRoundFinalized) ||
		errors.Is(err, game.ErrWrongPhase)
}
