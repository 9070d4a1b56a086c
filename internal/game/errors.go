package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomNotJoinable  = errors.New("room is not accepting players")
	ErrRoomFull         = errors.New("room is full")
	ErrCodeInUse        = errors.New("room code already in use")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrTooManyPlayers   = errors.New("too many players to start")
	ErrGameInProgress   = errors.New("game has already started")
	ErrPlayerNotFound   = errors.New("player not found in room")
	ErrRoundFinalized   = errors.New("round is already finalized")
	ErrAlreadyActed     = errors.New("player already contributed this phase")
	ErrWrongPhase       = errors.New("action not valid in current phase")
)
