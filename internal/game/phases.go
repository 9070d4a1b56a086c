package game

import (
	"context"
	"log"
	"sort"
	"time"
)

// beginCommentPhase opens the comment window for the current round and
// arms the comment timeout. Runs with the room lock held.
func (e *Engine) beginCommentPhase(ctx context.Context, room *Room) {
	if room.Phase != PhasePlaying {
		return
	}
	round := room.CurrentRoundRef()
	if round == nil {
		return
	}

	room.PhaseVersion++
	e.save(ctx, room)

	log.Printf("🎮 Room %s round %d: comment phase", room.Code, round.Number)
	e.gateway.BroadcastToGroup(room.Code, EventCommentPhaseStarted, CommentPhasePayload{
		Room:       room,
		Round:      round,
		DurationMs: e.cfg.CommentPhase.Milliseconds(),
	})

	e.after(room.Code, room.PhaseVersion, e.cfg.CommentPhase, e.beginVotingPhase)
}

// beginVotingPhase moves the current round from commenting to voting.
// Reached from the comment quorum and from the comment timeout; the
// stage check makes the second arrival a no-op, so voting_phase_started
// goes out exactly once per round. Runs with the room lock held.
func (e *Engine) beginVotingPhase(ctx context.Context, room *Room) {
	if room.Phase != PhasePlaying {
		return
	}
	round := room.CurrentRoundRef()
	if round == nil || round.Finalized || round.Stage != StageCommenting {
		return
	}

	round.Stage = StageVoting
	room.PhaseVersion++
	e.clearTimer(room.Code)
	e.save(ctx, room)

	comments := make([]VotingComment, 0, len(round.Comments))
	for _, c := range round.Comments {
		name := "unknown"
		if p := room.Players.FindByID(c.PlayerID); p != nil {
			name = p.Name
		}
		comments = append(comments, VotingComment{PlayerID: c.PlayerID, PlayerName: name, Text: c.Text})
	}

	log.Printf("🗳️ Room %s round %d: voting phase", room.Code, round.Number)
	e.gateway.BroadcastToGroup(room.Code, EventVotingPhaseStarted, VotingPhasePayload{
		Comments:     comments,
		AlivePlayers: room.Players.Alive(),
		DurationMs:   e.cfg.VotePhase.Milliseconds(),
	})

	e.after(room.Code, room.PhaseVersion, e.cfg.VotePhase, e.resolveRound)
}

// SubmitComment records a player's clue for the current round. Each
// living player gets one comment per round; once every living player has
// commented the round moves to voting early.
func (e *Engine) SubmitComment(ctx context.Context, code, playerID, text string) error {
	unlock := e.lockRoom(code)
	defer unlock()

	room, err := e.store.Load(ctx, code)
	if err != nil {
		return err
	}
	round := room.CurrentRoundRef()
	if room.Phase != PhasePlaying || round == nil {
		return ErrWrongPhase
	}
	player := room.Players.FindByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if player.Eliminated {
		return ErrWrongPhase
	}
	if round.Finalized {
		return ErrRoundFinalized
	}
	if round.HasComment(playerID) {
		return ErrAlreadyActed
	}

	round.Comments = append(round.Comments, Comment{PlayerID: playerID, Text: text})
	e.save(ctx, room)

	active := room.Players.AliveCount()
	e.gateway.BroadcastToGroup(code, EventCommentAdded, CommentAddedPayload{
		PlayerID:      playerID,
		PlayerName:    player.Name,
		Text:          text,
		TotalComments: len(round.Comments),
		ActivePlayers: active,
	})
	log.Printf("💬 %s commented in room %s (%d/%d)", player.Name, code, len(round.Comments), active)

	if len(round.Comments) >= active {
		e.beginVotingPhase(ctx, room)
	}
	return nil
}

// SubmitVote records a player's accusation for the current round. Once
// every living player has voted the round resolves early.
func (e *Engine) SubmitVote(ctx context.Context, code, voterID, suspectID string) error {
	unlock := e.lockRoom(code)
	defer unlock()

	room, err := e.store.Load(ctx, code)
	if err != nil {
		return err
	}
	round := room.CurrentRoundRef()
	if room.Phase != PhasePlaying || round == nil {
		return ErrWrongPhase
	}
	voter := room.Players.FindByID(voterID)
	if voter == nil {
		return ErrPlayerNotFound
	}
	if voter.Eliminated {
		return ErrWrongPhase
	}
	if round.Finalized {
		return ErrRoundFinalized
	}
	if round.HasVote(voterID) {
		return ErrAlreadyActed
	}

	round.Votes = append(round.Votes, Vote{VoterID: voterID, SuspectID: suspectID})
	e.save(ctx, room)

	active := room.Players.AliveCount()
	e.gateway.BroadcastToGroup(code, EventVoteRegistered, VoteRegisteredPayload{
		VoterID:       voterID,
		TotalVotes:    len(round.Votes),
		ActivePlayers: active,
	})
	log.Printf("🗳️ %s voted in room %s (%d/%d)", voter.Name, code, len(round.Votes), active)

	if len(round.Votes) >= active {
		e.resolveRound(ctx, room)
	}
	return nil
}

// resolveRound tallies the current round's votes and finalizes it.
// Reached from the vote quorum and from the vote timeout; the stage
// check makes the second arrival a no-op, so a round finalizes exactly
// once. A timeout with no ballots finalizes the round with no
// elimination instead of stalling. Runs with the room lock held.
func (e *Engine) resolveRound(ctx context.Context, room *Room) {
	if room.Phase != PhasePlaying {
		return
	}
	round := room.CurrentRoundRef()
	if round == nil || round.Finalized || round.Stage == StageResolved {
		return
	}

	tally := round.Tally()

	if len(round.Votes) == 0 {
		round.Stage = StageResolved
		round.Finalized = true
		room.PhaseVersion++
		e.clearTimer(room.Code)
		e.save(ctx, room)

		log.Printf("🤷 Room %s round %d: no votes cast, nobody eliminated", room.Code, round.Number)
		e.gateway.BroadcastToGroup(room.Code, EventVotingConcluded, struct{}{})
		e.gateway.BroadcastToGroup(room.Code, EventRoundResult, RoundResultPayload{
			Eliminated:            nil,
			Tally:                 tally,
			AwaitingConfirmations: true,
		})
		return
	}

	suspectID := topSuspect(tally)
	eliminated := room.Players.FindByID(suspectID)
	if eliminated == nil {
		// Votes name someone outside the roster. Leave the round open and
		// let the operator see it rather than eliminating nobody silently.
		log.Printf("❌ Room %s round %d: top suspect %s is not on the roster, round unresolved",
			room.Code, round.Number, suspectID)
		return
	}

	eliminated.Eliminated = true
	round.EliminatedPlayerID = eliminated.ID
	round.Stage = StageResolved
	round.Finalized = true
	room.PhaseVersion++
	e.clearTimer(room.Code)
	e.save(ctx, room)

	log.Printf("❌ %s was eliminated in room %s round %d", eliminated.Name, room.Code, round.Number)
	e.gateway.BroadcastToGroup(room.Code, EventVotingConcluded, struct{}{})
	e.gateway.BroadcastToGroup(room.Code, EventRoundResult, RoundResultPayload{
		Eliminated:            eliminated,
		WasOddOneOut:          eliminated.IsOddOneOut,
		Tally:                 tally,
		AwaitingConfirmations: true,
	})
}

// topSuspect returns the suspect with the most votes; ties go to the
// lexicographically smallest id so the outcome is reproducible.
func topSuspect(tally map[string]int) string {
	ids := make([]string, 0, len(tally))
	for id := range tally {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := ""
	bestCount := -1
	for _, id := range ids {
		if tally[id] > bestCount {
			best = id
			bestCount = tally[id]
		}
	}
	return best
}

// ConfirmNextRound records a living player's readiness for the next
// round. When every living player has confirmed, the end-game check
// runs.
func (e *Engine) ConfirmNextRound(ctx context.Context, code, playerID string) error {
	unlock := e.lockRoom(code)
	defer unlock()

	room, err := e.store.Load(ctx, code)
	if err != nil {
		return err
	}
	round := room.CurrentRoundRef()
	if room.Phase != PhasePlaying || round == nil || !round.Finalized {
		return ErrWrongPhase
	}
	player := room.Players.FindByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if player.Eliminated {
		return ErrWrongPhase
	}
	if round.HasConfirmation(playerID) {
		return ErrAlreadyActed
	}

	round.Confirmations = append(round.Confirmations, playerID)
	e.save(ctx, room)

	active := room.Players.AliveCount()
	e.gateway.BroadcastToGroup(code, EventConfirmationUpdated, ConfirmationPayload{
		Confirmations: len(round.Confirmations),
		ActivePlayers: active,
	})

	if len(round.Confirmations) >= active {
		e.checkEndGame(ctx, room)
	}
	return nil
}

// checkEndGame decides what follows a finalized round: reveal and
// end-or-continue prompt if the odd one out fell, an odd-one-out win if
// too few honest players remain, or the next round. Runs with the room
// lock held.
func (e *Engine) checkEndGame(ctx context.Context, room *Room) {
	alive := room.Players.Alive()

	oddAlive := false
	others := 0
	for _, p := range alive {
		if p.ID == room.OddOneOutID {
			oddAlive = true
		} else {
			others++
		}
	}

	if !oddAlive {
		room.Phase = PhaseAwaitingDecision
		room.EndVotes = []string{}
		room.ContinueVotes = []string{}
		room.PhaseVersion++
		e.clearTimer(room.Code)
		e.save(ctx, room)

		log.Printf("🎉 Room %s: odd one out eliminated, awaiting decision", room.Code)
		e.gateway.BroadcastToGroup(room.Code, EventOddOneOutEliminated, OddOneOutEliminatedPayload{
			Message:      "The odd one out was eliminated! What do you want to do?",
			AlivePlayers: len(alive),
			Subject:      room.Subject,
			Room:         room,
		})
		return
	}

	if others == 0 || len(alive) <= 2 {
		reason := "too_few_players"
		if others == 0 {
			reason = "all_eliminated"
		}
		room.Phase = PhaseFinished
		room.FinishedAt = time.Now()
		room.PhaseVersion++
		e.clearTimer(room.Code)
		e.save(ctx, room)

		log.Printf("🏁 Room %s: odd one out wins (%s)", room.Code, reason)
		e.gateway.BroadcastToGroup(room.Code, EventGameOver, GameOverPayload{
			Winner: "odd_one_out",
			Reason: reason,
			Room:   room,
		})
		return
	}

	room.PhaseVersion++
	e.save(ctx, room)
	e.after(room.Code, room.PhaseVersion, e.cfg.NextRoundDelay, e.startNextRound)
}

// startNextRound appends a fresh round reusing the game's fixed subject
// and schedules its comment phase. Runs with the room lock held.
func (e *Engine) startNextRound(ctx context.Context, room *Room) {
	if room.Phase != PhasePlaying || room.Subject == nil {
		return
	}

	room.CurrentRound++
	room.Rounds = append(room.Rounds, NewRound(room.CurrentRound, *room.Subject))
	room.PhaseVersion++
	e.save(ctx, room)

	log.Printf("🆕 Room %s: round %d", room.Code, room.CurrentRound)
	e.gateway.BroadcastToGroup(room.Code, EventRoomUpdated, room)

	e.after(room.Code, room.PhaseVersion, e.cfg.StartDelay, e.beginCommentPhase)
}

// VoteEndGame records a living player's vote to end the game after the
// odd one out fell. A unanimous end vote finishes the room.
func (e *Engine) VoteEndGame(ctx context.Context, code, playerID string) error {
	unlock := e.lockRoom(code)
	defer unlock()

	room, err := e.store.Load(ctx, code)
	if err != nil {
		return err
	}
	if err := validateDecisionVote(room, playerID); err != nil {
		return err
	}

	room.EndVotes = append(room.EndVotes, playerID)
	e.save(ctx, room)

	alive := room.Players.AliveCount()
	e.gateway.BroadcastToGroup(code, EventEndVoteUpdated, DecisionVotePayload{
		Votes:        len(room.EndVotes),
		AlivePlayers: alive,
	})

	if len(room.EndVotes) >= alive {
		room.Phase = PhaseFinished
		room.FinishedAt = time.Now()
		room.PhaseVersion++
		e.clearTimer(code)
		e.save(ctx, room)

		log.Printf("🏁 Room %s: ended by unanimous vote", code)
		e.gateway.BroadcastToGroup(code, EventReturnedToLobby, struct{}{})
	}
	return nil
}

// VoteContinueGame records a living player's vote to play another game.
// A unanimous continue vote spawns a fresh room with the survivors.
func (e *Engine) VoteContinueGame(ctx context.Context, code, playerID string) error {
	unlock := e.lockRoom(code)
	defer unlock()

	room, err := e.store.Load(ctx, code)
	if err != nil {
		return err
	}
	if err := validateDecisionVote(room, playerID); err != nil {
		return err
	}

	room.ContinueVotes = append(room.ContinueVotes, playerID)
	e.save(ctx, room)

	alive := room.Players.AliveCount()
	e.gateway.BroadcastToGroup(code, EventContinueVoteUpdated, DecisionVotePayload{
		Votes:        len(room.ContinueVotes),
		AlivePlayers: alive,
	})

	if len(room.ContinueVotes) >= alive {
		e.continueAsNewRoom(ctx, room)
	}
	return nil
}

// validateDecisionVote shares the guard for end/continue votes: the
// room must be awaiting the decision and the player must be alive and
// not have cast either vote (the two votes are mutually exclusive).
func validateDecisionVote(room *Room, playerID string) error {
	if room.Phase != PhaseAwaitingDecision {
		return ErrWrongPhase
	}
	player := room.Players.FindByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if player.Eliminated {
		return ErrWrongPhase
	}
	if room.HasEndVote(playerID) || room.HasContinueVote(playerID) {
		return ErrAlreadyActed
	}
	return nil
}

// continueAsNewRoom spawns a follow-up room carrying the survivors with
// per-game flags reset, migrates their connections to the new broadcast
// group and finishes the old room. With fewer than MinPlayers survivors
// the group is told to wait instead. Runs with the room lock held.
func (e *Engine) continueAsNewRoom(ctx context.Context, room *Room) {
	alive := room.Players.Alive()

	if len(alive) < e.cfg.MinPlayers {
		log.Printf("⏳ Room %s: only %d survivors, waiting for more players", room.Code, len(alive))
		e.gateway.BroadcastToGroup(room.Code, EventWaitingForPlayers, WaitingForPlayersPayload{
			Message:        "Not enough players for a new room. Waiting for more players...",
			CurrentPlayers: len(alive),
			PlayersNeeded:  e.cfg.MinPlayers,
		})
		return
	}

	carried := make(Roster, 0, len(alive))
	for _, p := range alive {
		carried = append(carried, &Player{
			ID:           p.ID,
			Name:         p.Name,
			ConnectionID: p.ConnectionID,
			JoinedAt:     time.Now(),
		})
	}

	next, err := e.createUniqueRoom(ctx, func(code string) *Room {
		fresh := NewRoom(code, carried[0])
		fresh.Players = carried
		return fresh
	})
	if err != nil {
		log.Printf("❌ Failed to create follow-up room for %s: %v", room.Code, err)
		return
	}

	room.Phase = PhaseFinished
	room.FinishedAt = time.Now()
	room.PhaseVersion++
	e.clearTimer(room.Code)
	e.save(ctx, room)

	for _, p := range carried {
		if p.ConnectionID == "" {
			continue
		}
		e.gateway.LeaveGroup(p.ConnectionID, room.Code)
		e.gateway.JoinGroup(p.ConnectionID, next.Code)
	}

	log.Printf("🆕 Room %s continues as %s with %d players", room.Code, next.Code, len(carried))
	e.gateway.BroadcastToGroup(next.Code, EventNewRoomCreated, NewRoomCreatedPayload{
		Room:    next,
		Message: "New room created! Start the game when everyone is ready.",
	})
}
