package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore is a minimal in-memory Store for engine tests.
type testStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func newTestStore() *testStore {
	return &testStore{rooms: make(map[string]*Room)}
}

func (s *testStore) Create(ctx context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rooms[room.Code]; ok && existing.Phase != PhaseFinished {
		return ErrCodeInUse
	}
	s.rooms[room.Code] = room
	return nil
}

func (s *testStore) Load(ctx context.Context, code string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (s *testStore) Save(ctx context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code] = room
	return nil
}

func (s *testStore) LoadByConnection(ctx context.Context, connectionID string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.Players.FindByConnection(connectionID) != nil {
			return room, nil
		}
	}
	return nil, ErrRoomNotFound
}

func (s *testStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// fakeGateway records every broadcast and group operation.
type fakeGateway struct {
	mu         sync.Mutex
	broadcasts []recordedEvent
	directs    []recordedEvent
	groups     map[string]map[string]bool
}

type recordedEvent struct {
	Target  string // group or connection id
	Event   string
	Payload any
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{groups: make(map[string]map[string]bool)}
}

func (g *fakeGateway) JoinGroup(connectionID, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.groups[group] == nil {
		g.groups[group] = make(map[string]bool)
	}
	g.groups[group][connectionID] = true
}

func (g *fakeGateway) LeaveGroup(connectionID, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.groups[group], connectionID)
}

func (g *fakeGateway) BroadcastToGroup(group, event string, payload any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcasts = append(g.broadcasts, recordedEvent{Target: group, Event: event, Payload: payload})
}

func (g *fakeGateway) SendTo(connectionID, event string, payload any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.directs = append(g.directs, recordedEvent{Target: connectionID, Event: event, Payload: payload})
}

func (g *fakeGateway) eventCount(group, event string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for _, b := range g.broadcasts {
		if b.Target == group && b.Event == event {
			count++
		}
	}
	return count
}

func (g *fakeGateway) lastPayload(group, event string) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.broadcasts) - 1; i >= 0; i-- {
		if g.broadcasts[i].Target == group && g.broadcasts[i].Event == event {
			return g.broadcasts[i].Payload
		}
	}
	return nil
}

func (g *fakeGateway) inGroup(group, connectionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.groups[group][connectionID]
}

// fakeCatalog returns a fixed subject and counts calls.
type fakeCatalog struct {
	mu      sync.Mutex
	subject Subject
	calls   int
}

func (c *fakeCatalog) PickRandomSubject(ctx context.Context) (Subject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.subject, nil
}

func (c *fakeCatalog) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var testSubject = Subject{
	ID:          "s1",
	Name:        "Maradona",
	FullName:    "Diego Armando Maradona",
	ImageURL:    "https://example.com/d10s.png",
	Position:    "Attacking Midfielder",
	Nationality: "Argentina",
	BirthDate:   "1960-10-30",
}

type engineFixture struct {
	engine  *Engine
	store   *testStore
	gateway *fakeGateway
	catalog *fakeCatalog
}

// newFixture builds an engine whose timers are effectively disabled so
// tests drive every transition explicitly. Timer behavior has its own
// tests with short durations.
func newFixture(t *testing.T, mutate func(*EngineConfig)) *engineFixture {
	t.Helper()
	cfg := EngineConfig{
		CommentPhase:   time.Hour,
		VotePhase:      time.Hour,
		StartDelay:     time.Hour,
		NextRoundDelay: time.Hour,
		PickIndex:      func(n int) int { return 0 },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	st := newTestStore()
	gw := newFakeGateway()
	cat := &fakeCatalog{subject: testSubject}
	return &engineFixture{
		engine:  NewEngine(cfg, st, gw, cat),
		store:   st,
		gateway: gw,
		catalog: cat,
	}
}

// startedRoom creates a room with n players and starts the game. Player
// i joins from connection "conn-i"; the odd one out is the player the
// fixture's PickIndex selects.
func (f *engineFixture) startedRoom(t *testing.T, n int) *Room {
	t.Helper()
	ctx := context.Background()

	room, err := f.engine.CreateRoom(ctx, "conn-0", "Player0")
	require.NoError(t, err)
	for i := 1; i < n; i++ {
		_, err := f.engine.JoinRoom(ctx, connID(i), room.Code, playerName(i))
		require.NoError(t, err)
	}
	room, err = f.engine.StartGame(ctx, room.Code, room.Players[0].ID)
	require.NoError(t, err)
	return room
}

func connID(i int) string     { return "conn-" + string(rune('0'+i)) }
func playerName(i int) string { return "Player" + string(rune('0'+i)) }

// eliminate runs a full vote round that eliminates the given target:
// every living player votes for the target, which reaches quorum and
// resolves the round.
func (f *engineFixture) eliminate(t *testing.T, room *Room, targetID string) {
	t.Helper()
	ctx := context.Background()
	for _, p := range room.Players.Alive() {
		require.NoError(t, f.engine.SubmitVote(ctx, room.Code, p.ID, targetID))
	}
}

// confirmAll confirms the next round for every living player.
func (f *engineFixture) confirmAll(t *testing.T, room *Room) {
	t.Helper()
	ctx := context.Background()
	for _, p := range room.Players.Alive() {
		require.NoError(t, f.engine.ConfirmNextRound(ctx, room.Code, p.ID))
	}
}

func TestCreateRoom(t *testing.T) {
	f := newFixture(t, nil)

	room, err := f.engine.CreateRoom(context.Background(), "conn-0", "Alice")
	require.NoError(t, err)

	assert.Len(t, room.Code, 6)
	assert.Equal(t, PhaseWaiting, room.Phase)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "Alice", room.Players[0].Name)
	assert.Equal(t, room.Players[0].ID, room.HostID)

	assert.True(t, f.gateway.inGroup(room.Code, "conn-0"))
	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventRoomUpdated))
}

func TestJoinRoom(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	room, err := f.engine.CreateRoom(ctx, "conn-0", "Alice")
	require.NoError(t, err)

	t.Run("unknown code", func(t *testing.T) {
		_, err := f.engine.JoinRoom(ctx, "conn-x", "NOSUCH", "Bob")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("fills to capacity", func(t *testing.T) {
		for i := 1; i < 6; i++ {
			_, err := f.engine.JoinRoom(ctx, connID(i), room.Code, playerName(i))
			require.NoError(t, err)
		}
		assert.Len(t, room.Players, 6)

		_, err := f.engine.JoinRoom(ctx, "conn-7", room.Code, "Late")
		assert.ErrorIs(t, err, ErrRoomFull)
		assert.Len(t, room.Players, 6)
	})

	t.Run("rejected once playing", func(t *testing.T) {
		_, err := f.engine.StartGame(ctx, room.Code, room.Players[0].ID)
		require.NoError(t, err)

		_, err = f.engine.JoinRoom(ctx, "conn-8", room.Code, "TooLate")
		assert.ErrorIs(t, err, ErrRoomNotJoinable)
	})
}

func TestStartGame_PlayerBounds(t *testing.T) {
	ctx := context.Background()

	t.Run("two players is too few", func(t *testing.T) {
		f := newFixture(t, nil)
		room, err := f.engine.CreateRoom(ctx, "conn-0", "Player0")
		require.NoError(t, err)
		_, err = f.engine.JoinRoom(ctx, connID(1), room.Code, playerName(1))
		require.NoError(t, err)

		_, err = f.engine.StartGame(ctx, room.Code, room.Players[0].ID)
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
		assert.Equal(t, PhaseWaiting, room.Phase)
	})

	t.Run("three players start", func(t *testing.T) {
		f := newFixture(t, nil)
		room := f.startedRoom(t, 3)
		assert.Equal(t, PhasePlaying, room.Phase)
	})

	t.Run("seven players is too many", func(t *testing.T) {
		f := newFixture(t, nil)
		// A seventh player cannot join through the engine, so seed the
		// store with an oversized roster directly.
		players := make(Roster, 7)
		for i := range players {
			players[i] = NewPlayer(playerName(i), playerName(i), connID(i))
		}
		room := NewRoom("OVERFL", players[0])
		room.Players = players
		require.NoError(t, f.store.Create(ctx, room))

		_, err := f.engine.StartGame(ctx, "OVERFL", players[0].ID)
		assert.ErrorIs(t, err, ErrTooManyPlayers)
	})
}

func TestStartGame_Assignment(t *testing.T) {
	f := newFixture(t, func(cfg *EngineConfig) {
		cfg.PickIndex = func(n int) int { return 1 }
	})
	room := f.startedRoom(t, 4)

	oddCount := 0
	for _, p := range room.Players {
		if p.IsOddOneOut {
			oddCount++
		}
	}
	assert.Equal(t, 1, oddCount)
	assert.Equal(t, room.Players[1].ID, room.OddOneOutID)
	assert.True(t, room.Players[1].IsOddOneOut)

	// The catalog is queried exactly once and its snapshot is embedded
	// verbatim in the room and the first round.
	assert.Equal(t, 1, f.catalog.callCount())
	require.NotNil(t, room.Subject)
	assert.Equal(t, testSubject, *room.Subject)
	require.Len(t, room.Rounds, 1)
	assert.Equal(t, 1, room.Rounds[0].Number)
	assert.Equal(t, testSubject, room.Rounds[0].Subject)
	assert.Equal(t, StageCommenting, room.Rounds[0].Stage)

	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventGameStarted))
}

func TestStartGame_RequesterMustBeInRoom(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	room, err := f.engine.CreateRoom(ctx, "conn-0", "Player0")
	require.NoError(t, err)
	for i := 1; i < 3; i++ {
		_, err := f.engine.JoinRoom(ctx, connID(i), room.Code, playerName(i))
		require.NoError(t, err)
	}

	_, err = f.engine.StartGame(ctx, room.Code, "stranger")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestSubmitComment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	room := f.startedRoom(t, 3)
	alice := room.Players[0]

	require.NoError(t, f.engine.SubmitComment(ctx, room.Code, alice.ID, "fast on the ball"))

	t.Run("duplicate is rejected without overwrite", func(t *testing.T) {
		err := f.engine.SubmitComment(ctx, room.Code, alice.ID, "second thoughts")
		assert.ErrorIs(t, err, ErrAlreadyActed)

		round := room.CurrentRoundRef()
		require.Len(t, round.Comments, 1)
		assert.Equal(t, "fast on the ball", round.Comments[0].Text)
		assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventCommentAdded))
	})

	t.Run("unknown player", func(t *testing.T) {
		err := f.engine.SubmitComment(ctx, room.Code, "stranger", "hello")
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})
}

func TestCommentQuorum_StartsVotingOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	room := f.startedRoom(t, 3)

	require.NoError(t, f.engine.SubmitComment(ctx, room.Code, room.Players[0].ID, "a"))
	require.NoError(t, f.engine.SubmitComment(ctx, room.Code, room.Players[1].ID, "b"))
	assert.Equal(t, 0, f.gateway.eventCount(room.Code, EventVotingPhaseStarted))
	assert.Equal(t, StageCommenting, room.CurrentRoundRef().Stage)

	require.NoError(t, f.engine.SubmitComment(ctx, room.Code, room.Players[2].ID, "c"))
	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventVotingPhaseStarted))
	assert.Equal(t, StageVoting, room.CurrentRoundRef().Stage)

	payload := f.gateway.lastPayload(room.Code, EventVotingPhaseStarted).(VotingPhasePayload)
	assert.Len(t, payload.Comments, 3)
	assert.Len(t, payload.AlivePlayers, 3)
}

func TestVoteResolution_MajorityPlurality(t *testing.T) {
	f := newFixture(t, func(cfg *EngineConfig) {
		cfg.PickIndex = func(n int) int { return 3 }
	})
	ctx := context.Background()
	room := f.startedRoom(t, 4)
	a, b, c, d := room.Players[0], room.Players[1], room.Players[2], room.Players[3]

	// Two votes on C, one on B, D abstains until the timeout.
	require.NoError(t, f.engine.SubmitVote(ctx, room.Code, a.ID, c.ID))
	require.NoError(t, f.engine.SubmitVote(ctx, room.Code, b.ID, c.ID))
	require.NoError(t, f.engine.SubmitVote(ctx, room.Code, d.ID, b.ID))

	round := room.CurrentRoundRef()
	assert.False(t, round.Finalized)

	// Drive the vote timeout path directly.
	unlock := f.engine.lockRoom(room.Code)
	f.engine.resolveRound(ctx, room)
	unlock()

	assert.True(t, round.Finalized)
	assert.Equal(t, c.ID, round.EliminatedPlayerID)
	assert.True(t, c.Eliminated)
	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventVotingConcluded))

	payload := f.gateway.lastPayload(room.Code, EventRoundResult).(RoundResultPayload)
	require.NotNil(t, payload.Eliminated)
	assert.Equal(t, c.ID, payload.Eliminated.ID)
	assert.False(t, payload.WasOddOneOut)
	assert.Equal(t, map[string]int{c.ID: 2, b.ID: 1}, payload.Tally)
}

func TestVoteResolution_TieBreaksOnSmallestID(t *testing.T) {
	tally := map[string]int{"bbb": 2, "aaa": 2, "ccc": 1}
	assert.Equal(t, "aaa", topSuspect(tally))
}

func TestVoteResolution_FinalizesExactlyOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	room := f.startedRoom(t, 3)
	target := room.Players[1]

	f.eliminate(t, room, target.ID)
	require.True(t, room.CurrentRoundRef().Finalized)

	// A second resolution attempt (late timer) is a no-op.
	unlock := f.engine.lockRoom(room.Code)
	f.engine.resolveRound(ctx, room)
	unlock()

	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventVotingConcluded))
	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventRoundResult))
}

func TestVoteResolution_NoVotesMeansNoElimination(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	room := f.startedRoom(t, 3)

	unlock := f.engine.lockRoom(room.Code)
	f.engine.resolveRound(ctx, room)
	unlock()

	round := room.CurrentRoundRef()
	assert.True(t, round.Finalized)
	assert.Empty(t, round.EliminatedPlayerID)
	assert.Equal(t, 3, room.Players.AliveCount())

	payload := f.gateway.lastPayload(room.Code, EventRoundResult).(RoundResultPayload)
	assert.Nil(t, payload.Eliminated)
	assert.True(t, payload.AwaitingConfirmations)
}

func TestVote_DuplicateRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	room := f.startedRoom(t, 3)
	a, b, c := room.Players[0], room.Players[1], room.Players[2]

	require.NoError(t, f.engine.SubmitVote(ctx, room.Code, a.ID, b.ID))
	err := f.engine.SubmitVote(ctx, room.Code, a.ID, c.ID)
	assert.ErrorIs(t, err, ErrAlreadyActed)
	require.Len(t, room.CurrentRoundRef().Votes, 1)
	assert.Equal(t, b.ID, room.CurrentRoundRef().Votes[0].SuspectID)
	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventVoteRegistered))
}

func TestConfirmNextRound_Idempotent(t *testing.T) {
	f := newFixture(t, func(cfg *EngineConfig) {
		cfg.PickIndex = func(n int) int { return 0 }
	})
	ctx := context.Background()
	room := f.startedRoom(t, 4)
	honest := room.Players[1]

	f.eliminate(t, room, honest.ID)

	survivor := room.Players[2]
	require.NoError(t, f.engine.ConfirmNextRound(ctx, room.Code, survivor.ID))
	countAfterFirst := len(room.CurrentRoundRef().Confirmations)

	err := f.engine.ConfirmNextRound(ctx, room.Code, survivor.ID)
	assert.ErrorIs(t, err, ErrAlreadyActed)
	assert.Equal(t, countAfterFirst, len(room.CurrentRoundRef().Confirmations))
	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventConfirmationUpdated))
}

func TestEndGameCheck_OddOneOutCaught(t *testing.T) {
	f := newFixture(t, func(cfg *EngineConfig) {
		cfg.PickIndex = func(n int) int { return 1 }
	})
	room := f.startedRoom(t, 4)
	odd := room.Players[1]

	f.eliminate(t, room, odd.ID)
	f.confirmAll(t, room)

	assert.Equal(t, PhaseAwaitingDecision, room.Phase)
	assert.Empty(t, room.EndVotes)
	assert.Empty(t, room.ContinueVotes)

	payload := f.gateway.lastPayload(room.Code, EventOddOneOutEliminated).(OddOneOutEliminatedPayload)
	require.NotNil(t, payload.Subject)
	assert.Equal(t, testSubject, *payload.Subject, "revealed subject must match the one chosen at start")
	assert.Equal(t, 3, payload.AlivePlayers)
}

func TestEndGameCheck_OddOneOutWinsWhenTwoRemain(t *testing.T) {
	f := newFixture(t, func(cfg *EngineConfig) {
		cfg.PickIndex = func(n int) int { return 0 }
	})
	room := f.startedRoom(t, 3)
	honest := room.Players[1]

	f.eliminate(t, room, honest.ID)
	f.confirmAll(t, room)

	assert.Equal(t, PhaseFinished, room.Phase)
	assert.False(t, room.FinishedAt.IsZero())

	payload := f.gateway.lastPayload(room.Code, EventGameOver).(GameOverPayload)
	assert.Equal(t, "odd_one_out", payload.Winner)
	assert.Equal(t, "too_few_players", payload.Reason)
}

func TestEndGameCheck_NextRoundReusesSubject(t *testing.T) {
	f := newFixture(t, func(cfg *EngineConfig) {
		cfg.PickIndex = func(n int) int { return 0 }
		cfg.NextRoundDelay = 10 * time.Millisecond
		cfg.StartDelay = time.Hour // keep the comment phase from racing assertions
	})
	room := f.startedRoom(t, 4)
	honest := room.Players[2]

	f.eliminate(t, room, honest.ID)
	f.confirmAll(t, room)

	require.Eventually(t, func() bool {
		unlock := f.engine.lockRoom(room.Code)
		defer unlock()
		return room.CurrentRound == 2
	}, time.Second, 5*time.Millisecond)

	require.Len(t, room.Rounds, 2)
	assert.Equal(t, 2, room.Rounds[1].Number)
	assert.Equal(t, testSubject, room.Rounds[1].Subject, "next round reuses the same subject")
	assert.Equal(t, 1, f.catalog.callCount(), "subject is never re-rolled")
}

func TestDecisionVotes(t *testing.T) {
	ctx := context.Background()

	// caughtRoom returns a 4-player room whose odd one out has been
	// eliminated, leaving 3 alive in awaiting_decision.
	caughtRoom := func(t *testing.T) (*engineFixture, *Room) {
		f := newFixture(t, func(cfg *EngineConfig) {
			cfg.PickIndex = func(n int) int { return 0 }
		})
		room := f.startedRoom(t, 4)
		f.eliminate(t, room, room.OddOneOutID)
		f.confirmAll(t, room)
		require.Equal(t, PhaseAwaitingDecision, room.Phase)
		return f, room
	}

	t.Run("unanimous end returns to lobby", func(t *testing.T) {
		f, room := caughtRoom(t)
		for _, p := range room.Players.Alive() {
			require.NoError(t, f.engine.VoteEndGame(ctx, room.Code, p.ID))
		}
		assert.Equal(t, PhaseFinished, room.Phase)
		assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventReturnedToLobby))
	})

	t.Run("end and continue are mutually exclusive", func(t *testing.T) {
		f, room := caughtRoom(t)
		voter := room.Players.Alive()[0]
		require.NoError(t, f.engine.VoteEndGame(ctx, room.Code, voter.ID))

		assert.ErrorIs(t, f.engine.VoteContinueGame(ctx, room.Code, voter.ID), ErrAlreadyActed)
		assert.ErrorIs(t, f.engine.VoteEndGame(ctx, room.Code, voter.ID), ErrAlreadyActed)
	})

	t.Run("eliminated players cannot vote", func(t *testing.T) {
		f, room := caughtRoom(t)
		assert.ErrorIs(t, f.engine.VoteEndGame(ctx, room.Code, room.OddOneOutID), ErrWrongPhase)
	})

	t.Run("unanimous continue spawns a fresh room", func(t *testing.T) {
		f, room := caughtRoom(t)
		alive := room.Players.Alive()
		for _, p := range alive {
			require.NoError(t, f.engine.VoteContinueGame(ctx, room.Code, p.ID))
		}

		assert.Equal(t, PhaseFinished, room.Phase)

		payload := f.gateway.lastPayload(room.Code, EventNewRoomCreated)
		assert.Nil(t, payload, "announcement goes to the new room's group")

		require.Equal(t, 2, f.store.count())
		var next *Room
		for _, r := range f.store.rooms {
			if r.Code != room.Code {
				next = r
			}
		}
		require.NotNil(t, next)
		assert.Equal(t, PhaseWaiting, next.Phase)
		require.Len(t, next.Players, len(alive))
		for i, p := range next.Players {
			assert.Equal(t, alive[i].Name, p.Name)
			assert.False(t, p.Eliminated)
			assert.False(t, p.IsOddOneOut)
		}
		assert.Equal(t, next.Players[0].ID, next.HostID)

		// Connections moved from the old group to the new one.
		for _, p := range alive {
			assert.False(t, f.gateway.inGroup(room.Code, p.ConnectionID))
			assert.True(t, f.gateway.inGroup(next.Code, p.ConnectionID))
		}
		assert.Equal(t, 1, f.gateway.eventCount(next.Code, EventNewRoomCreated))
	})

	t.Run("too few survivors waits instead", func(t *testing.T) {
		f := newFixture(t, func(cfg *EngineConfig) {
			cfg.PickIndex = func(n int) int { return 0 }
		})
		room := f.startedRoom(t, 3)
		f.eliminate(t, room, room.OddOneOutID)
		f.confirmAll(t, room)
		require.Equal(t, PhaseAwaitingDecision, room.Phase)

		for _, p := range room.Players.Alive() {
			require.NoError(t, f.engine.VoteContinueGame(ctx, room.Code, p.ID))
		}

		assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventWaitingForPlayers))
		assert.Equal(t, PhaseAwaitingDecision, room.Phase)
		assert.Equal(t, 1, f.store.count(), "no new room was created")
	})
}

func TestHandleDisconnect(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	room := f.startedRoom(t, 3)
	host := room.Players[0]

	f.engine.HandleDisconnect(ctx, "conn-0")

	assert.True(t, host.Eliminated)
	assert.Empty(t, host.ConnectionID)
	assert.Equal(t, 1, f.gateway.eventCount(room.Code, EventPlayerDisconnected))

	// The host is not reassigned and the roster keeps the player.
	assert.Equal(t, host.ID, room.HostID)
	assert.Len(t, room.Players, 3)

	t.Run("unknown connection is a no-op", func(t *testing.T) {
		before := len(f.gateway.broadcasts)
		f.engine.HandleDisconnect(ctx, "conn-ghost")
		assert.Equal(t, before, len(f.gateway.broadcasts))
	})
}
