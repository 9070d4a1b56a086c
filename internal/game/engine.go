package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists rooms. Create must be atomic with respect to code
// collisions; Load and LoadByConnection return ErrRoomNotFound when the
// room or connection is unknown.
type Store interface {
	Create(ctx context.Context, room *Room) error
	Load(ctx context.Context, code string) (*Room, error)
	Save(ctx context.Context, room *Room) error
	LoadByConnection(ctx context.Context, connectionID string) (*Room, error)
}

// Gateway is the real-time transport the engine broadcasts through. The
// group key is always the room code.
type Gateway interface {
	JoinGroup(connectionID, group string)
	LeaveGroup(connectionID, group string)
	BroadcastToGroup(group, event string, payload any)
	SendTo(connectionID, event string, payload any)
}

// Catalog supplies the reveal subject, picked exactly once per game.
type Catalog interface {
	PickRandomSubject(ctx context.Context) (Subject, error)
}

// EngineConfig holds the room and pacing rules for the engine.
type EngineConfig struct {
	MinPlayers     int
	MaxPlayers     int
	RoomCodeLength int
	CommentPhase   time.Duration
	VotePhase      time.Duration
	StartDelay     time.Duration
	NextRoundDelay time.Duration

	// PickIndex selects the odd one out among n players. Defaults to
	// rand.Intn; tests inject a deterministic pick.
	PickIndex func(n int) int
}

// Engine drives every room through its state machine. All mutations of a
// room, whether player actions arriving over the gateway or phase timers
// firing, are serialized through a per-room lock held across the whole
// load-validate-apply-save-broadcast cycle.
type Engine struct {
	cfg     EngineConfig
	store   Store
	gateway Gateway
	catalog Catalog

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	timers map[string]*time.Timer
}

// NewEngine creates an engine. Zero config fields fall back to the
// original game rules (3-6 players, 30s phases, 6-char codes).
func NewEngine(cfg EngineConfig, store Store, gateway Gateway, catalog Catalog) *Engine {
	if cfg.MinPlayers == 0 {
		cfg.MinPlayers = 3
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = 6
	}
	if cfg.RoomCodeLength == 0 {
		cfg.RoomCodeLength = 6
	}
	if cfg.CommentPhase == 0 {
		cfg.CommentPhase = 30 * time.Second
	}
	if cfg.VotePhase == 0 {
		cfg.VotePhase = 30 * time.Second
	}
	if cfg.StartDelay == 0 {
		cfg.StartDelay = time.Second
	}
	if cfg.NextRoundDelay == 0 {
		cfg.NextRoundDelay = 2 * time.Second
	}
	if cfg.PickIndex == nil {
		cfg.PickIndex = rand.Intn
	}

	return &Engine{
		cfg:     cfg,
		store:   store,
		gateway: gateway,
		catalog: catalog,
		locks:   make(map[string]*sync.Mutex),
		timers:  make(map[string]*time.Timer),
	}
}

// lockRoom acquires the serialization lock for a room code and returns
// the unlock func.
func (e *Engine) lockRoom(code string) func() {
	e.mu.Lock()
	l, ok := e.locks[code]
	if !ok {
		l = &sync.Mutex{}
		e.locks[code] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// setTimer replaces the pending phase timer for a room. A room has at
// most one pending timer at any time.
func (e *Engine) setTimer(code string, t *time.Timer) {
	e.mu.Lock()
	if old, ok := e.timers[code]; ok {
		old.Stop()
	}
	e.timers[code] = t
	e.mu.Unlock()
}

// clearTimer stops and drops the pending phase timer for a room.
func (e *Engine) clearTimer(code string) {
	e.mu.Lock()
	if t, ok := e.timers[code]; ok {
		t.Stop()
		delete(e.timers, code)
	}
	e.mu.Unlock()
}

// after schedules fn to run on the room after d. The callback re-loads
// the room under the room lock and aborts if the phase version moved in
// the meantime, so a timer racing a quorum-driven transition is a no-op.
// Stopping the timer alone is not enough: delivery may already be in
// flight when the transition happens.
func (e *Engine) after(code string, version uint64, d time.Duration, fn func(ctx context.Context, room *Room)) {
	e.setTimer(code, time.AfterFunc(d, func() {
		ctx := context.Background()

		unlock := e.lockRoom(code)
		defer unlock()

		room, err := e.store.Load(ctx, code)
		if err != nil {
			return
		}
		if room.PhaseVersion != version {
			return // phase already advanced, stale timer
		}
		fn(ctx, room)
	}))
}

// save persists the room, logging instead of failing the caller: by the
// time save runs the mutation has been validated and applied, and the
// stores in use only fail on infrastructure errors.
func (e *Engine) save(ctx context.Context, room *Room) {
	if err := e.store.Save(ctx, room); err != nil {
		log.Printf("❌ Failed to save room %s: %v", room.Code, err)
	}
}

func (e *Engine) newRoomCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	n := e.cfg.RoomCodeLength
	if n > len(raw) {
		n = len(raw)
	}
	return strings.ToUpper(raw[:n])
}

// createUniqueRoom allocates a fresh code and stores the room built for
// it, retrying on the (unlikely) code collision.
func (e *Engine) createUniqueRoom(ctx context.Context, build func(code string) *Room) (*Room, error) {
	for i := 0; i < 10; i++ {
		room := build(e.newRoomCode())
		err := e.store.Create(ctx, room)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, ErrCodeInUse) {
			return nil, err
		}
	}
	return nil, ErrCodeInUse
}

// CreateRoom allocates a room with the caller as host and joins the
// caller's connection to the room's broadcast group.
func (e *Engine) CreateRoom(ctx context.Context, connectionID, name string) (*Room, error) {
	host := NewPlayer(uuid.NewString(), name, connectionID)

	room, err := e.createUniqueRoom(ctx, func(code string) *Room {
		return NewRoom(code, host)
	})
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	log.Printf("🆕 Room %s created by %s", room.Code, name)
	e.gateway.JoinGroup(connectionID, room.Code)
	e.gateway.BroadcastToGroup(room.Code, EventRoomUpdated, room)
	return room, nil
}

// JoinRoom adds a player to a waiting room and announces the updated
// roster to the whole room.
func (e *Engine) JoinRoom(ctx context.Context, connectionID, code, name string) (*Room, error) {
	unlock := e.lockRoom(code)
	defer unlock()

	room, err := e.store.Load(ctx, code)
	if err != nil {
		return nil, err
	}

	player := NewPlayer(uuid.NewString(), name, connectionID)
	if err := room.AddPlayer(player, e.cfg.MaxPlayers); err != nil {
		return nil, err
	}
	e.save(ctx, room)

	e.gateway.JoinGroup(connectionID, code)
	e.gateway.BroadcastToGroup(code, EventRoomUpdated, room)
	log.Printf("👥 %s joined room %s (%d players)", name, code, len(room.Players))
	return room, nil
}

// StartGame picks the odd one out and the game's reveal subject, seeds
// round 1 and schedules the first comment phase. Any roster member may
// start the game.
func (e *Engine) StartGame(ctx context.Context, code, playerID string) (*Room, error) {
	unlock := e.lockRoom(code)
	defer unlock()

	room, err := e.store.Load(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Phase != PhaseWaiting {
		return nil, ErrGameInProgress
	}
	if room.Players.FindByID(playerID) == nil {
		return nil, ErrPlayerNotFound
	}
	if len(room.Players) < e.cfg.MinPlayers {
		return nil, ErrNotEnoughPlayers
	}
	if len(room.Players) > e.cfg.MaxPlayers {
		return nil, ErrTooManyPlayers
	}

	// Fetch the subject before touching room state so a catalog failure
	// leaves the room untouched.
	subject, err := e.catalog.PickRandomSubject(ctx)
	if err != nil {
		return nil, fmt.Errorf("pick subject: %w", err)
	}

	odd := room.Players[e.cfg.PickIndex(len(room.Players))]
	odd.IsOddOneOut = true
	room.OddOneOutID = odd.ID

	room.Subject = &subject
	room.Rounds = append(room.Rounds, NewRound(1, subject))
	room.CurrentRound = 1
	room.Phase = PhasePlaying
	room.PhaseVersion++
	e.save(ctx, room)

	log.Printf("🎮 Game started in room %s, subject %q", code, subject.Name)
	e.gateway.BroadcastToGroup(code, EventGameStarted, room)

	e.after(code, room.PhaseVersion, e.cfg.StartDelay, e.beginCommentPhase)
	return room, nil
}

// HandleDisconnect marks the disconnected player eliminated and
// broadcasts the notice. The player stays on the roster so round history
// remains addressable; any quorum effect is picked up by the next phase
// check. The host is not reassigned.
func (e *Engine) HandleDisconnect(ctx context.Context, connectionID string) {
	room, err := e.store.LoadByConnection(ctx, connectionID)
	if err != nil {
		return
	}

	unlock := e.lockRoom(room.Code)
	defer unlock()

	// Re-load under the lock; the index lookup above ran unserialized.
	room, err = e.store.Load(ctx, room.Code)
	if err != nil {
		return
	}
	player := room.Players.FindByConnection(connectionID)
	if player == nil {
		return
	}

	player.Eliminated = true
	player.ConnectionID = ""
	e.save(ctx, room)

	log.Printf("🔴 %s disconnected from room %s", player.Name, room.Code)
	e.gateway.BroadcastToGroup(room.Code, EventPlayerDisconnected, player)
}
