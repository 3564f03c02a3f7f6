package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState

	// Board
	GetConfig() *BoardConfig
	Grid() *Grid
	GetRoom(name string) (*Room, error)
	RenderBoard() []string

	// Players and cards
	AddPlayer(name string, token Token) (*Player, error)
	Players() []*Player
	Player(ref string) (*Player, error)
	CurrentPlayer() *Player
	RoomOfPlayer(player *Player) (*Room, error)
	GetCard(name string) (Card, error)
	DealCards() error

	// Movement operations
	RollDice() int
	PlanPath(player *Player, room *Room) ([]Position, error)
	MovePlayer(player *Player, steps int, room *Room, prompter DoorPrompter, renderer Renderer) (*MovementOutcome, error)

	// History
	GetMoveHistory() []MoveRecord
	GetLastMove() *MoveRecord
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *BoardConfig
	grid   *Grid
	rng    *rand.Rand
	dice   Dice
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithSeed makes the solution draw and the dice deterministic
func WithSeed(seed uint64) Option {
	return func(e *GameEngine) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithDice replaces the default pair of six-sided dice
func WithDice(d Dice) Option {
	return func(e *GameEngine) {
		e.dice = d
	}
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *BoardConfig, opts ...Option) (*GameEngine, error) {
	grid, err := ValidateBoardConfig(config)
	if err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		grid:   grid,
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.rng == nil {
		engine.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if engine.dice == nil {
		engine.dice = NewStandardDice(engine.rng)
	}

	state, err := engine.newState()
	if err != nil {
		return nil, err
	}
	engine.state = state
	return engine, nil
}

// NewEngineWithDefaults creates a new game engine on the classic board
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	engine, err := NewEngine(DefaultBoardConfig(), opts...)
	if err != nil {
		panic(fmt.Sprintf("engine: default board is invalid: %v", err))
	}
	return engine
}

func (e *GameEngine) newState() (*GameState, error) {
	solution, rest, err := DrawSolution(e.config.Deck(), e.rng)
	if err != nil {
		return nil, err
	}
	return &GameState{
		ConfigName:  e.config.Name,
		Players:     []*Player{},
		Solution:    solution,
		Deck:        rest,
		Message:     e.config.Messages.Welcome,
		MoveHistory: []MoveRecord{},
	}, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	for _, p := range state.Players {
		if !e.grid.IsWalkable(p.Pos) {
			return fmt.Errorf("player %s at %s is not on a walkable cell", p.Name, p.Pos)
		}
		if p.Room != "" {
			if room, ok := e.grid.RoomOf(p.Pos); !ok || !strings.EqualFold(room.Name, p.Room) {
				return fmt.Errorf("player %s is in %s but stands at %s", p.Name, p.Room, p.Pos)
			}
		}
	}
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveRecord{}
	}
	e.state = state
	return nil
}

// Reset deals a fresh game with the same players back at their starts
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prev := e.state

	state, err := e.newState()
	if err != nil {
		// The deck was validated when the engine was built
		panic(fmt.Sprintf("engine: reset failed: %v", err))
	}
	for _, p := range prev.Players {
		state.Players = append(state.Players, &Player{
			ID:        p.ID,
			Name:      p.Name,
			Token:     p.Token,
			Pos:       e.config.StartFor(p.Token),
			Inventory: []Card{},
		})
	}
	state.MoveHistory = prev.MoveHistory
	state.TotalMoves = prev.TotalMoves

	e.state = state
	return e.state
}

// GetConfig returns the board configuration
func (e *GameEngine) GetConfig() *BoardConfig {
	return e.config
}

// Grid returns the board classification
func (e *GameEngine) Grid() *Grid {
	return e.grid
}

// GetRoom finds a room by name. An exact case-insensitive match wins; otherwise
// the name may be any part of exactly one room name ("bill" for Billiard Room).
func (e *GameEngine) GetRoom(name string) (*Room, error) {
	if room, ok := e.grid.Room(name); ok {
		return room, nil
	}
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil, fmt.Errorf("%w: empty name", ErrRoomNotFound)
	}

	var matches []*Room
	for _, r := range e.grid.Rooms() {
		if strings.Contains(strings.ToLower(r.Name), query) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, name)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, r := range matches {
			names[i] = r.Name
		}
		return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguousRoom, name, strings.Join(names, ", "))
	}
}

// AddPlayer seats a new player on the token's start cell
func (e *GameEngine) AddPlayer(name string, token Token) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("player name is required")
	}
	if len(name) > MaxNameLength {
		return nil, fmt.Errorf("player name must be at most %d characters", MaxNameLength)
	}
	if _, ok := tokenNames[token]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownToken, int(token))
	}
	if e.state.Dealt {
		return nil, fmt.Errorf("cannot add %s: %w", name, ErrAlreadyDealt)
	}
	for _, p := range e.state.Players {
		if p.Token == token {
			return nil, fmt.Errorf("%w: %s is played by %s", ErrTokenTaken, token, p.Name)
		}
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerExists, name)
		}
	}

	player := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		Token:     token,
		Pos:       e.config.StartFor(token),
		Inventory: []Card{},
	}
	e.state.Players = append(e.state.Players, player)
	return player, nil
}

// Players returns the seated players in turn order
func (e *GameEngine) Players() []*Player {
	return e.state.Players
}

// Player finds a player by ID, name or token name
func (e *GameEngine) Player(ref string) (*Player, error) {
	ref = strings.TrimSpace(ref)
	for _, p := range e.state.Players {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	if t, err := ParseToken(ref); err == nil {
		for _, p := range e.state.Players {
			if p.Token == t {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, ref)
}

// CurrentPlayer returns the player whose turn it is, or nil before anyone has joined
func (e *GameEngine) CurrentPlayer() *Player {
	if len(e.state.Players) == 0 {
		return nil
	}
	return e.state.Players[e.state.CurrentPlayer%len(e.state.Players)]
}

// RoomOfPlayer returns the room the player is standing in
func (e *GameEngine) RoomOfPlayer(player *Player) (*Room, error) {
	if !player.InRoom() {
		return nil, fmt.Errorf("%w: %s", ErrNotInRoom, player.Name)
	}
	room, ok := e.grid.Room(player.Room)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, player.Room)
	}
	return room, nil
}

// GetCard finds any card of this board by name
func (e *GameEngine) GetCard(name string) (Card, error) {
	return FindCard(e.config.Deck(), name)
}

// DealCards deals every card outside the solution to the players
func (e *GameEngine) DealCards() error {
	if e.state.Dealt {
		return ErrAlreadyDealt
	}
	if err := Deal(e.state.Players, e.state.Deck); err != nil {
		return err
	}
	e.state.Deck = []Card{}
	e.state.Dealt = true
	return nil
}

// RollDice rolls the engine's dice
func (e *GameEngine) RollDice() int {
	return e.dice.Roll()
}

// PlanPath returns the shortest walkable route from the player to the room's door
func (e *GameEngine) PlanPath(player *Player, room *Room) ([]Position, error) {
	path, err := e.grid.FindPath(player.Pos, room.Door)
	if err != nil {
		return nil, fmt.Errorf("route for %s to %s: %w", player.Name, room.Name, err)
	}
	return path, nil
}

// MovePlayer moves the player up to steps cells toward room, records the move and
// passes the turn to the next player
func (e *GameEngine) MovePlayer(player *Player, steps int, room *Room, prompter DoorPrompter, renderer Renderer) (*MovementOutcome, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSteps, steps)
	}
	path, err := e.PlanPath(player, room)
	if err != nil {
		return nil, err
	}

	from := player.Pos
	outcome, err := Advance(e.grid, player, path, steps, room, prompter, renderer)
	if err != nil {
		return nil, err
	}

	switch outcome.State {
	case EnteredRoom:
		e.state.Message = fmt.Sprintf(messageOr(e.config.Messages.EnteredRoom, "%s entered the %s"), player.Name, outcome.EnteredRoom)
	default:
		e.state.Message = fmt.Sprintf(messageOr(e.config.Messages.Stopped, "%s stopped at %s"), player.Name, outcome.Final)
	}

	e.addMoveToHistory(player, room, steps, from, path, outcome)
	e.advanceTurn(player)
	return outcome, nil
}

func (e *GameEngine) addMoveToHistory(player *Player, room *Room, steps int, from Position, path []Position, outcome *MovementOutcome) {
	walked := make([]Position, 0, len(outcome.Steps)+1)
	walked = append(walked, from)
	for _, s := range outcome.Steps {
		walked = append(walked, s.Position)
	}

	record := MoveRecord{
		MoveNumber:    e.state.TotalMoves + 1,
		PlayerID:      player.ID,
		PlayerName:    player.Name,
		Token:         player.Token,
		Destination:   room.Name,
		StepsAllowed:  steps,
		StepsUsed:     outcome.StepsUsed,
		FromPosition:  from,
		ToPosition:    outcome.Final,
		Outcome:       outcome.State.String(),
		EnteredRoom:   outcome.EnteredRoom,
		DeclinedDoors: outcome.DeclinedDoors,
		Path:          walked,
		Timestamp:     time.Now().Unix(),
	}
	e.state.MoveHistory = append(e.state.MoveHistory, record)
	e.state.TotalMoves++
}

func (e *GameEngine) advanceTurn(mover *Player) {
	e.state.Turn++
	for i, p := range e.state.Players {
		if p == mover {
			e.state.CurrentPlayer = (i + 1) % len(e.state.Players)
			return
		}
	}
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveRecord {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveRecord {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
