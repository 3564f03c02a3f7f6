package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	listener StepListener
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithStepListener registers a listener for every committed step
func WithStepListener(l StepListener) Option {
	return func(s *gameServiceImpl) {
		s.listener = l
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) save(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msgf("failed to persist session after %s", after)
	}
}

func newStateView(eng *engine.GameEngine) *GameStateView {
	view := &GameStateView{
		GameState: eng.GetState().Public(),
		Board:     eng.RenderBoard(),
		Legend:    eng.Legend(),
	}
	if p := eng.CurrentPlayer(); p != nil {
		view.CurrentPlayerName = p.Name
	}
	return view
}

func (s *gameServiceImpl) newSessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      newStateView(sess.Engine),
		BoardConfig:    sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.BoardConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	return s.newSessionInfo(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.newSessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.newSessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return nil
}

// AddPlayer seats a player on the token's start cell
func (s *gameServiceImpl) AddPlayer(ctx context.Context, sessionID, name, token string) (*engine.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	t, err := engine.ParseToken(token)
	if err != nil {
		return nil, err
	}
	player, err := sess.Engine.AddPlayer(name, t)
	if err != nil {
		return nil, err
	}

	s.save(sessionID, "adding a player")
	return player, nil
}

// GetPlayer returns a player together with their hand
func (s *gameServiceImpl) GetPlayer(ctx context.Context, sessionID, player string) (*engine.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Player(player)
}

// DealCards deals the deck to the seated players
func (s *gameServiceImpl) DealCards(ctx context.Context, sessionID string) (*GameStateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.DealCards(); err != nil {
		return nil, err
	}

	s.save(sessionID, "dealing")
	return newStateView(sess.Engine), nil
}

// Reset resets a game session to its initial state, keeping the players
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*GameStateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Engine.Reset()

	s.save(sessionID, "reset")
	return newStateView(sess.Engine), nil
}

// PlanPath returns the route a player would follow to a room without moving them
func (s *gameServiceImpl) PlanPath(ctx context.Context, sessionID, playerRef, roomName string) (*PlanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	player, err := sess.Engine.Player(playerRef)
	if err != nil {
		return nil, err
	}
	room, err := sess.Engine.GetRoom(roomName)
	if err != nil {
		return nil, err
	}

	path, err := sess.Engine.PlanPath(player, room)
	if err != nil {
		return nil, err
	}
	return &PlanResult{
		Player:   player.Name,
		Room:     room.Name,
		Door:     room.Door,
		Path:     path,
		Distance: len(path) - 1,
	}, nil
}

// Move resolves one turn: the route search and the step-by-step walk run to
// completion under the service lock
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, req MoveRequest) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if req.Steps < 0 || req.Steps > engine.MaxStepsPerMove {
		return nil, fmt.Errorf("%w: steps must be between 0 and %d, got %d", ErrInvalidRequest, engine.MaxStepsPerMove, req.Steps)
	}
	player, err := sess.Engine.Player(req.Player)
	if err != nil {
		return nil, err
	}
	room, err := sess.Engine.GetRoom(req.Room)
	if err != nil {
		return nil, err
	}
	enter := make([]string, 0, len(req.EnterRooms))
	for _, name := range req.EnterRooms {
		r, err := sess.Engine.GetRoom(name)
		if err != nil {
			return nil, fmt.Errorf("%w: enter_rooms: %v", ErrInvalidRequest, err)
		}
		enter = append(enter, r.Name)
	}

	events := []GameEvent{}
	steps, rolled := req.Steps, false
	if steps == 0 {
		steps, rolled = sess.Engine.RollDice(), true
		events = append(events, GameEvent{
			Type:      "roll",
			Message:   fmt.Sprintf("%s rolled %d", player.Name, steps),
			Timestamp: time.Now(),
			Position:  player.Pos,
		})
	}

	renderer := engine.RendererFunc(func(step engine.Step) {
		events = append(events, stepEvent(player, step))
		if s.listener != nil {
			s.listener(sessionID, player, step)
		}
	})
	prompter := engine.NewScriptedPrompter(enter, req.EnterByDefault)

	outcome, err := sess.Engine.MovePlayer(player, steps, room, prompter, renderer)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	log.Debug().
		Str("session", sessionID).
		Str("player", player.Name).
		Str("destination", room.Name).
		Int("steps", steps).
		Stringer("outcome", outcome.State).
		Msg("move resolved")

	s.save(sessionID, "move")

	mover := *player
	return &MoveResult{
		Success:      true,
		Player:       &mover,
		Destination:  room.Name,
		Rolled:       rolled,
		StepsAllowed: steps,
		Outcome:      outcome,
		GameState:    newStateView(sess.Engine),
		Message:      state.Message,
		Events:       events,
	}, nil
}

func stepEvent(player *engine.Player, step engine.Step) GameEvent {
	ev := GameEvent{
		Type:      "step",
		Message:   fmt.Sprintf("%s moved to %s (%d left)", player.Name, step.Position, step.StepsRemaining),
		Timestamp: time.Now(),
		Position:  step.Position,
	}
	if step.Cell != engine.Door {
		return ev
	}
	switch step.State {
	case engine.EnteredRoom:
		ev.Type = "entered_room"
		ev.Message = fmt.Sprintf("%s entered the %s", player.Name, step.Room)
	case engine.Stopped:
		ev.Type = "stopped"
		ev.Message = fmt.Sprintf("%s stopped at the door of the %s", player.Name, step.Room)
	default:
		ev.Type = "door_declined"
		ev.Message = fmt.Sprintf("%s walked past the %s", player.Name, step.Room)
	}
	return ev
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameStateView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return newStateView(sess.Engine), nil
}

// DescribeCell reports what occupies a single cell
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	grid := sess.Engine.Grid()
	kind := grid.Classify(pos)
	info := &CellInfo{
		Position: pos,
		Type:     kind.Type.String(),
		Walkable: grid.IsWalkable(pos),
	}
	if kind.Room != nil {
		info.Room = kind.Room.Name
	}
	for _, p := range sess.Engine.Players() {
		if p.Pos == pos {
			info.Occupants = append(info.Occupants, p.Name)
		}
	}
	return info, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	if opts.Player != "" {
		player, err := sess.Engine.Player(opts.Player)
		if err != nil {
			return nil, err
		}
		history = movesBy(history, player.ID)
	}
	return paginate(history, opts), nil
}

func movesBy(history []engine.MoveRecord, playerID string) []engine.MoveRecord {
	out := []engine.MoveRecord{}
	for _, rec := range history {
		if rec.PlayerID == playerID {
			out = append(out, rec)
		}
	}
	return out
}

// paginate cuts one page out of history. Pages count from 1, limits are
// clamped to 1..100 (default 20) and "desc" (the default) puts the latest
// move first.
func paginate(history []engine.MoveRecord, opts HistoryOptions) *HistoryResponse {
	page, limit := max(opts.Page, 1), opts.Limit
	if limit <= 0 {
		limit = 20
	}
	limit = min(limit, 100)

	ordered := slices.Clone(history)
	if opts.Order != "asc" {
		slices.Reverse(ordered)
	}

	total := len(ordered)
	pages := max((total+limit-1)/limit, 1)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return &HistoryResponse{
		Moves:       append([]engine.MoveRecord{}, ordered[start:end]...),
		TotalMoves:  total,
		Page:        page,
		PageSize:    limit,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}
}

// ListConfigs returns available board configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error {
	return s.configs.SaveConfig(configName, config)
}
