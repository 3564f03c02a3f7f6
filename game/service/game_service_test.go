package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stat9k/Cluedo-Text/game/engine"
	"github.com/stat9k/Cluedo-Text/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
	mu       sync.Mutex
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.BoardConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, engine.WithSeed(1), engine.WithDice(engine.FixedDice(7)))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.BoardConfig) (*service.Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.BoardConfig
}

func NewMockConfigManager() *MockConfigManager {
	classic := engine.DefaultBoardConfig()
	return &MockConfigManager{
		configs: map[string]*engine.BoardConfig{
			"classic": classic,
			"default": classic,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.BoardConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	return []*service.ConfigInfo{{
		Filename:    "classic.json",
		ConfigID:    "classic",
		Name:        "classic",
		Description: m.configs["classic"].Description,
		Rooms:       len(m.configs["classic"].Rooms),
		Weapons:     len(m.configs["classic"].Weapons),
	}}, nil
}

func (m *MockConfigManager) GetDefault() *engine.BoardConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.BoardConfig) error {
	if _, err := engine.ValidateBoardConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T, opts ...service.Option) (service.GameService, *MockSessionManager, string) {
	t.Helper()
	sessions := NewMockSessionManager()
	svc := service.NewGameService(sessions, NewMockConfigManager(), opts...)
	info, err := svc.CreateSession(context.Background(), "classic")
	require.NoError(t, err)
	return svc, sessions, info.ID
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{"create with default config", "", false},
		{"create with specific config", "classic", false},
		{"create with invalid config", "nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Available configs")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "classic", session.ConfigName)
			assert.Nil(t, session.GameState.Solution, "solution must stay hidden")
			assert.Len(t, session.GameState.Board, engine.BoardSize)
		})
	}
}

func TestGameService_SessionNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	_, err = svc.Move(ctx, "nope", service.MoveRequest{Player: "a", Room: "hall"})
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	assert.ErrorIs(t, svc.DeleteSession(ctx, "nope"), service.ErrSessionNotFound)
}

func TestGameService_AddPlayer(t *testing.T) {
	ctx := context.Background()
	svc, sessions, id := newTestService(t)

	player, err := svc.AddPlayer(ctx, id, "Alice", "scarlett")
	require.NoError(t, err)
	assert.Equal(t, engine.MissScarlett, player.Token)
	assert.Equal(t, engine.Position{X: 0, Y: 17}, player.Pos)
	assert.Equal(t, 1, sessions.saves)

	_, err = svc.AddPlayer(ctx, id, "Bob", "Miss Scarlett")
	assert.ErrorIs(t, err, engine.ErrTokenTaken)

	_, err = svc.AddPlayer(ctx, id, "Bob", "Dr Black")
	assert.ErrorIs(t, err, engine.ErrUnknownToken)
}

func TestGameService_DealAndHand(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	_, err := svc.DealCards(ctx, id)
	assert.ErrorIs(t, err, engine.ErrNoPlayers)

	_, err = svc.AddPlayer(ctx, id, "Alice", "scarlett")
	require.NoError(t, err)
	_, err = svc.AddPlayer(ctx, id, "Bob", "plum")
	require.NoError(t, err)

	state, err := svc.DealCards(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.Dealt)
	assert.Empty(t, state.Deck)

	alice, err := svc.GetPlayer(ctx, id, "alice")
	require.NoError(t, err)
	assert.Len(t, alice.Inventory, 9)
}

func TestGameService_PlanPath(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)
	_, err := svc.AddPlayer(ctx, id, "Alice", "scarlett")
	require.NoError(t, err)

	plan, err := svc.PlanPath(ctx, id, "Alice", "lounge")
	require.NoError(t, err)
	assert.Equal(t, "Lounge", plan.Room)
	assert.Equal(t, 7, plan.Distance)
	assert.Equal(t, engine.Position{X: 5, Y: 19}, plan.Door)
	assert.Len(t, plan.Path, 8)

	_, err = svc.PlanPath(ctx, id, "Alice", "attic")
	assert.ErrorIs(t, err, engine.ErrRoomNotFound)
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var streamed []engine.Step
	listener := func(sessionID string, player *engine.Player, step engine.Step) {
		mu.Lock()
		defer mu.Unlock()
		streamed = append(streamed, step)
	}

	svc, _, id := newTestService(t, service.WithStepListener(listener))
	_, err := svc.AddPlayer(ctx, id, "Alice", "scarlett")
	require.NoError(t, err)
	_, err = svc.AddPlayer(ctx, id, "Bob", "mustard")
	require.NoError(t, err)

	tests := []struct {
		name      string
		req       service.MoveRequest
		wantErr   error
		wantState engine.MoveState
	}{
		{
			name:    "unknown player",
			req:     service.MoveRequest{Player: "Zed", Room: "hall", Steps: 3},
			wantErr: engine.ErrPlayerNotFound,
		},
		{
			name:    "unknown room",
			req:     service.MoveRequest{Player: "Alice", Room: "attic", Steps: 3},
			wantErr: engine.ErrRoomNotFound,
		},
		{
			name:    "too many steps",
			req:     service.MoveRequest{Player: "Alice", Room: "hall", Steps: 13},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "negative steps",
			req:     service.MoveRequest{Player: "Alice", Room: "hall", Steps: -1},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "unknown room in enter list",
			req:     service.MoveRequest{Player: "Alice", Room: "hall", Steps: 3, EnterRooms: []string{"attic"}},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:      "short walk",
			req:       service.MoveRequest{Player: "Alice", Room: "hall", Steps: 3},
			wantState: engine.Stopped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Move(ctx, id, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, result.Outcome.State)
		})
	}

	mu.Lock()
	assert.Len(t, streamed, 3)
	mu.Unlock()
}

func TestGameService_MoveRollsAndEnters(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)
	_, err := svc.AddPlayer(ctx, id, "Alice", "scarlett")
	require.NoError(t, err)

	result, err := svc.Move(ctx, id, service.MoveRequest{
		Player:     "Alice",
		Room:       "lounge",
		EnterRooms: []string{"Lou"},
	})
	require.NoError(t, err)

	assert.True(t, result.Rolled)
	assert.Equal(t, 7, result.StepsAllowed)
	assert.Equal(t, engine.EnteredRoom, result.Outcome.State)
	assert.Equal(t, "Lounge", result.Player.Room)
	assert.Equal(t, "Alice entered the Lounge", result.Message)

	require.NotEmpty(t, result.Events)
	assert.Equal(t, "roll", result.Events[0].Type)
	assert.Equal(t, "entered_room", result.Events[len(result.Events)-1].Type)
	assert.Len(t, result.Events, 1+7)

	cell, err := svc.DescribeCell(ctx, id, engine.Position{X: 5, Y: 19})
	require.NoError(t, err)
	assert.Equal(t, "door", cell.Type)
	assert.Equal(t, "Lounge", cell.Room)
	assert.Equal(t, []string{"Alice"}, cell.Occupants)
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)
	_, err := svc.AddPlayer(ctx, id, "Alice", "scarlett")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.Move(ctx, id, service.MoveRequest{Player: "Alice", Room: "hall", Steps: 1})
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantMoves []int
		wantPages int
		wantNext  bool
	}{
		{"defaults are newest first", service.HistoryOptions{}, []int{5, 4, 3, 2, 1}, 1, false},
		{"first page ascending", service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"}, []int{1, 2}, 3, true},
		{"last page descending", service.HistoryOptions{Page: 3, Limit: 2, Order: "desc"}, []int{1}, 3, false},
		{"past the end", service.HistoryOptions{Page: 9, Limit: 2, Order: "asc"}, []int{}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := svc.GetMoveHistory(ctx, id, tt.opts)
			require.NoError(t, err)

			got := make([]int, 0, len(history.Moves))
			for _, m := range history.Moves {
				got = append(got, m.MoveNumber)
			}
			assert.Equal(t, tt.wantMoves, got)
			assert.Equal(t, 5, history.TotalMoves)
			assert.Equal(t, tt.wantPages, history.TotalPages)
			assert.Equal(t, tt.wantNext, history.HasNext)
		})
	}
}

func TestGameService_GetMoveHistoryByPlayer(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)
	_, err := svc.AddPlayer(ctx, id, "Alice", "scarlett")
	require.NoError(t, err)
	_, err = svc.AddPlayer(ctx, id, "Bob", "plum")
	require.NoError(t, err)

	for _, who := range []string{"Alice", "Bob", "Alice"} {
		_, err := svc.Move(ctx, id, service.MoveRequest{Player: who, Room: "hall", Steps: 1})
		require.NoError(t, err)
	}

	history, err := svc.GetMoveHistory(ctx, id, service.HistoryOptions{Player: "plum"})
	require.NoError(t, err)
	require.Len(t, history.Moves, 1)
	assert.Equal(t, "Bob", history.Moves[0].PlayerName)
	assert.Equal(t, 2, history.Moves[0].MoveNumber)

	history, err = svc.GetMoveHistory(ctx, id, service.HistoryOptions{Player: "alice", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 2, history.TotalMoves)
	assert.Equal(t, 1, history.Moves[0].MoveNumber)

	_, err = svc.GetMoveHistory(ctx, id, service.HistoryOptions{Player: "nobody"})
	assert.ErrorIs(t, err, engine.ErrPlayerNotFound)
}

func TestGameService_ResetKeepsHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)
	_, err := svc.AddPlayer(ctx, id, "Alice", "scarlett")
	require.NoError(t, err)
	_, err = svc.Move(ctx, id, service.MoveRequest{Player: "Alice", Room: "hall", Steps: 4})
	require.NoError(t, err)

	state, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 0, Y: 17}, state.Players[0].Pos)
	assert.Equal(t, 1, state.TotalMoves)
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	configs, err := svc.ListConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, 9, configs[0].Rooms)

	config, err := svc.LoadConfig(ctx, "classic")
	require.NoError(t, err)
	assert.Equal(t, "classic", config.Name)

	bad := engine.DefaultBoardConfig()
	bad.Name = ""
	assert.ErrorIs(t, svc.SaveConfig(ctx, "bad", bad), engine.ErrInvalidBoard)
}
