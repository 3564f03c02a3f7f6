package service

import (
	"context"
	"errors"
	"time"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Setup
	AddPlayer(ctx context.Context, sessionID, name, token string) (*engine.Player, error)
	GetPlayer(ctx context.Context, sessionID, player string) (*engine.Player, error)
	DealCards(ctx context.Context, sessionID string) (*GameStateView, error)
	Reset(ctx context.Context, sessionID string) (*GameStateView, error)

	// Movement
	PlanPath(ctx context.Context, sessionID, player, room string) (*PlanResult, error)
	Move(ctx context.Context, sessionID string, req MoveRequest) (*MoveResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameStateView, error)
	DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*CellInfo, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.BoardConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.BoardConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles board configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.BoardConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.BoardConfig
	SaveConfig(name string, config *engine.BoardConfig) error
}

// StepListener is told about every step a player commits, as it happens
type StepListener func(sessionID string, player *engine.Player, step engine.Step)

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.BoardConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
