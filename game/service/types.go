package service

import (
	"time"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *GameStateView      `json:"game_state"`
	BoardConfig    *engine.BoardConfig `json:"board_config"`
}

// GameStateView is the state shown to clients: the solution is withheld and a
// rendered board is attached
type GameStateView struct {
	*engine.GameState
	CurrentPlayerName string            `json:"current_player_name,omitempty"`
	Board             []string          `json:"board"`
	Legend            map[string]string `json:"legend"`
}

// MoveRequest asks for one player's turn. Steps of zero rolls the dice.
// EnterRooms lists the rooms whose doors the player walks through if reached;
// any other door is entered only when EnterByDefault is set.
type MoveRequest struct {
	Player         string   `json:"player"`
	Room           string   `json:"room"`
	Steps          int      `json:"steps,omitempty"`
	EnterRooms     []string `json:"enter_rooms,omitempty"`
	EnterByDefault bool     `json:"enter_by_default,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success      bool                    `json:"success"`
	Player       *engine.Player          `json:"player"`
	Destination  string                  `json:"destination"`
	Rolled       bool                    `json:"rolled"`
	StepsAllowed int                     `json:"steps_allowed"`
	Outcome      *engine.MovementOutcome `json:"outcome"`
	GameState    *GameStateView          `json:"game_state"`
	Message      string                  `json:"message"`
	Events       []GameEvent             `json:"events,omitempty"`
}

// PlanResult is the route a player would take to a room
type PlanResult struct {
	Player   string            `json:"player"`
	Room     string            `json:"room"`
	Door     engine.Position   `json:"door"`
	Path     []engine.Position `json:"path"`
	Distance int               `json:"distance"`
}

// CellInfo describes a single board cell
type CellInfo struct {
	Position  engine.Position `json:"position"`
	Type      string          `json:"type"`
	Room      string          `json:"room,omitempty"`
	Walkable  bool            `json:"walkable"`
	Occupants []string        `json:"occupants,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "roll", "step", "door_declined", "entered_room", "stopped", "reset", "dealt"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
	// Player restricts the history to one player's moves (ID, name or token)
	Player string `json:"player,omitempty"`
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveRecord `json:"moves"`
	TotalMoves  int                 `json:"total_moves"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rooms       int    `json:"rooms"`
	Weapons     int    `json:"weapons"`
}
