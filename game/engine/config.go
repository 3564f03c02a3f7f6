package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoomConfig describes one room of a board layout
type RoomConfig struct {
	Name   string   `json:"name" yaml:"name"`
	X      int      `json:"x" yaml:"x"`
	Y      int      `json:"y" yaml:"y"`
	Width  int      `json:"width" yaml:"width"`
	Height int      `json:"height" yaml:"height"`
	Door   Position `json:"door" yaml:"door"`
}

// Room converts the configuration into a board room
func (rc RoomConfig) Room() Room {
	return Room{
		Name:   rc.Name,
		Bounds: Rect{X: rc.X, Y: rc.Y, Width: rc.Width, Height: rc.Height},
		Door:   rc.Door,
	}
}

// BoardConfig represents a board layout and card set loaded from JSON or YAML
type BoardConfig struct {
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description" yaml:"description"`
	Rooms       []RoomConfig        `json:"rooms" yaml:"rooms"`
	Characters  []string            `json:"characters" yaml:"characters"`
	Weapons     []string            `json:"weapons" yaml:"weapons"`
	Starts      map[string]Position `json:"starts,omitempty" yaml:"starts,omitempty"` // Token name -> start override
	Messages    struct {
		Welcome     string `json:"welcome" yaml:"welcome"`
		EnteredRoom string `json:"entered_room" yaml:"entered_room"` // %s player, %s room
		Stopped     string `json:"stopped" yaml:"stopped"`           // %s player, %s position
	} `json:"messages" yaml:"messages"`
}

// RoomList returns the configured rooms as board rooms
func (c *BoardConfig) RoomList() []Room {
	rooms := make([]Room, len(c.Rooms))
	for i, rc := range c.Rooms {
		rooms[i] = rc.Room()
	}
	return rooms
}

// RoomNames returns the room names in layout order
func (c *BoardConfig) RoomNames() []string {
	names := make([]string, len(c.Rooms))
	for i, rc := range c.Rooms {
		names[i] = rc.Name
	}
	return names
}

// StartFor returns the start position for a token, honouring overrides
func (c *BoardConfig) StartFor(t Token) Position {
	for name, pos := range c.Starts {
		if parsed, err := ParseToken(name); err == nil && parsed == t {
			return pos
		}
	}
	return t.StartPosition()
}

// Deck builds the unshuffled deck for this board
func (c *BoardConfig) Deck() []Card {
	return NewDeck(c.Characters, c.Weapons, c.RoomNames())
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidBoard}, args...)...)
}

// ValidateBoardConfig validates a board configuration for correctness and playability
func ValidateBoardConfig(config *BoardConfig) (*Grid, error) {
	if config == nil {
		return nil, invalid("config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return nil, invalid("name is required")
	}
	if config.Description == "" {
		return nil, invalid("description is required")
	}
	if len(config.Rooms) == 0 {
		return nil, invalid("at least one room is required")
	}
	if len(config.Weapons) == 0 {
		return nil, invalid("at least one weapon is required")
	}

	// Every token needs exactly one character card
	if len(config.Characters) != len(AllTokens) {
		return nil, invalid("characters must list all %d tokens, got %d", len(AllTokens), len(config.Characters))
	}
	seenTokens := make(map[Token]bool)
	for _, name := range config.Characters {
		t, err := ParseToken(name)
		if err != nil {
			return nil, invalid("character %q: %v", name, err)
		}
		if seenTokens[t] {
			return nil, invalid("character %q listed twice", name)
		}
		seenTokens[t] = true
	}

	seenWeapons := make(map[string]bool)
	for _, name := range config.Weapons {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, invalid("weapon names must not be empty")
		}
		if seenWeapons[key] {
			return nil, invalid("weapon %q listed twice", name)
		}
		seenWeapons[key] = true
	}

	// Validate geometry
	grid, err := NewGrid(config.RoomList())
	if err != nil {
		return nil, err
	}

	for name, pos := range config.Starts {
		if _, err := ParseToken(name); err != nil {
			return nil, invalid("start override %q: %v", name, err)
		}
		if grid.Classify(pos).Type != Corridor {
			return nil, invalid("start override for %q at %s must be a corridor", name, pos)
		}
	}

	// Validate winnability - every door must be reachable from every start
	for _, t := range AllTokens {
		start := config.StartFor(t)
		if grid.Classify(start).Type != Corridor {
			return nil, invalid("start of %s at %s must be a corridor", t, start)
		}
		for _, room := range grid.Rooms() {
			if _, err := grid.FindPath(start, room.Door); err != nil {
				return nil, invalid("door of %s at %s is unreachable from %s start %s", room.Name, room.Door, t, start)
			}
		}
	}

	return grid, nil
}

// DecodeBoardConfig parses a board configuration. Format is "yaml" or "json";
// an empty format is treated as JSON.
func DecodeBoardConfig(data []byte, format string) (*BoardConfig, error) {
	var config BoardConfig
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case "", "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return &config, nil
}

// LoadBoardConfig loads and validates a board configuration from a JSON or YAML file
func LoadBoardConfig(filename string) (*BoardConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := DecodeBoardConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if _, err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultBoardConfig returns the classic nine-room board
func DefaultBoardConfig() *BoardConfig {
	config := &BoardConfig{
		Name:        "classic",
		Description: "The classic mansion: nine rooms around a central corridor network",
		Rooms: []RoomConfig{
			{Name: "Kitchen", X: 1, Y: 1, Width: 7, Height: 4, Door: Position{X: 6, Y: 4}},
			{Name: "Ball Room", X: 10, Y: 1, Width: 7, Height: 7, Door: Position{X: 11, Y: 7}},
			{Name: "Conservatory", X: 19, Y: 1, Width: 7, Height: 4, Door: Position{X: 19, Y: 4}},
			{Name: "Dining Room", X: 1, Y: 7, Width: 5, Height: 9, Door: Position{X: 5, Y: 8}},
			{Name: "Billiard Room", X: 21, Y: 6, Width: 5, Height: 6, Door: Position{X: 21, Y: 8}},
			{Name: "Library", X: 20, Y: 14, Width: 6, Height: 5, Door: Position{X: 20, Y: 16}},
			{Name: "Lounge", X: 1, Y: 19, Width: 5, Height: 7, Door: Position{X: 5, Y: 19}},
			{Name: "Hall", X: 8, Y: 17, Width: 9, Height: 9, Door: Position{X: 12, Y: 17}},
			{Name: "Study", X: 19, Y: 21, Width: 7, Height: 5, Door: Position{X: 19, Y: 21}},
		},
		Characters: []string{"Miss Scarlett", "Colonel Mustard", "Mr Green", "Mrs Peacock", "Mrs White", "Professor Plum"},
		Weapons:    []string{"Rope", "Dagger", "Candlestick", "Lead Pipe", "Spanner", "Revolver"},
	}
	config.Messages.Welcome = "Welcome to the mansion. Roll the dice and head for a room."
	config.Messages.EnteredRoom = "%s entered the %s"
	config.Messages.Stopped = "%s stopped at %s"
	return config
}
