package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

func writeJSON(t *testing.T, config *engine.BoardConfig) string {
	t.Helper()
	data, err := json.Marshal(config)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func hasLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// boxedBoard has an Attic whose door opens onto a corridor pocket nobody can reach.
func boxedBoard() *engine.BoardConfig {
	config := engine.DefaultBoardConfig()
	config.Name = "boxed"
	config.Rooms = []engine.RoomConfig{
		{Name: "Attic", X: 0, Y: 0, Width: 3, Height: 3, Door: engine.Position{X: 3, Y: 1}},
		{Name: "Box Room", X: 4, Y: 0, Width: 3, Height: 3, Door: engine.Position{X: 7, Y: 1}},
		{Name: "Cellar", X: 3, Y: 2, Width: 1, Height: 3, Door: engine.Position{X: 3, Y: 5}},
	}
	return config
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	result := validateConfig(writeJSON(t, engine.DefaultBoardConfig()))

	require.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Equal(t, "board.json", result.File)
	assert.True(t, hasLine(result.Errors, "✓ Name: classic"))
	assert.True(t, hasLine(result.Errors, "✓ Rooms: 9"))
	assert.True(t, hasLine(result.Errors, "✓ Deck: 21 cards"))
	assert.True(t, hasLine(result.Errors, "✓ Connectivity: all 9 doors reachable from all 6 starts"))
}

func TestValidateConfig_ShippedConfigs(t *testing.T) {
	for _, name := range []string{"classic.json", "cottage.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join("..", "configs", name)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Skip("config not found")
			}
			result := validateConfig(path)
			assert.True(t, result.Valid, "errors: %v", result.Errors)
		})
	}
}

func TestValidateConfig_Unreadable(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, result.Valid)
	assert.True(t, hasLine(result.Errors, "Failed to read file"))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{ not json"), 0644))
	result = validateConfig(bad)
	assert.False(t, result.Valid)
	assert.True(t, hasLine(result.Errors, "Invalid config"))
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*engine.BoardConfig)
		want   string
	}{
		{
			name: "overlapping rooms",
			modify: func(c *engine.BoardConfig) {
				c.Rooms[1].X = 5
			},
			want: "overlap",
		},
		{
			name: "door away from room",
			modify: func(c *engine.BoardConfig) {
				c.Rooms[0].Door = engine.Position{X: 12, Y: 12}
			},
			want: "not on or beside its boundary",
		},
		{
			name: "no weapons",
			modify: func(c *engine.BoardConfig) {
				c.Weapons = nil
			},
			want: "at least one weapon",
		},
		{
			name: "missing character",
			modify: func(c *engine.BoardConfig) {
				c.Characters = c.Characters[:5]
			},
			want: "characters must list all 6 tokens",
		},
		{
			name: "bad message template",
			modify: func(c *engine.BoardConfig) {
				c.Messages.EnteredRoom = "%s went in"
			},
			want: "Message entered_room must contain two %s verbs",
		},
		{
			name: "start inside a room",
			modify: func(c *engine.BoardConfig) {
				c.Starts = map[string]engine.Position{"plum": {X: 2, Y: 2}}
			},
			want: "Professor Plum start (2,2) is a room cell",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := engine.DefaultBoardConfig()
			tt.modify(config)

			result := validateConfig(writeJSON(t, config))
			assert.False(t, result.Valid)
			assert.True(t, hasLine(result.Errors, tt.want), "errors: %v", result.Errors)
			assert.False(t, hasLine(result.Errors, "✓ Name"))
		})
	}
}

func TestValidateConfig_Unreachable(t *testing.T) {
	result := validateConfig(writeJSON(t, boxedBoard()))

	assert.False(t, result.Valid)
	assert.True(t, hasLine(result.Errors, "Connectivity failure: 6 start/door pairs unreachable"), "errors: %v", result.Errors)
	assert.True(t, hasLine(result.Errors, "Unreachable: Attic door (3,1) from Miss Scarlett start (0,17)"))
	// The engine's first-failure message is replaced by the full list
	assert.False(t, hasLine(result.Errors, "is unreachable from"))
}

func TestValidateConnectivity(t *testing.T) {
	config := engine.DefaultBoardConfig()
	grid, err := engine.NewGrid(config.RoomList())
	require.NoError(t, err)

	result := validateConnectivity(config, grid)
	assert.True(t, result.Valid)

	boxed := boxedBoard()
	grid, err = engine.NewGrid(boxed.RoomList())
	require.NoError(t, err)

	result = validateConnectivity(boxed, grid)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 7)
}

func TestValidateConnectivity_NoRooms(t *testing.T) {
	grid, err := engine.NewGrid(nil)
	require.NoError(t, err)

	result := validateConnectivity(engine.DefaultBoardConfig(), grid)
	assert.False(t, result.Valid)
	assert.True(t, hasLine(result.Errors, "no rooms"))
}
