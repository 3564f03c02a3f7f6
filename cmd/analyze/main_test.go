package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

func reportFor(t *testing.T, reports []StartReport, token engine.Token) StartReport {
	t.Helper()
	for _, r := range reports {
		if r.Token == token {
			return r
		}
	}
	t.Fatalf("no report for %s", token)
	return StartReport{}
}

func TestAnalyzeBoard_Classic(t *testing.T) {
	reports, err := analyzeBoard(engine.DefaultBoardConfig())
	require.NoError(t, err)
	require.Len(t, reports, len(engine.AllTokens))

	scarlett := reportFor(t, reports, engine.MissScarlett)
	assert.Equal(t, engine.Position{X: 0, Y: 17}, scarlett.Start)
	assert.Equal(t, "Lounge", scarlett.Nearest)
	assert.Equal(t, 7, scarlett.NearestAt)
	assert.Equal(t, 14, scarlett.Distances["Hall"])
	assert.Equal(t, []string{"Lounge"}, scarlett.OneRoll)
	assert.Len(t, scarlett.Distances, 9)

	mustard := reportFor(t, reports, engine.ColonelMustard)
	assert.Equal(t, "Kitchen", mustard.Nearest)
	assert.Equal(t, 7, mustard.NearestAt)
	// Layout order, not distance order
	assert.Equal(t, []string{"Kitchen", "Ball Room", "Dining Room"}, mustard.OneRoll)

	for _, r := range reports {
		assert.Empty(t, r.Detours, "%s", r.Token)
	}
}

func TestAnalyzeBoard_Invalid(t *testing.T) {
	config := engine.DefaultBoardConfig()
	config.Rooms = nil

	_, err := analyzeBoard(config)
	assert.ErrorIs(t, err, engine.ErrInvalidBoard)
}

func writeConfig(t *testing.T, dir, name string, config *engine.BoardConfig) string {
	t.Helper()
	data, err := json.Marshal(config)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestAnalyzeConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "classic.json", engine.DefaultBoardConfig())

	var out bytes.Buffer
	require.NoError(t, analyzeConfig(&out, path))

	text := out.String()
	assert.Contains(t, text, "Name: classic")
	assert.Contains(t, text, "Rooms: 9, Characters: 6, Weapons: 6")
	assert.Contains(t, text, "Deck: 21 cards, 18 dealt after the solution")
	assert.Contains(t, text, "Miss Scarlett starts at (0,17)")
	assert.Contains(t, text, "Nearest: Lounge (7 steps)")
	assert.Contains(t, text, "Longest walk: Lounge from Mrs Peacock (34 steps)")
}

func TestAnalyzeConfig_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, analyzeConfig(&out, filepath.Join(t.TempDir(), "missing.json")))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{ not json"), 0644))
	assert.Error(t, analyzeConfig(&out, bad))
	assert.Empty(t, out.String())
}

func TestConfigFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "c.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := configFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.json", "b.yaml", "c.yml"}, names)
}

func TestAnalyzeConfig_ShippedConfigs(t *testing.T) {
	files, err := configFiles(filepath.Join("..", "..", "configs"))
	require.NoError(t, err)
	if len(files) == 0 {
		t.Skip("no configs directory")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			var out bytes.Buffer
			assert.NoError(t, analyzeConfig(&out, file))
		})
	}
}
