package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

func createValidConfig() *engine.BoardConfig {
	return engine.DefaultBoardConfig()
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.BoardConfig) {
	t.Helper()

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	var data []byte
	var err error
	if ext := filepath.Ext(filename); ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		config := createValidConfig()
		config.Name = "Mansion"
		writeConfigFile(t, dir, "classic", config)

		manager, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Mansion", manager.GetDefault().Name)
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		assert.Error(t, err)
	})

	t.Run("empty directory falls back to the built-in board", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		require.NoError(t, err)

		defaultConfig := manager.GetDefault()
		require.NotNil(t, defaultConfig)
		assert.Equal(t, "classic", defaultConfig.Name)
		assert.Len(t, defaultConfig.Rooms, 9)
	})

	t.Run("first valid config when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		config := createValidConfig()
		config.Name = "Alpha"
		writeConfigFile(t, dir, "alpha.yaml", config)

		manager, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", manager.GetDefault().Name)
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	writeConfigFile(t, dir, "classic", createValidConfig())

	wide := createValidConfig()
	wide.Name = "Wide"
	wide.Weapons = append(wide.Weapons, "Poison")
	writeConfigFile(t, dir, "wide", wide)

	cottage := createValidConfig()
	cottage.Name = "Cottage"
	writeConfigFile(t, dir, "cottage.yml", cottage)

	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("wide")
		require.NoError(t, err)
		assert.Equal(t, "Wide", config.Name)
		assert.Len(t, config.Weapons, 7)
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("wide.json")
		require.NoError(t, err)
		assert.Equal(t, "Wide", config.Name)
	})

	t.Run("load yaml without extension", func(t *testing.T) {
		config, err := manager.LoadConfig("cottage")
		require.NoError(t, err)
		assert.Equal(t, "Cottage", config.Name)
		assert.Equal(t, engine.Position{X: 5, Y: 19}, config.Rooms[6].Door)
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, err := manager.LoadConfig("wide")
		require.NoError(t, err)
		config2, err := manager.LoadConfig("wide.json")
		require.NoError(t, err)
		assert.Same(t, config1, config2)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("load invalid config", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644))

		_, err := manager.LoadConfig("invalid")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("load overlapping rooms", func(t *testing.T) {
		config := createValidConfig()
		config.Rooms[1].X = 5
		writeConfigFile(t, dir, "overlap", config)

		_, err := manager.LoadConfig("overlap")
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "overlap")
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644))

		_, err := manager.LoadConfig("malformed")
		assert.Error(t, err)
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	configs := []struct {
		filename string
		name     string
	}{
		{"classic", "Classic"},
		{"easy.yaml", "Easy"},
		{"medium", "Medium"},
		{"hard.yml", "Hard"},
	}
	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Non-config files and broken configs are skipped
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{}`), 0644))

	manager, err := NewManager(dir)
	require.NoError(t, err)

	configList, err := manager.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configList, 4)

	ids := make([]string, len(configList))
	for i, info := range configList {
		ids[i] = info.ConfigID
		assert.Equal(t, 9, info.Rooms)
		assert.Equal(t, 6, info.Weapons)
	}
	assert.Equal(t, []string{"classic", "easy", "hard", "medium"}, ids)
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved"
		require.NoError(t, manager.SaveConfig("saved", config))
		assert.FileExists(t, filepath.Join(dir, "saved.json"))

		require.NoError(t, manager.ReloadConfig("saved"))
		loaded, err := manager.LoadConfig("saved")
		require.NoError(t, err)
		assert.Equal(t, "Saved", loaded.Name)
		assert.Equal(t, config.Rooms, loaded.Rooms)
	})

	t.Run("yaml", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Yaml"
		require.NoError(t, manager.SaveConfig("yaml.yaml", config))

		require.NoError(t, manager.ReloadConfig("yaml"))
		loaded, err := manager.LoadConfig("yaml")
		require.NoError(t, err)
		assert.Equal(t, config.Rooms, loaded.Rooms)
		assert.Equal(t, config.Messages, loaded.Messages)
	})

	t.Run("invalid", func(t *testing.T) {
		config := createValidConfig()
		config.Weapons = nil
		err := manager.SaveConfig("bad", config)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.NoFileExists(t, filepath.Join(dir, "bad.json"))
	})
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := t.TempDir()

	config := createValidConfig()
	config.Name = "Changeable"
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	require.NoError(t, err)

	loaded, err := manager.LoadConfig("changeable")
	require.NoError(t, err)
	assert.Len(t, loaded.Weapons, 6)

	updated := createValidConfig()
	updated.Name = "Changeable"
	updated.Weapons = append(updated.Weapons, "Poison")
	writeConfigFile(t, dir, "changeable", updated)

	require.NoError(t, manager.ReloadConfig("changeable"))

	reloaded, err := manager.LoadConfig("changeable")
	require.NoError(t, err)
	assert.Len(t, reloaded.Weapons, 7)
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())

	manager, err := NewManager(dir)
	require.NoError(t, err)
	_, err = manager.LoadConfig("classic")
	require.NoError(t, err)

	require.NoError(t, manager.RefreshCache())
	assert.Equal(t, 1, manager.Count())
	assert.NotNil(t, manager.GetDefault())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = fmt.Sprintf("Config%d", i)
		writeConfigFile(t, dir, fmt.Sprintf("config%d", i), config)
	}

	manager, err := NewManager(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadConfig(fmt.Sprintf("config%d", id%5+1)); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	assert.GreaterOrEqual(t, manager.Count(), 5)
}

// Test-only helpers

func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	// Remove from cache to force reload
	delete(m.configs, configID(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
