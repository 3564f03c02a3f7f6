// Package config provides board configuration management for the Cluedo server.
//
// The config package handles:
//   - Loading board configurations from JSON or YAML files
//   - Validation through the engine's board rules
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Boards are stored as .json, .yaml or .yml files in the configs directory.
// Each configuration defines:
//   - The rooms, each a rectangle on the 26x26 board with a single door cell
//   - The six character names and the weapon names that make up the deck
//   - Optional start overrides per token
//   - Message templates for the welcome, entered-room and stopped events
//
// A config is addressed by its file name without extension ("classic" for
// classic.json). When no extension is given, .json is tried first, then
// .yaml, then .yml.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	board, err := manager.LoadConfig("cottage")
//	defaultBoard := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default board is classic if present, otherwise the first valid config on
// disk, otherwise the built-in classic layout.
package config
