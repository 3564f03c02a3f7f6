// Command validate provides a small CLI that validates board configuration
// files (JSON or YAML) in the ../configs directory. It checks:
//   - File structure and required fields
//   - Room geometry: bounds, overlaps and one door on or beside each room
//   - Character, weapon and start-position lists
//   - Message templates (two %s verbs each)
//   - Connectivity: every door is reachable from every character start
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.DecodeBoardConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("Invalid config: %v", err)
		return result
	}

	// Geometry first: connectivity needs a grid
	grid, err := engine.NewGrid(config.RoomList())
	if err != nil {
		result.fail("%v", err)
		return result
	}

	connectivity := validateConnectivity(config, grid)

	if _, err := engine.ValidateBoardConfig(config); err != nil {
		// Connectivity lists every unreachable door; the engine stops at the first
		if connectivity.Valid || !strings.Contains(err.Error(), "unreachable") {
			result.fail("%v", err)
		}
	}

	for key, msg := range map[string]string{
		"entered_room": config.Messages.EnteredRoom,
		"stopped":      config.Messages.Stopped,
	} {
		if msg != "" && strings.Count(msg, "%s") != 2 {
			result.fail("Message %s must contain two %%s verbs, got %q", key, msg)
		}
	}

	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	// Add informational data
	if result.Valid {
		deck := config.Deck()
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Rooms: %d (%s)", len(config.Rooms), strings.Join(config.RoomNames(), ", ")))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Weapons: %d", len(config.Weapons)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Deck: %d cards", len(deck)))
		if config.Messages.Welcome == "" {
			result.Errors = append(result.Errors, "✓ Welcome message: default")
		}
	}

	return result
}

// validateConnectivity checks that every room's door can be walked to from
// every character's start cell, and reports each pair that cannot.
func validateConnectivity(config *engine.BoardConfig, grid *engine.Grid) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	rooms := grid.Rooms()
	if len(rooms) == 0 {
		result.fail("Cannot validate connectivity: no rooms")
		return result
	}

	var unreachable []string
	for _, t := range engine.AllTokens {
		start := config.StartFor(t)
		if kind := grid.Classify(start); kind.Type != engine.Corridor {
			unreachable = append(unreachable, fmt.Sprintf("%s start %s is a %s cell", t, start, kind.Type))
			continue
		}

		distances := engine.DoorDistances(grid, start)
		for _, room := range rooms {
			if _, ok := distances[room.Name]; !ok {
				unreachable = append(unreachable, fmt.Sprintf("%s door %s from %s start %s", room.Name, room.Door, t, start))
			}
		}
	}

	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		result.fail("Connectivity failure: %d start/door pairs unreachable", len(unreachable))
		for _, u := range unreachable {
			result.Errors = append(result.Errors, "Unreachable: "+u)
		}
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: all %d doors reachable from all %d starts", len(rooms), len(engine.AllTokens)))
	}

	return result
}

// main scans the config directory for board files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := flag.String("dir", "../configs", "Directory containing board configurations")
	flag.Parse()

	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(*configDir, pattern))
		if err != nil {
			fmt.Printf("Error finding config files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
