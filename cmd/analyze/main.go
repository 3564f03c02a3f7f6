// Command analyze prints quick, human-readable heuristics about the board
// configurations in the project's configs directory. For every character start
// it lists the walking distance to each room's door, the nearest room, and the
// rooms a single roll of two dice can reach. Doors whose walking distance is far
// above the straight Manhattan distance are flagged as detours.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

// maxRoll is the highest total of two six-sided dice
const maxRoll = 12

// detourFactor flags doors whose walk is this many times the Manhattan distance
const detourFactor = 2

// StartReport summarises the board as seen from one character's start cell.
type StartReport struct {
	Token     engine.Token
	Start     engine.Position
	Distances map[string]int
	Nearest   string
	NearestAt int
	OneRoll   []string
	Detours   []string
}

// analyzeBoard computes a StartReport for every token.
func analyzeBoard(config *engine.BoardConfig) ([]StartReport, error) {
	grid, err := engine.ValidateBoardConfig(config)
	if err != nil {
		return nil, err
	}

	reports := make([]StartReport, 0, len(engine.AllTokens))
	for _, t := range engine.AllTokens {
		start := config.StartFor(t)
		report := StartReport{
			Token:     t,
			Start:     start,
			Distances: engine.DoorDistances(grid, start),
		}

		if room, d, ok := engine.NearestDoor(grid, start); ok {
			report.Nearest = room.Name
			report.NearestAt = d
		}

		for _, room := range grid.Rooms() {
			d, ok := report.Distances[room.Name]
			if !ok {
				continue
			}
			if d <= maxRoll {
				report.OneRoll = append(report.OneRoll, room.Name)
			}
			if m := engine.ManhattanDistance(start, room.Door); m > 0 && d >= detourFactor*m {
				report.Detours = append(report.Detours, fmt.Sprintf("%s (%d steps, %d straight)", room.Name, d, m))
			}
		}

		reports = append(reports, report)
	}
	return reports, nil
}

// analyzeConfig loads one configuration file and writes its report to w.
func analyzeConfig(w io.Writer, path string) error {
	config, err := engine.LoadBoardConfig(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	reports, err := analyzeBoard(config)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Rooms: %d, Characters: %d, Weapons: %d\n", len(config.Rooms), len(config.Characters), len(config.Weapons))
	fmt.Fprintf(w, "Deck: %d cards, %d dealt after the solution\n", len(config.Deck()), len(config.Deck())-3)

	farthest, farthestAt := "", -1
	for _, r := range reports {
		fmt.Fprintf(w, "\n%s starts at %s\n", r.Token, r.Start)
		fmt.Fprintf(w, "  Nearest: %s (%d steps)\n", r.Nearest, r.NearestAt)

		names := make([]string, 0, len(r.Distances))
		for name := range r.Distances {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if r.Distances[names[i]] != r.Distances[names[j]] {
				return r.Distances[names[i]] < r.Distances[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			fmt.Fprintf(w, "  %-15s %3d\n", name, r.Distances[name])
			if r.Distances[name] > farthestAt {
				farthest, farthestAt = fmt.Sprintf("%s from %s", name, r.Token), r.Distances[name]
			}
		}

		if len(r.OneRoll) > 0 {
			fmt.Fprintf(w, "  One roll: %s\n", strings.Join(r.OneRoll, ", "))
		} else {
			fmt.Fprintf(w, "  ⚠️  No room is reachable with a single roll\n")
		}
		for _, d := range r.Detours {
			fmt.Fprintf(w, "  ⚠️  Detour: %s\n", d)
		}
	}

	fmt.Fprintf(w, "\nLongest walk: %s (%d steps)\n", farthest, farthestAt)
	return nil
}

// configFiles lists the JSON and YAML files in dir in name order.
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func main() {
	dir := flag.String("dir", "configs", "Directory containing board configurations")
	flag.Parse()

	files, err := configFiles(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding config files: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeConfig(os.Stdout, file); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
