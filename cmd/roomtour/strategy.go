package main

import (
	"github.com/rs/zerolog/log"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

// TourStrategy sends every player to the nearest room it has not entered yet
type TourStrategy struct {
	grid    *engine.Grid
	visited map[string]map[string]bool // player ID -> room name -> entered
}

// NewTourStrategy builds the board grid locally so targets can be chosen
// without asking the server for a plan on every turn.
func NewTourStrategy(config *engine.BoardConfig) (*TourStrategy, error) {
	grid, err := engine.ValidateBoardConfig(config)
	if err != nil {
		return nil, err
	}
	return &TourStrategy{
		grid:    grid,
		visited: make(map[string]map[string]bool),
	}, nil
}

// Reset forgets every room entered so far
func (s *TourStrategy) Reset() {
	s.visited = make(map[string]map[string]bool)
}

// Next returns the room the player should head for, or "" once the player
// has been everywhere it can reach.
func (s *TourStrategy) Next(player *engine.Player) string {
	distances := engine.DoorDistances(s.grid, player.Pos)

	target, best := "", -1
	for _, room := range s.grid.Rooms() {
		if s.visited[player.ID][room.Name] || room.Name == player.Room {
			continue
		}
		d, ok := distances[room.Name]
		if !ok {
			continue
		}
		if best == -1 || d < best {
			target, best = room.Name, d
		}
	}

	if target != "" {
		log.Debug().Str("player", player.Name).Str("target", target).Int("distance", best).Msg("next room")
	}
	return target
}

// Entered records that the player is inside room
func (s *TourStrategy) Entered(player *engine.Player, room string) {
	if s.visited[player.ID] == nil {
		s.visited[player.ID] = make(map[string]bool)
	}
	s.visited[player.ID][room] = true
}

// Visited returns how many rooms the player has entered
func (s *TourStrategy) Visited(player *engine.Player) int {
	return len(s.visited[player.ID])
}

// Complete reports whether the player has entered every room
func (s *TourStrategy) Complete(player *engine.Player) bool {
	return s.Visited(player) == len(s.grid.Rooms())
}
