// Package engine provides the core game logic for the Cluedo board.
//
// The engine package implements:
//   - The read-only grid model: corridors, room interiors and doors on a 26x26 board
//   - Breadth-first path search from a player to a room's door
//   - Step-by-step movement with a choice to enter every door passed on the way
//   - Cards, the hidden solution, dealing and dice
//   - Board configuration loading and validation
//
// Core Types:
//
// Grid classifies cells and is shared by FindPath and Advance. GameEngine
// wraps a Grid together with the players, deck and move history of one game,
// and BoardConfig describes the rooms and card set loaded from JSON or YAML.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultBoardConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	scarlett, _ := gameEngine.AddPlayer("Alice", engine.MissScarlett)
//	kitchen, _ := gameEngine.GetRoom("kitchen")
//	outcome, err := gameEngine.MovePlayer(scarlett, gameEngine.RollDice(), kitchen,
//		engine.NewScriptedPrompter([]string{"kitchen"}, false), nil)
//
// Movement Rules:
//
// A move follows the shortest corridor route to the chosen room's door. Each
// cell costs one step. When the route reaches any door the prompter decides
// whether to enter; entering ends the move in that room. Declining the chosen
// room's door ends the move on the door, while declining another room's door
// simply walks past it.
package engine
