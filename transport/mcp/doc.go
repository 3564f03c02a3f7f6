// Package mcp exposes the Cluedo board server to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against a
// running server and the JSON answer is formatted as text for the agent.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - add_player, deal_cards: game setup
//   - game_state, describe_cell: board inspection
//   - plan_path: shortest route from a player to a room's door
//   - move_player: walk toward a room with door choices given up front
//   - reset_game, move_history
//   - list_configs, game_instructions
//
// Door prompts cannot be answered interactively over MCP, so move_player takes
// the answers in advance: enter_rooms lists the doors to go through and
// enter_by_default covers every other door.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
