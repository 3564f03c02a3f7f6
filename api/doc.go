// Package api provides the HTTP REST API for the Cluedo board server.
//
// The api package implements:
//   - Session management endpoints
//   - Player setup and card dealing
//   - Path planning and movement
//   - Board, cell and history inspection
//   - Configuration listing and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/unified - Several sessions at once (sessionIds, configName)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Players:
//   - POST /api/sessions/{id}/players - Add a player ({"name": "Alice", "token": "scarlett"})
//   - GET /api/sessions/{id}/players/{player} - Get a player by ID, name or token
//   - POST /api/sessions/{id}/deal - Draw the solution and deal the rest of the deck
//
// Movement:
//   - GET /api/sessions/{id}/path?player=Alice&room=lounge - Shortest route to a room's door
//   - POST /api/sessions/{id}/move - Move toward a room
//   - POST /api/sessions/{id}/reset - Put every piece back on its start cell
//   - GET /api/sessions/{id}/history - Move history (page, limit, order, player)
//
// Board:
//   - GET /api/sessions/{id}/state - Public game state with the rendered board
//   - GET /api/sessions/{id}/board - Rendered board as plain text
//   - GET /api/sessions/{id}/cells/{x}/{y} - Describe one cell
//
// Configuration:
//   - GET /api/configs - List board configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration
//
// Move requests name a destination room. Steps of zero rolls the dice; doors
// met on the way are entered when listed in enter_rooms or when
// enter_by_default is set:
//
//	{
//	  "player": "Alice",
//	  "room": "lounge",
//	  "steps": 7,
//	  "enter_rooms": ["lounge"]
//	}
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON. Unknown sessions, players, rooms and configs
// give 404, token or dealing conflicts give 409, bad input gives 400:
//
//	{
//	  "error": "error message",
//	  "code": 400
//	}
package api
