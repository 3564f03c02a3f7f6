// Package websocket provides WebSocket transport for the Cluedo board server.
//
// The websocket package implements:
//   - Session-aware viewer connections
//   - Full state broadcasts after each change
//   - Step-by-step movement events while a move is resolved
//
// Architecture:
//
// A central Hub tracks clients per session. Each connection has a read pump
// that only keeps the connection alive and a write pump that drains the
// client's queue. A client whose queue is full is dropped rather than allowed
// to stall a broadcast.
//
// Message Protocol:
//
// Every frame is one JSON Message. Two events are sent:
//   - state_update carries the public game state (the solution is never sent)
//   - player_step carries one committed step of a move: the cell, the room when
//     the cell is a door, the steps left and the movement state
//
// Clients choose a session with the session query parameter (/ws?session=ab12).
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	gameService := service.NewGameService(sessions, configs,
//		service.WithStepListener(hub.BroadcastStep))
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
