// Package service provides the business logic layer for the Cluedo board server.
//
// The service package implements:
//   - Multi-session game management
//   - Player setup, dealing and resets
//   - Turn resolution: route search plus the step-by-step walk with door choices
//   - Move history tracking and pagination
//   - Board configuration listing, loading and saving
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every operation runs under the service lock, so a move
// (search, walk and door prompts) finishes before anything else touches a
// session. Door prompts are answered from the MoveRequest and every committed
// step is forwarded to the optional StepListener as it happens.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithStepListener(hub.BroadcastStep))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, _ = gameService.AddPlayer(ctx, info.ID, "Alice", "scarlett")
//	result, err := gameService.Move(ctx, info.ID, service.MoveRequest{
//		Player:     "Alice",
//		Room:       "lounge",
//		EnterRooms: []string{"lounge"},
//	})
package service
