// Package session provides session management for the Cluedo board server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management and expiry
//   - Optional persistence to JSON files or a bbolt database
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns its own engine, so players, deck and history never leak
// between games.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups ignore case.
// Generated IDs skip any ID already held in memory or in storage. Caller
// chosen IDs are limited to letters, digits, '-' and '_' since they become
// file names and database keys.
//
// Persistence:
//
// A SessionPersistence stores the game state together with the config ID of
// the board. Loading rebuilds the board from that config and restores the
// state onto a fresh engine. FilePersistence writes one JSON file per session
// through a temporary file and a rename;
// BoltPersistence keeps msgpack records in a single bbolt file.
//
// Usage:
//
//	store, err := session.NewBoltPersistence("sessions.db", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", configManager.GetDefault())
package session
