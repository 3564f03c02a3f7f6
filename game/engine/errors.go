package engine

import "errors"

var (
	// ErrNoPath is returned when no walkable route connects two cells
	ErrNoPath = errors.New("no path found")

	// ErrEmptyPath is returned when a move is attempted along an empty path
	ErrEmptyPath = errors.New("path is empty")

	// ErrInvalidPath is returned when a path does not start at the player or is not a walkable chain of adjacent cells
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidSteps is returned for a negative step budget
	ErrInvalidSteps = errors.New("steps must not be negative")

	ErrRoomNotFound   = errors.New("room not found")
	ErrAmbiguousRoom  = errors.New("room name is ambiguous")
	ErrCardNotFound   = errors.New("card not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")
	ErrNotInRoom      = errors.New("player is not in a room")
	ErrTokenTaken     = errors.New("token already taken")
	ErrUnknownToken   = errors.New("unknown token")
	ErrAlreadyDealt   = errors.New("cards already dealt")
	ErrNoPlayers      = errors.New("no players")

	// ErrInvalidBoard prefixes every board configuration validation failure
	ErrInvalidBoard = errors.New("config validation")
)
