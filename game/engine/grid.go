package engine

import (
	"fmt"
	"strings"
)

// Grid is the read-only classification of every board cell. It is built once
// from the room layout and shared by path search and movement.
type Grid struct {
	cells [BoardSize][BoardSize]CellKind // indexed [y][x]
	rooms []*Room
}

// NewGrid classifies the board for the given rooms. Room rectangles must lie on
// the board and must not overlap. A door must sit on its room's boundary or just
// outside it, sharing an edge with a boundary cell, and must have at least one
// walkable neighbour.
func NewGrid(rooms []Room) (*Grid, error) {
	g := &Grid{rooms: make([]*Room, 0, len(rooms))}
	seen := make(map[string]bool, len(rooms))

	for i := range rooms {
		r := rooms[i]
		key := strings.ToLower(strings.TrimSpace(r.Name))
		if key == "" {
			return nil, fmt.Errorf("%w: room %d has no name", ErrInvalidBoard, i+1)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate room name %q", ErrInvalidBoard, r.Name)
		}
		seen[key] = true

		b := r.Bounds
		if b.Width < 1 || b.Height < 1 {
			return nil, fmt.Errorf("%w: room %q must have positive width and height", ErrInvalidBoard, r.Name)
		}
		if !(Position{X: b.X, Y: b.Y}).InBounds() || !(Position{X: b.X + b.Width - 1, Y: b.Y + b.Height - 1}).InBounds() {
			return nil, fmt.Errorf("%w: room %q extends past the board", ErrInvalidBoard, r.Name)
		}
		if !r.Door.InBounds() {
			return nil, fmt.Errorf("%w: door of %q at %s is off the board", ErrInvalidBoard, r.Name, r.Door)
		}
		if !b.OnBoundary(r.Door) && !b.Touches(r.Door) {
			return nil, fmt.Errorf("%w: door of %q at %s is not on or beside its boundary", ErrInvalidBoard, r.Name, r.Door)
		}
		for _, other := range g.rooms {
			if b.Overlaps(other.Bounds) {
				return nil, fmt.Errorf("%w: rooms %q and %q overlap", ErrInvalidBoard, other.Name, r.Name)
			}
		}
		g.rooms = append(g.rooms, &r)
	}

	for _, room := range g.rooms {
		b := room.Bounds
		for y := b.Y; y < b.Y+b.Height; y++ {
			for x := b.X; x < b.X+b.Width; x++ {
				g.cells[y][x] = CellKind{Type: RoomInterior, Room: room}
			}
		}
	}

	// Doors are placed after every interior so a door beside a room is never
	// swallowed by a neighbour, and a boundary door is never an interior cell.
	for _, room := range g.rooms {
		existing := g.cells[room.Door.Y][room.Door.X]
		switch {
		case existing.Type == Door:
			return nil, fmt.Errorf("%w: rooms %q and %q share a door at %s", ErrInvalidBoard, existing.Room.Name, room.Name, room.Door)
		case existing.Type == RoomInterior && existing.Room != room:
			return nil, fmt.Errorf("%w: door of %q at %s lies inside %q", ErrInvalidBoard, room.Name, room.Door, existing.Room.Name)
		}
		g.cells[room.Door.Y][room.Door.X] = CellKind{Type: Door, Room: room}
	}

	for _, room := range g.rooms {
		open := false
		for _, n := range room.Door.Neighbours() {
			if g.Classify(n).Type == Corridor {
				open = true
				break
			}
		}
		if !open {
			return nil, fmt.Errorf("%w: door of %q at %s has no corridor beside it", ErrInvalidBoard, room.Name, room.Door)
		}
	}

	return g, nil
}

// Classify returns the kind of the cell at p. Off-board positions are OutOfBounds.
func (g *Grid) Classify(p Position) CellKind {
	if !p.InBounds() {
		return CellKind{Type: OutOfBounds}
	}
	return g.cells[p.Y][p.X]
}

// IsWalkable reports whether a piece may stand on p
func (g *Grid) IsWalkable(p Position) bool {
	switch g.Classify(p).Type {
	case Corridor, Door:
		return true
	default:
		return false
	}
}

// RoomOf returns the room owning an interior or door cell
func (g *Grid) RoomOf(p Position) (*Room, bool) {
	kind := g.Classify(p)
	if kind.Room == nil {
		return nil, false
	}
	return kind.Room, true
}

// Rooms returns the rooms in layout order
func (g *Grid) Rooms() []*Room {
	out := make([]*Room, len(g.rooms))
	copy(out, g.rooms)
	return out
}

// Doors returns every door position in layout order
func (g *Grid) Doors() []Position {
	out := make([]Position, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r.Door)
	}
	return out
}

// Room looks up a room by exact name, ignoring case
func (g *Grid) Room(name string) (*Room, bool) {
	name = strings.TrimSpace(name)
	for _, r := range g.rooms {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return nil, false
}

// FindPath searches for the shortest walkable route between two cells
func (g *Grid) FindPath(start, goal Position) ([]Position, error) {
	return FindPath(start, goal, g.IsWalkable)
}
