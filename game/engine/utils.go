package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// NearestDoor returns the room whose door is the fewest walkable steps from pos.
// Ties resolve to the room listed first in the layout.
func NearestDoor(grid *Grid, pos Position) (*Room, int, bool) {
	var nearest *Room
	best := -1
	for _, room := range grid.Rooms() {
		path, err := grid.FindPath(pos, room.Door)
		if err != nil {
			continue
		}
		if d := len(path) - 1; best == -1 || d < best {
			best = d
			nearest = room
		}
	}
	return nearest, best, nearest != nil
}

// DoorDistances maps every room name to the number of steps from pos to its door.
// Unreachable doors are omitted.
func DoorDistances(grid *Grid, pos Position) map[string]int {
	out := make(map[string]int)
	for _, room := range grid.Rooms() {
		if path, err := grid.FindPath(pos, room.Door); err == nil {
			out[room.Name] = len(path) - 1
		}
	}
	return out
}
