package engine

import "fmt"

// FindPath runs a breadth-first search from start to goal over the four-connected
// board and returns every cell of a shortest route, both ends included.
//
// Neighbours are expanded north, south, east, west so ties always resolve the same
// way. The start cell is accepted whatever walkable says about it; every other cell
// on the route, including goal, must be walkable.
func FindPath(start, goal Position, walkable func(Position) bool) ([]Position, error) {
	if !start.InBounds() || !goal.InBounds() {
		return nil, fmt.Errorf("%w: from %s to %s", ErrNoPath, start, goal)
	}

	parent := make(map[Position]Position)
	seen := map[Position]bool{start: true}
	queue := []Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == goal {
			return walkBack(parent, start, goal), nil
		}

		for _, next := range current.Neighbours() {
			if !next.InBounds() || seen[next] || !walkable(next) {
				continue
			}
			seen[next] = true
			parent[next] = current
			queue = append(queue, next)
		}
	}

	return nil, fmt.Errorf("%w: from %s to %s", ErrNoPath, start, goal)
}

func walkBack(parent map[Position]Position, start, goal Position) []Position {
	var reversed []Position
	for p := goal; p != start; p = parent[p] {
		reversed = append(reversed, p)
	}
	reversed = append(reversed, start)

	path := make([]Position, len(reversed))
	for i, p := range reversed {
		path[len(reversed)-1-i] = p
	}
	return path
}
