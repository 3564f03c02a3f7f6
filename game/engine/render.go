package engine

import "strings"

// Cell symbols used by RenderGrid
const (
	SymbolCorridor = '.'
	SymbolRoom     = '#'
	SymbolDoor     = 'D'
)

// RenderGrid draws the board as one string per row. Players are drawn with their
// token symbol on top of whatever cell they occupy. The result is a snapshot for
// display only and is never consulted by path search.
func RenderGrid(grid *Grid, players []*Player) []string {
	var rows [BoardSize][BoardSize]byte
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			switch grid.Classify(Position{X: x, Y: y}).Type {
			case RoomInterior:
				rows[y][x] = SymbolRoom
			case Door:
				rows[y][x] = SymbolDoor
			default:
				rows[y][x] = SymbolCorridor
			}
		}
	}
	for _, p := range players {
		if p.Pos.InBounds() {
			rows[p.Pos.Y][p.Pos.X] = p.Token.Symbol()[0]
		}
	}

	out := make([]string, BoardSize)
	for y := range rows {
		out[y] = string(rows[y][:])
	}
	return out
}

// RenderBoard draws the current board with every player on it
func (e *GameEngine) RenderBoard() []string {
	return RenderGrid(e.grid, e.state.Players)
}

// Legend describes the symbols used by RenderBoard
func (e *GameEngine) Legend() map[string]string {
	legend := map[string]string{
		string(SymbolCorridor): "corridor",
		string(SymbolRoom):     "room",
		string(SymbolDoor):     "door",
	}
	for _, p := range e.state.Players {
		legend[p.Token.Symbol()] = p.Name + " (" + p.Token.String() + ")"
	}
	return legend
}

// BoardString joins the rendered rows with newlines
func BoardString(rows []string) string {
	return strings.Join(rows, "\n")
}
