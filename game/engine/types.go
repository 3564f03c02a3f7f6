package engine

import (
	"fmt"
	"strings"
)

const (
	// BoardSize is the width and height of the board in cells
	BoardSize = 26

	// Validation constants
	MaxPlayers          = 6
	MaxStepsPerMove     = 12
	MaxNameLength       = 32
	WebSocketBufferSize = 256
)

// Position represents x,y coordinates on the board
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// InBounds reports whether the position lies on the board
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

// Neighbours returns the four orthogonal neighbours in search order: north, south, east, west.
// Neighbours may lie outside the board.
func (p Position) Neighbours() [4]Position {
	return [4]Position{
		{X: p.X, Y: p.Y - 1}, // North
		{X: p.X, Y: p.Y + 1}, // South
		{X: p.X + 1, Y: p.Y}, // East
		{X: p.X - 1, Y: p.Y}, // West
	}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// CellType classifies a single board cell
type CellType int

const (
	Corridor CellType = iota
	RoomInterior
	Door
	OutOfBounds
)

func (t CellType) String() string {
	switch t {
	case Corridor:
		return "corridor"
	case RoomInterior:
		return "room"
	case Door:
		return "door"
	case OutOfBounds:
		return "out_of_bounds"
	default:
		return "unknown"
	}
}

// MarshalText encodes the cell type by name
func (t CellType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a cell type by name
func (t *CellType) UnmarshalText(text []byte) error {
	for _, ct := range []CellType{Corridor, RoomInterior, Door, OutOfBounds} {
		if ct.String() == string(text) {
			*t = ct
			return nil
		}
	}
	return fmt.Errorf("unknown cell type %q", string(text))
}

// CellKind is the classification of a cell. Room is set for RoomInterior and Door cells.
type CellKind struct {
	Type CellType
	Room *Room
}

// Rect is a rectangular region covering X..X+Width-1 and Y..Y+Height-1
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Contains reports whether p lies inside the rectangle
func (r Rect) Contains(p Position) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// OnBoundary reports whether p is one of the rectangle's perimeter cells
func (r Rect) OnBoundary(p Position) bool {
	if !r.Contains(p) {
		return false
	}
	return p.X == r.X || p.X == r.X+r.Width-1 || p.Y == r.Y || p.Y == r.Y+r.Height-1
}

// Touches reports whether p lies outside the rectangle but shares an edge with one of its cells
func (r Rect) Touches(p Position) bool {
	if r.Contains(p) {
		return false
	}
	inColumns := p.X >= r.X && p.X < r.X+r.Width
	inRows := p.Y >= r.Y && p.Y < r.Y+r.Height
	return (inColumns && (p.Y == r.Y-1 || p.Y == r.Y+r.Height)) ||
		(inRows && (p.X == r.X-1 || p.X == r.X+r.Width))
}

// Overlaps reports whether the two rectangles share any cell
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width && r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Room is a named rectangular region of the board with a single door
type Room struct {
	Name   string   `json:"name"`
	Bounds Rect     `json:"bounds"`
	Door   Position `json:"door"`
}

// Card returns the room's card
func (r *Room) Card() Card {
	return Card{Kind: RoomCard, Name: r.Name}
}

// Token identifies one of the six playable characters
type Token int

const (
	MissScarlett Token = iota
	ColonelMustard
	MrGreen
	MrsPeacock
	MrsWhite
	ProfessorPlum
)

// AllTokens lists every token in setup order
var AllTokens = []Token{MissScarlett, ColonelMustard, MrGreen, MrsPeacock, MrsWhite, ProfessorPlum}

var tokenNames = map[Token]string{
	MissScarlett:   "Miss Scarlett",
	ColonelMustard: "Colonel Mustard",
	MrGreen:        "Mr Green",
	MrsPeacock:     "Mrs Peacock",
	MrsWhite:       "Mrs White",
	ProfessorPlum:  "Professor Plum",
}

var startPositions = map[Token]Position{
	MissScarlett:   {X: 0, Y: 17},
	ProfessorPlum:  {X: 6, Y: 25},
	MrsWhite:       {X: 25, Y: 19},
	MrsPeacock:     {X: 25, Y: 5},
	MrGreen:        {X: 17, Y: 1},
	ColonelMustard: {X: 8, Y: 1},
}

func init() {
	for _, t := range AllTokens {
		if _, ok := tokenNames[t]; !ok {
			panic(fmt.Sprintf("engine: token %d has no name", int(t)))
		}
		if _, ok := startPositions[t]; !ok {
			panic(fmt.Sprintf("engine: token %s has no start position", tokenNames[t]))
		}
	}
}

func (t Token) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Symbol is the single character used for the token on a rendered board
func (t Token) Symbol() string {
	return fmt.Sprintf("%d", int(t)+1)
}

// StartPosition returns the token's fixed starting position on the classic board
func (t Token) StartPosition() Position {
	return startPositions[t]
}

// MarshalText encodes the token by character name
func (t Token) MarshalText() ([]byte, error) {
	if _, ok := tokenNames[t]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownToken, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a token from any form accepted by ParseToken
func (t *Token) UnmarshalText(text []byte) error {
	parsed, err := ParseToken(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseToken resolves a token from its character name. Matching ignores case,
// spaces and punctuation, and also accepts the surname alone ("plum", "Mrs. White").
func ParseToken(s string) (Token, error) {
	key := normalizeName(s)
	if key == "" {
		return 0, fmt.Errorf("%w: empty name", ErrUnknownToken)
	}
	for _, t := range AllTokens {
		full := tokenNames[t]
		fields := strings.Fields(full)
		if key == normalizeName(full) || key == normalizeName(fields[len(fields)-1]) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownToken, s)
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CardKind is the closed set of card categories
type CardKind int

const (
	RoomCard CardKind = iota
	CharacterCard
	WeaponCard
)

func (k CardKind) String() string {
	switch k {
	case RoomCard:
		return "room"
	case CharacterCard:
		return "character"
	case WeaponCard:
		return "weapon"
	default:
		return "unknown"
	}
}

// MarshalText encodes the card kind by name
func (k CardKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a card kind by name
func (k *CardKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "room":
		*k = RoomCard
	case "character":
		*k = CharacterCard
	case "weapon":
		*k = WeaponCard
	default:
		return fmt.Errorf("unknown card kind %q", string(text))
	}
	return nil
}

// Card is a single deck card
type Card struct {
	Kind CardKind `json:"kind"`
	Name string   `json:"name"`
}

func (c Card) String() string {
	return c.Name
}

// Player represents a participant and their piece on the board
type Player struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Token     Token    `json:"token"`
	Pos       Position `json:"position"`
	Room      string   `json:"room,omitempty"` // Name of the room the player is in
	Inventory []Card   `json:"inventory"`
}

// InRoom reports whether the player is currently inside a room
func (p *Player) InRoom() bool {
	return p.Room != ""
}

// AddCard adds a card to the player's inventory
func (p *Player) AddCard(c Card) {
	p.Inventory = append(p.Inventory, c)
}

// HasCard reports whether the player holds a card with the given name
func (p *Player) HasCard(name string) bool {
	for _, c := range p.Inventory {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// GameState represents the complete state of one game
type GameState struct {
	ConfigName    string       `json:"config_name"`
	Players       []*Player    `json:"players"`
	Solution      *Solution    `json:"solution,omitempty"`
	Deck          []Card       `json:"deck"`
	Dealt         bool         `json:"dealt"`
	Turn          int          `json:"turn"`
	CurrentPlayer int          `json:"current_player"`
	Message       string       `json:"message"`
	MoveHistory   []MoveRecord `json:"move_history"`
	TotalMoves    int          `json:"total_moves"`
}

// Public returns a copy of the state with the solution removed
func (gs *GameState) Public() *GameState {
	out := *gs
	out.Solution = nil
	return &out
}

// MoveRecord represents a single resolved move in the game history
type MoveRecord struct {
	MoveNumber    int        `json:"move_number"`
	PlayerID      string     `json:"player_id"`
	PlayerName    string     `json:"player_name"`
	Token         Token      `json:"token"`
	Destination   string     `json:"destination"`
	StepsAllowed  int        `json:"steps_allowed"`
	StepsUsed     int        `json:"steps_used"`
	FromPosition  Position   `json:"from_position"`
	ToPosition    Position   `json:"to_position"`
	Outcome       string     `json:"outcome"`
	EnteredRoom   string     `json:"entered_room,omitempty"`
	DeclinedDoors []string   `json:"declined_doors,omitempty"`
	Path          []Position `json:"path,omitempty"`
	Timestamp     int64      `json:"timestamp"`
}
