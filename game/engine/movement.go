package engine

import (
	"fmt"
	"strings"
)

// MoveState is the state of the movement state machine
type MoveState int

const (
	Walking MoveState = iota
	AtDoorChoice
	EnteredRoom
	Stopped
)

func (s MoveState) String() string {
	switch s {
	case Walking:
		return "walking"
	case AtDoorChoice:
		return "at_door_choice"
	case EnteredRoom:
		return "entered_room"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name
func (s MoveState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state by name
func (s *MoveState) UnmarshalText(text []byte) error {
	for _, st := range []MoveState{Walking, AtDoorChoice, EnteredRoom, Stopped} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown move state %q", string(text))
}

// Step is a single committed cell of a move
type Step struct {
	Index          int       `json:"index"` // Position of the cell within the path
	Position       Position  `json:"position"`
	Cell           CellType  `json:"cell"`
	Room           string    `json:"room,omitempty"` // Owning room for door cells
	StepsRemaining int       `json:"steps_remaining"`
	State          MoveState `json:"state"`
}

// DoorPrompter decides whether a player steps through a door they reach
type DoorPrompter interface {
	ShouldEnter(player *Player, room *Room) bool
}

// PrompterFunc adapts a function to DoorPrompter
type PrompterFunc func(player *Player, room *Room) bool

func (f PrompterFunc) ShouldEnter(player *Player, room *Room) bool {
	return f(player, room)
}

// Renderer is called once for every committed step, as soon as it is committed
type Renderer interface {
	Render(step Step)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(step Step)

func (f RendererFunc) Render(step Step) {
	f(step)
}

// AnswerYes interprets a free-text reply to the door prompt. Any reply containing
// a "y" counts as yes.
func AnswerYes(text string) bool {
	return strings.Contains(strings.ToLower(text), "y")
}

// ScriptedPrompter answers door prompts from a fixed set of room names, falling
// back to Default for rooms it does not list.
type ScriptedPrompter struct {
	Enter   map[string]bool // keyed by lower-case room name
	Default bool
}

// NewScriptedPrompter creates a prompter that answers yes for the named rooms
func NewScriptedPrompter(rooms []string, enterByDefault bool) *ScriptedPrompter {
	p := &ScriptedPrompter{Enter: make(map[string]bool, len(rooms)), Default: enterByDefault}
	for _, name := range rooms {
		p.Enter[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return p
}

func (p *ScriptedPrompter) ShouldEnter(_ *Player, room *Room) bool {
	if answer, ok := p.Enter[strings.ToLower(room.Name)]; ok {
		return answer
	}
	return p.Default
}

// MovementOutcome summarises a completed move
type MovementOutcome struct {
	State          MoveState `json:"state"`
	Steps          []Step    `json:"steps"`
	StepsUsed      int       `json:"steps_used"`
	StepsRemaining int       `json:"steps_remaining"`
	Final          Position  `json:"final_position"`
	EnteredRoom    string    `json:"entered_room,omitempty"`
	DeclinedDoors  []string  `json:"declined_doors,omitempty"`
}

// Advance walks player along path for at most steps cells.
//
// path[0] must be the player's current cell. Each later cell is committed in turn:
// corridor cells cost one step; at a door the prompter is asked whether to enter.
// Entering ends the move inside that room. Declining the door of the chosen
// destination ends the move on the door. Declining any other door treats it as an
// ordinary cell and the walk goes on. The renderer sees every commit immediately.
// A nil prompter always declines and a nil renderer is ignored.
//
// Errors are returned before the player is touched.
func Advance(grid *Grid, player *Player, path []Position, steps int, chosen *Room, prompter DoorPrompter, renderer Renderer) (*MovementOutcome, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if steps < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSteps, steps)
	}
	if err := checkPath(grid, player, path); err != nil {
		return nil, err
	}

	outcome := &MovementOutcome{State: Walking, Final: player.Pos}
	remaining := steps

	commit := func(index int, kind CellKind, state MoveState) {
		pos := path[index]
		if len(outcome.Steps) == 0 {
			player.Room = ""
		}
		player.Pos = pos
		step := Step{Index: index, Position: pos, Cell: kind.Type, StepsRemaining: remaining, State: state}
		if kind.Room != nil {
			step.Room = kind.Room.Name
		}
		outcome.Steps = append(outcome.Steps, step)
		outcome.Final = pos
		if renderer != nil {
			renderer.Render(step)
		}
	}

	for i := 1; outcome.State == Walking; i++ {
		if remaining == 0 || i >= len(path) {
			outcome.State = Stopped
			break
		}

		kind := grid.Classify(path[i])
		if kind.Type != Door {
			remaining--
			commit(i, kind, Walking)
			continue
		}

		outcome.State = AtDoorChoice
		enter := prompter != nil && prompter.ShouldEnter(player, kind.Room)
		remaining--
		switch {
		case enter:
			outcome.State = EnteredRoom
			outcome.EnteredRoom = kind.Room.Name
			commit(i, kind, EnteredRoom)
			player.Room = kind.Room.Name
		case chosen != nil && strings.EqualFold(kind.Room.Name, chosen.Name):
			outcome.State = Stopped
			commit(i, kind, Stopped)
		default:
			outcome.State = Walking
			outcome.DeclinedDoors = append(outcome.DeclinedDoors, kind.Room.Name)
			commit(i, kind, Walking)
		}
	}

	outcome.StepsUsed = len(outcome.Steps)
	outcome.StepsRemaining = steps - outcome.StepsUsed
	return outcome, nil
}

func checkPath(grid *Grid, player *Player, path []Position) error {
	if path[0] != player.Pos {
		return fmt.Errorf("%w: path starts at %s but %s is at %s", ErrInvalidPath, path[0], player.Name, player.Pos)
	}
	for i := 1; i < len(path); i++ {
		if ManhattanDistance(path[i-1], path[i]) != 1 {
			return fmt.Errorf("%w: %s does not follow %s", ErrInvalidPath, path[i], path[i-1])
		}
		if !grid.IsWalkable(path[i]) {
			return fmt.Errorf("%w: %s is not walkable", ErrInvalidPath, path[i])
		}
	}
	return nil
}
