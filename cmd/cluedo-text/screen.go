package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ahmetb/go-cursor"
	"github.com/mgutz/ansi"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

var cellStyles = map[rune]string{
	engine.SymbolRoom: "black+h",
	engine.SymbolDoor: "cyan+b",
}

var tokenStyles = map[engine.Token]string{
	engine.MissScarlett:   "red+b",
	engine.ColonelMustard: "yellow+b",
	engine.MrGreen:        "green+b",
	engine.MrsPeacock:     "blue+b",
	engine.MrsWhite:       "white+b",
	engine.ProfessorPlum:  "magenta+b",
}

// Screen draws the board and every step of a move to a terminal
type Screen struct {
	out    io.Writer
	color  bool
	redraw bool          // clear the terminal and redraw the board on every step
	delay  time.Duration // pause after each step
	board  func() []string
	legend func() map[string]string
}

func (s *Screen) paint(text, style string) string {
	if !s.color || style == "" {
		return text
	}
	return ansi.Color(text, style)
}

func (s *Screen) paintRow(row string) string {
	if !s.color {
		return row
	}
	var b strings.Builder
	for _, r := range row {
		style := cellStyles[r]
		for token, ts := range tokenStyles {
			if token.Symbol() == string(r) {
				style = ts
				break
			}
		}
		b.WriteString(s.paint(string(r), style))
	}
	return b.String()
}

// Clear wipes the terminal and homes the cursor
func (s *Screen) Clear() {
	io.WriteString(s.out, cursor.ClearEntireScreen()+cursor.MoveTo(1, 1))
}

// DrawBoard prints the board with column and row markers, then the legend
func (s *Screen) DrawBoard() {
	var header strings.Builder
	header.WriteString("   ")
	for x := 0; x < engine.BoardSize; x++ {
		header.WriteByte(byte('0' + x%10))
	}
	fmt.Fprintln(s.out, header.String())

	for y, row := range s.board() {
		fmt.Fprintf(s.out, "%2d %s\n", y, s.paintRow(row))
	}

	if s.legend == nil {
		return
	}
	legend := s.legend()
	symbols := make([]string, 0, len(legend))
	for sym := range legend {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	parts := make([]string, len(symbols))
	for i, sym := range symbols {
		parts[i] = s.paintRow(sym) + " " + legend[sym]
	}
	fmt.Fprintln(s.out, strings.Join(parts, "  "))
}

// Render prints one committed step of a move
func (s *Screen) Render(step engine.Step) {
	if s.redraw {
		s.Clear()
		s.DrawBoard()
	}

	where := step.Cell.String()
	if step.Room != "" {
		where = fmt.Sprintf("%s (%s)", where, step.Room)
	}
	line := fmt.Sprintf("  %s %s, %d left", step.Position, where, step.StepsRemaining)
	switch step.State {
	case engine.EnteredRoom:
		line = s.paint(line+", entered", "green")
	case engine.Stopped:
		line = s.paint(line+", stopped", "yellow")
	}
	fmt.Fprintln(s.out, line)

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}
