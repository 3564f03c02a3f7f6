package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

// Console reads answers one line at a time
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewScanner(in), out: out}
}

// Ask prints question and returns the trimmed reply. ok is false once the
// input is exhausted.
func (c *Console) Ask(question string) (answer string, ok bool) {
	fmt.Fprintf(c.out, "%s ", question)
	if !c.in.Scan() {
		fmt.Fprintln(c.out)
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// ShouldEnter asks the player at a door. Any reply containing a "y" is a yes.
func (c *Console) ShouldEnter(player *engine.Player, room *engine.Room) bool {
	answer, ok := c.Ask(fmt.Sprintf("%s, would you like to enter the %s? (yes/no)", player.Name, room.Name))
	return ok && engine.AnswerYes(answer)
}
