package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

const help = "Type a room name to walk there, or one of: rooms, hand, board, quit."

// play runs turns until the input ends, a player quits or maxTurns is reached
func play(ctx context.Context, game *engine.GameEngine, console *Console, screen *Screen, maxTurns int) error {
	if len(game.Players()) == 0 {
		return engine.ErrNoPlayers
	}
	if err := game.DealCards(); err != nil {
		return err
	}

	state := game.GetState()
	if state.Message != "" {
		fmt.Fprintln(screen.out, state.Message)
	}
	fmt.Fprintln(screen.out, help)
	screen.DrawBoard()

	for turns := 0; maxTurns <= 0 || turns < maxTurns; {
		if err := ctx.Err(); err != nil {
			return err
		}

		player := game.CurrentPlayer()
		where := player.Pos.String()
		if player.InRoom() {
			where = "the " + player.Room
		}
		answer, ok := console.Ask(fmt.Sprintf("%s (%s) is at %s. Where to?",
			screen.paint(player.Name, tokenStyles[player.Token]), player.Token.Symbol(), where))
		if !ok {
			return nil
		}

		switch strings.ToLower(answer) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(screen.out, "Goodbye.")
			return nil
		case "help", "?":
			fmt.Fprintln(screen.out, help)
			continue
		case "board":
			screen.DrawBoard()
			continue
		case "hand":
			names := make([]string, len(player.Inventory))
			for i, c := range player.Inventory {
				names[i] = c.String()
			}
			fmt.Fprintf(screen.out, "%s holds: %s\n", player.Name, strings.Join(names, ", "))
			continue
		case "rooms":
			fmt.Fprintln(screen.out, strings.Join(game.GetConfig().RoomNames(), ", "))
			continue
		}

		room, err := game.GetRoom(answer)
		if err != nil {
			fmt.Fprintln(screen.out, screen.paint(err.Error(), "red"))
			continue
		}

		steps := game.RollDice()
		fmt.Fprintf(screen.out, "%s rolled %d.\n", player.Name, steps)
		outcome, err := game.MovePlayer(player, steps, room, console, screen)
		switch {
		case errors.Is(err, engine.ErrNoPath):
			fmt.Fprintln(screen.out, screen.paint(fmt.Sprintf("There is no way to the %s from here.", room.Name), "red"))
			continue
		case err != nil:
			return err
		}

		log.Debug().Str("player", player.Name).Str("room", room.Name).Int("steps", steps).
			Str("outcome", outcome.State.String()).Msg("move")
		fmt.Fprintln(screen.out, game.GetState().Message)
		turns++
	}
	return nil
}
