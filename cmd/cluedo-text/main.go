// Command cluedo-text plays the board in a terminal. Players take turns
// choosing a room, the dice are rolled and the token walks the shortest route
// there, asking at every door on the way whether to go in.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/stat9k/Cluedo-Text/game/engine"
)

var gameFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "board configuration file (JSON or YAML); the classic board when empty",
		Sources: cli.EnvVars("CLUEDO_CONFIG"),
	},
	&cli.StringSliceFlag{
		Name:    "players",
		Aliases: []string{"p"},
		Usage:   "tokens taking part, in turn order",
		Value:   []string{"scarlett", "mustard", "green"},
	},
	&cli.Uint64Flag{
		Name:  "seed",
		Usage: "seed for the solution draw and dice (0 picks one at random)",
	},
	&cli.IntFlag{
		Name:  "dice",
		Usage: "move exactly this many steps every turn instead of rolling two dice",
	},
}

func newApp(in io.Reader, out io.Writer) *cli.Command {
	console := NewConsole(in, out)

	return &cli.Command{
		Name:      "cluedo-text",
		Usage:     "walk the mansion board in a terminal",
		Reader:    in,
		Writer:    out,
		ErrWriter: out,
		Flags: append(gameFlags,
			&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
			&cli.BoolFlag{Name: "redraw", Usage: "clear the screen and redraw the board after every step"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between steps"},
			&cli.IntFlag{Name: "turns", Usage: "stop after this many turns (0 plays until quit)"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := zerolog.WarnLevel
			if cmd.Bool("debug") {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cmd.Bool("no-color")}).
				Level(level).With().Timestamp().Logger()
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			game, err := newGame(cmd)
			if err != nil {
				return err
			}
			screen := newScreen(cmd, game)
			screen.redraw = cmd.Bool("redraw")
			screen.delay = cmd.Duration("delay")
			return play(ctx, game, console, screen, cmd.Int("turns"))
		},
		Commands: []*cli.Command{
			{
				Name:  "board",
				Usage: "print the board with every token on its start",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					game, err := newGame(cmd)
					if err != nil {
						return err
					}
					newScreen(cmd, game).DrawBoard()
					return nil
				},
			},
			{
				Name:  "rooms",
				Usage: "list the rooms with their doors and the walk to each from every start",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					game, err := newGame(cmd)
					if err != nil {
						return err
					}
					return listRooms(cmd.Root().Writer, game)
				},
			},
			{
				Name:      "path",
				Usage:     "show the route a token would walk to a room",
				ArgsUsage: "<token> <room>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() != 2 {
						return errors.New("path needs a token and a room")
					}
					game, err := newGame(cmd)
					if err != nil {
						return err
					}
					return showPath(cmd.Root().Writer, game, cmd.Args().Get(0), cmd.Args().Get(1))
				},
			},
		},
	}
}

// newGame builds an engine from the root flags and seats the players
func newGame(cmd *cli.Command) (*engine.GameEngine, error) {
	root := cmd.Root()

	config := engine.DefaultBoardConfig()
	if path := root.String("config"); path != "" {
		var err error
		if config, err = engine.LoadBoardConfig(path); err != nil {
			return nil, err
		}
	}

	var opts []engine.Option
	if seed := root.Uint64("seed"); seed != 0 {
		opts = append(opts, engine.WithSeed(seed))
	}
	if n := root.Int("dice"); n != 0 {
		if n < 0 || n > engine.MaxStepsPerMove {
			return nil, fmt.Errorf("dice must be between 1 and %d, got %d", engine.MaxStepsPerMove, n)
		}
		opts = append(opts, engine.WithDice(engine.FixedDice(n)))
	}

	game, err := engine.NewEngine(config, opts...)
	if err != nil {
		return nil, err
	}

	for _, name := range root.StringSlice("players") {
		for _, field := range strings.Split(name, ",") {
			if strings.TrimSpace(field) == "" {
				continue
			}
			token, err := engine.ParseToken(field)
			if err != nil {
				return nil, err
			}
			if _, err := game.AddPlayer(token.String(), token); err != nil {
				return nil, err
			}
		}
	}
	log.Debug().Str("board", config.Name).Int("players", len(game.Players())).Msg("game ready")
	return game, nil
}

func newScreen(cmd *cli.Command, game *engine.GameEngine) *Screen {
	root := cmd.Root()
	return &Screen{
		out:    root.Writer,
		color:  !root.Bool("no-color"),
		board:  game.RenderBoard,
		legend: game.Legend,
	}
}

func listRooms(w io.Writer, game *engine.GameEngine) error {
	grid := game.Grid()
	for _, room := range grid.Rooms() {
		fmt.Fprintf(w, "%-14s door %s\n", room.Name, room.Door)
		for _, p := range game.Players() {
			path, err := game.PlanPath(p, room)
			if errors.Is(err, engine.ErrNoPath) {
				fmt.Fprintf(w, "  %-16s unreachable\n", p.Name)
				continue
			} else if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %-16s %d steps\n", p.Name, len(path)-1)
		}
	}
	return nil
}

func showPath(w io.Writer, game *engine.GameEngine, who, where string) error {
	player, err := game.Player(who)
	if err != nil {
		return err
	}
	room, err := game.GetRoom(where)
	if err != nil {
		return err
	}
	path, err := game.PlanPath(player, room)
	if err != nil {
		return err
	}

	cells := make([]string, len(path))
	for i, p := range path {
		cells[i] = p.String()
	}
	fmt.Fprintf(w, "%s to the %s: %d steps\n", player.Name, room.Name, len(path)-1)
	fmt.Fprintln(w, strings.Join(cells, " "))
	return nil
}

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
