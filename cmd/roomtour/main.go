// Command roomtour drives every player around the board over the REST API
// until each one has entered every room it can reach.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stat9k/Cluedo-Text/game/engine"
	"github.com/stat9k/Cluedo-Text/game/service"
)

// Client talks to a running board server
type Client struct {
	baseURL   string
	client    *http.Client
	sessionID string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

// CreateSession starts a new game and remembers its ID
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"config_id": configID}, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return &info, nil
}

// Session fetches the current session, including its board configuration
func (c *Client) Session(ctx context.Context) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath(""), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) AddPlayer(ctx context.Context, name, token string) (*engine.Player, error) {
	var player engine.Player
	body := map[string]string{"name": name, "token": token}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/players"), body, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (c *Client) Deal(ctx context.Context) (*service.GameStateView, error) {
	var state service.GameStateView
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/deal"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) State(ctx context.Context) (*service.GameStateView, error) {
	var state service.GameStateView
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) Move(ctx context.Context, req service.MoveRequest) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/move"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Report summarises a finished tour
type Report struct {
	SessionID string
	Turns     int
	Moves     int
	Visited   map[string]int // player name -> rooms entered
	Complete  []string       // players that entered every room
}

// run plays turns in player order until every player has run out of rooms
// to visit or maxTurns rounds have been played.
func run(ctx context.Context, c *Client, configID string, players int, maxTurns int) (*Report, error) {
	info, err := c.CreateSession(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	log.Info().Str("session", info.ID).Str("config", info.ConfigName).Msg("session created")

	if players < 1 || players > len(engine.AllTokens) {
		return nil, fmt.Errorf("players must be between 1 and %d, got %d", len(engine.AllTokens), players)
	}
	for _, token := range engine.AllTokens[:players] {
		if _, err := c.AddPlayer(ctx, token.String(), token.String()); err != nil {
			return nil, fmt.Errorf("add %s: %w", token, err)
		}
	}
	if _, err := c.Deal(ctx); err != nil {
		return nil, fmt.Errorf("deal: %w", err)
	}

	info, err = c.Session(ctx)
	if err != nil {
		return nil, err
	}
	strategy, err := NewTourStrategy(info.BoardConfig)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}

	report := &Report{SessionID: info.ID, Visited: make(map[string]int)}
	state := info.GameState

	for report.Turns < maxTurns {
		report.Turns++
		moved := false

		for _, player := range state.Players {
			target := strategy.Next(player)
			if target == "" {
				continue
			}

			result, err := c.Move(ctx, service.MoveRequest{
				Player:     player.ID,
				Room:       target,
				EnterRooms: []string{target},
			})
			if err != nil {
				return report, fmt.Errorf("move %s: %w", player.Name, err)
			}
			report.Moves++
			moved = true

			if result.Outcome != nil && result.Outcome.EnteredRoom != "" {
				strategy.Entered(player, result.Outcome.EnteredRoom)
				log.Info().Str("player", player.Name).Str("room", result.Outcome.EnteredRoom).
					Int("turn", report.Turns).Msg("entered room")
			}
			if result.Player != nil {
				*player = *result.Player
			}
		}

		if !moved {
			break
		}
	}

	for _, player := range state.Players {
		report.Visited[player.Name] = strategy.Visited(player)
		if strategy.Complete(player) {
			report.Complete = append(report.Complete, player.Name)
		}
	}
	return report, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Board server URL")
	configID := flag.String("config", "classic", "Board configuration to play on")
	players := flag.Int("players", 3, "Number of players (1-6)")
	maxTurns := flag.Int("max-turns", 200, "Maximum rounds before giving up")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	log.Info().Str("url", *serverURL).Msg("connecting to board server")
	report, err := run(context.Background(), NewClient(*serverURL), *configID, *players, *maxTurns)
	if err != nil {
		log.Fatal().Err(err).Msg("tour failed")
	}

	fmt.Printf("Session %s: %d rounds, %d moves\n", report.SessionID, report.Turns, report.Moves)
	for name, n := range report.Visited {
		fmt.Printf("  %s entered %d rooms\n", name, n)
	}
	fmt.Printf("%d of %d players visited every room\n", len(report.Complete), len(report.Visited))
}
