package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stat9k/Cluedo-Text/game/engine"
	"github.com/stat9k/Cluedo-Text/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Cluedo Board",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Cluedo Board - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Players move their character tokens across a 26x26 board toward one of the
rooms. Each room has exactly one door. A move follows the shortest corridor
route to the chosen room's door and stops when the steps run out or the player
goes through a door.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- add_player: seat a player on one of the six character tokens
- deal_cards: draw the hidden solution and deal the rest of the deck
- game_state: rendered board and every player's position
- plan_path: shortest route from a player to a room's door
- move_player: walk toward a room, choosing which doors to enter
- reset_game: put every token back on its start cell
- move_history: past moves
- describe_cell: what is at one board cell
- list_configs: available board layouts
- game_instructions: full rules

NOTE: The 'intent' parameter on move_player serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional board config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the board config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Setup
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "add_player",
		Description: "Add a player to a session on a character token. The player starts on the token's start cell.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Player name",
				},
				"token": map[string]interface{}{
					"type":        "string",
					"enum":        tokenNames(),
					"description": "Character token (the surname alone also works, e.g. plum)",
				},
			},
			Required: []string{"session_id", "name", "token"},
		},
	}, c.handleAddPlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "deal_cards",
		Description: "Draw the secret solution (one room, one character, one weapon) and deal the remaining cards round-robin",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleDealCards)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with the rendered board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "plan_path",
		Description: "Show the shortest corridor route from a player to a room's door without moving",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Player name, ID or token",
				},
				"room": map[string]interface{}{
					"type":        "string",
					"description": "Destination room (a unique part of the name is enough)",
				},
			},
			Required: []string{"session_id", "player", "room"},
		},
	}, c.handlePlanPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_player",
		Description: "Move a player toward a room. Steps are rolled when omitted. Doors reached on the way are entered only if listed in enter_rooms or when enter_by_default is true.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Player name, ID or token",
				},
				"room": map[string]interface{}{
					"type":        "string",
					"description": "Destination room",
				},
				"steps": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"maximum":     12,
					"description": "Steps to walk (0 or omitted rolls two dice)",
				},
				"enter_rooms": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Rooms to enter if their door is reached",
				},
				"enter_by_default": map[string]interface{}{
					"type":        "boolean",
					"description": "Enter any door reached that is not in enter_rooms",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "player", "room"},
		},
	}, c.handleMovePlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Put every player back on their start cell. Cards and history are kept.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Only this player's moves (name, ID or token)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one board cell: corridor, room interior or door, which room owns it and who stands on it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell, 0-25",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell, 0-25",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

func tokenNames() []string {
	names := make([]string, len(engine.AllTokens))
	for i, t := range engine.AllTokens {
		names[i] = t.String()
	}
	return names
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.BoardConfig != nil {
		result += fmt.Sprintf("Rooms: %s\n", strings.Join(session.BoardConfig.RoomNames(), ", "))
	}
	result += "\nNext: add_player for each player, then deal_cards."
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		players := 0
		if s.GameState != nil && s.GameState.GameState != nil {
			players = len(s.GameState.Players)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Players: %d, Created: %s)\n",
			s.ID, s.ConfigName, players, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleAddPlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	body := map[string]string{
		"name":  stringArg(args, "name"),
		"token": stringArg(args, "token"),
	}

	var player engine.Player
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/players"), body, &player); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Added %s as %s (symbol %s) at %s",
		player.Name, player.Token, player.Token.Symbol(), player.Pos)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDealCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var state service.GameStateView
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/deal"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Cards dealt. The solution is hidden.\n\n")
	if state.GameState != nil {
		for _, p := range state.Players {
			fmt.Fprintf(&b, "%s holds %d cards\n", p.Name, len(p.Inventory))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var state service.GameStateView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handlePlanPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	query := url.Values{}
	query.Set("player", stringArg(args, "player"))
	query.Set("room", stringArg(args, "room"))

	var plan service.PlanResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/path?"+query.Encode()), nil, &plan); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlan(&plan)), nil
}

func (c *Client) handleMovePlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = stringArg(args, "intent")

	req := service.MoveRequest{
		Player: stringArg(args, "player"),
		Room:   stringArg(args, "room"),
	}
	if steps, ok := intArg(args, "steps"); ok {
		req.Steps = steps
	}
	if raw, ok := args["enter_rooms"].([]interface{}); ok {
		for _, r := range raw {
			if room, ok := r.(string); ok {
				req.EnterRooms = append(req.EnterRooms, room)
			}
		}
	}
	req.EnterByDefault, _ = args["enter_by_default"].(bool)

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var response struct {
		Message string                 `json:"message"`
		State   *service.GameStateView `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message
	if response.State != nil {
		result += "\n\n" + formatGameState(response.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	if player := stringArg(args, "player"); player != "" {
		query.Set("player", player)
	}

	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Rooms: %d, Weapons: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Rooms, config.Weapons)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	pos := engine.Position{X: x, Y: y}
	if !pos.InBounds() {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates %s are out of bounds. The board is %dx%d (0-%d for both x and y)",
			pos, engine.BoardSize, engine.BoardSize, engine.BoardSize-1)), nil
	}

	var cell service.CellInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/cells/%d/%d", x, y)), nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Cluedo Board - Complete Instructions

GAME OBJECTIVE:
Work out which character committed the murder, with which weapon, in which
room. This server handles the board: moving tokens between rooms and dealing
the cards that rule suspects out.

SETUP:
1. create_session (optionally with a config_id from list_configs)
2. add_player once per player, each on a different character token
3. deal_cards: one room, one character and one weapon card are drawn as the
   hidden solution; the rest are dealt round-robin

THE BOARD:
• 26x26 cells, x is the column and y is the row, (0,0) is the top left
• Rooms are closed rectangles. Each room has exactly one door
• Corridor cells and doors are walkable; room interiors are not
• A player inside a room stands on that room's door cell

BOARD LEGEND:
  .  corridor
  #  room interior
  D  door
  1-6 player tokens (1 Miss Scarlett, 2 Colonel Mustard, 3 Mr Green,
      4 Mrs Peacock, 5 Mrs White, 6 Professor Plum)

MOVEMENT:
• Choose a destination room. The token follows the shortest corridor route
  to that room's door
• Each cell walked costs one step. Omit steps to roll two dice (2-12)
• Passing a door costs a step like any other cell
• When a door is reached you decide whether to go in:
  - going in ends the move inside that room
  - declining the destination's door ends the move on the doorstep
  - declining any other door just walks on past it
• Use enter_rooms to say which doors to take and enter_by_default to take any
• When steps run out the token stops where it is

STRATEGY TIPS:
• plan_path shows the distance before you commit to a move
• A room further than 12 steps away always takes more than one turn
• Another room's door on the way can be a useful detour

MOVEMENT COMMANDS:
• plan_path: session_id, player, room
• move_player: session_id, player, room, steps?, enter_rooms?, enter_by_default?

Good luck, detective!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	header := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n",
		session.ID, session.ConfigName, session.CreatedAt.Format(time.RFC3339))
	if session.GameState == nil {
		return header
	}
	return header + "\n" + formatGameState(session.GameState)
}

func formatGameState(state *service.GameStateView) string {
	if state == nil || state.GameState == nil {
		return "No game state"
	}

	var b strings.Builder
	b.WriteString("BOARD:\n")
	for _, row := range state.Board {
		b.WriteString(row)
		b.WriteByte('\n')
	}

	if len(state.Legend) > 0 {
		symbols := make([]string, 0, len(state.Legend))
		for symbol := range state.Legend {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		b.WriteString("\nLEGEND:\n")
		for _, symbol := range symbols {
			fmt.Fprintf(&b, "  %s  %s\n", symbol, state.Legend[symbol])
		}
	}

	b.WriteString("\nPLAYERS:\n")
	if len(state.Players) == 0 {
		b.WriteString("  none yet - use add_player\n")
	}
	for _, p := range state.Players {
		where := "at " + p.Pos.String()
		if p.InRoom() {
			where = "in the " + p.Room
		}
		marker := " "
		if p.Name == state.CurrentPlayerName {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %s (%s) %s, %d cards\n", marker, p.Name, p.Token, where, len(p.Inventory))
	}

	fmt.Fprintf(&b, "\nCards dealt: %v\nTurn: %d\nMoves: %d\n", state.Dealt, state.Turn, state.TotalMoves)
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	return b.String()
}

func formatPlan(plan *service.PlanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s to the %s: %d steps to the door at %s\n", plan.Player, plan.Room, plan.Distance, plan.Door)
	if plan.Distance > 12 {
		b.WriteString("More than one roll is needed.\n")
	}
	if len(plan.Path) > 0 {
		cells := make([]string, len(plan.Path))
		for i, p := range plan.Path {
			cells[i] = p.String()
		}
		fmt.Fprintf(&b, "Route: %s\n", strings.Join(cells, " -> "))
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move complete\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}

	rolled := ""
	if result.Rolled {
		rolled = " (rolled)"
	}
	fmt.Fprintf(&b, "Destination: %s\nSteps allowed: %d%s\n", result.Destination, result.StepsAllowed, rolled)

	if o := result.Outcome; o != nil {
		fmt.Fprintf(&b, "Steps used: %d, remaining: %d\nFinished: %s at %s\n", o.StepsUsed, o.StepsRemaining, o.State, o.Final)
		if o.EnteredRoom != "" {
			fmt.Fprintf(&b, "Now in the %s\n", o.EnteredRoom)
		}
		if len(o.DeclinedDoors) > 0 {
			fmt.Fprintf(&b, "Walked past: %s\n", strings.Join(o.DeclinedDoors, ", "))
		}
		if len(o.Steps) > 0 {
			b.WriteString("\nSTEPS:\n")
			for _, step := range o.Steps {
				line := fmt.Sprintf("  %d. %s %s", step.Index, step.Position, step.Cell)
				if step.Room != "" {
					line += " (" + step.Room + ")"
				}
				fmt.Fprintf(&b, "%s, %d left\n", line, step.StepsRemaining)
			}
		}
	}

	if result.GameState != nil && len(result.GameState.Board) > 0 {
		b.WriteString("\n")
		b.WriteString(engine.BoardString(result.GameState.Board))
		b.WriteString("\n")
	}
	return b.String()
}

func formatCell(cell *service.CellInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell at position %s:\n", cell.Position)
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "Type: %s\nWalkable: %v\n", cell.Type, cell.Walkable)
	if cell.Room != "" {
		fmt.Fprintf(&b, "Room: %s\n", cell.Room)
	}
	if len(cell.Occupants) > 0 {
		fmt.Fprintf(&b, "Occupied by: %s\n", strings.Join(cell.Occupants, ", "))
	}
	if cell.Type == engine.Door.String() {
		b.WriteString("This is a door: players can enter the room from here.\n")
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "#%d %s -> %s: %d/%d steps, %s -> %s (%s)",
			move.MoveNumber, move.PlayerName, move.Destination,
			move.StepsUsed, move.StepsAllowed, move.FromPosition, move.ToPosition, move.Outcome)
		if move.EnteredRoom != "" {
			fmt.Fprintf(&b, ", entered the %s", move.EnteredRoom)
		}
		b.WriteByte('\n')
	}

	if history.HasNext {
		b.WriteString("\nMore moves on the next page.\n")
	}
	return b.String()
}
