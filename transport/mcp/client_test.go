package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stat9k/Cluedo-Text/game/engine"
	"github.com/stat9k/Cluedo-Text/game/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func jsonHandler(t *testing.T, method, path string, resp interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, method, r.Method)
		assert.Equal(t, path, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, "GET", "/api/sessions/abc", map[string]interface{}{"id": "abc"}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	require.NoError(t, client.apiCall(context.Background(), "GET", "/api/sessions/abc", nil, &response))
	assert.Equal(t, "abc", response["id"])
}

func TestClient_apiCall_Errors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		assert.Error(t, client.apiCall(context.Background(), "GET", "/api", nil, nil))
	})

	t.Run("error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"session not found","code":404}`))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "session not found", err.Error())
	})

	t.Run("plain body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API error: 500")
	})
}

func TestClient_createSession(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/sessions", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)

		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:          "test-session-123",
			ConfigName:  "classic",
			BoardConfig: engine.DefaultBoardConfig(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]interface{}{"config_id": "classic"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "test-session-123")
	assert.Contains(t, text, "Lounge")
	assert.Equal(t, "classic", body["config_id"])
}

func TestClient_movePlayer(t *testing.T) {
	var got service.MoveRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/s1/move", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(service.MoveResult{
			Success:      true,
			Destination:  "Lounge",
			StepsAllowed: 7,
			Outcome: &engine.MovementOutcome{
				State:       engine.EnteredRoom,
				StepsUsed:   7,
				Final:       engine.Position{X: 5, Y: 19},
				EnteredRoom: "Lounge",
				Steps: []engine.Step{
					{Index: 7, Position: engine.Position{X: 5, Y: 19}, Cell: engine.Door, Room: "Lounge", State: engine.EnteredRoom},
				},
			},
			Message: "Alice entered the Lounge",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleMovePlayer(context.Background(), callRequest("move_player", map[string]interface{}{
		"session_id":  "s1",
		"player":      "Alice",
		"room":        "lou",
		"steps":       float64(7),
		"enter_rooms": []interface{}{"Lounge", 3},
		"intent":      "closest room",
	}))
	require.NoError(t, err)

	assert.Equal(t, service.MoveRequest{Player: "Alice", Room: "lou", Steps: 7, EnterRooms: []string{"Lounge"}}, got)

	text := resultText(t, result)
	assert.Contains(t, text, "✓ Move complete")
	assert.Contains(t, text, "Alice entered the Lounge")
	assert.Contains(t, text, "Now in the Lounge")
	assert.Contains(t, text, "(5,19) door (Lounge)")
}

func TestClient_toolErrorsAreResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"room not found: \"Attic\""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handlePlanPath(context.Background(), callRequest("plan_path", map[string]interface{}{
		"session_id": "s1", "player": "Alice", "room": "Attic",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "room not found")
}

func TestClient_planPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/s1/path", r.URL.Path)
		assert.Equal(t, "Miss Scarlett", r.URL.Query().Get("player"))
		assert.Equal(t, "Hall", r.URL.Query().Get("room"))
		json.NewEncoder(w).Encode(service.PlanResult{
			Player: "Alice", Room: "Hall", Door: engine.Position{X: 12, Y: 17}, Distance: 14,
			Path: []engine.Position{{X: 0, Y: 17}, {X: 0, Y: 16}},
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handlePlanPath(context.Background(), callRequest("plan_path", map[string]interface{}{
		"session_id": "s1", "player": "Miss Scarlett", "room": "Hall",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "14 steps to the door at (12,17)")
	assert.Contains(t, text, "More than one roll is needed")
	assert.Contains(t, text, "(0,17) -> (0,16)")
}

func TestClient_describeCell(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, "GET", "/api/sessions/s1/cells/5/19", service.CellInfo{
		Position: engine.Position{X: 5, Y: 19}, Type: "door", Room: "Lounge", Walkable: true, Occupants: []string{"Alice"},
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleDescribeCell(context.Background(), callRequest("describe_cell", map[string]interface{}{
		"session_id": "s1", "x": float64(5), "y": float64(19),
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Room: Lounge")
	assert.Contains(t, text, "Occupied by: Alice")

	result, err = client.handleDescribeCell(context.Background(), callRequest("describe_cell", map[string]interface{}{
		"session_id": "s1", "x": float64(26), "y": float64(0),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "out of bounds")
}

func TestClient_moveHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "Alice", r.URL.Query().Get("player"))
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Moves: []engine.MoveRecord{{
				MoveNumber: 6, PlayerName: "Alice", Destination: "Lounge", StepsAllowed: 7, StepsUsed: 7,
				FromPosition: engine.Position{X: 0, Y: 17}, ToPosition: engine.Position{X: 5, Y: 19},
				Outcome: "entered_room", EnteredRoom: "Lounge",
			}},
			TotalMoves: 6, Page: 2, PageSize: 5, TotalPages: 2,
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleMoveHistory(context.Background(), callRequest("move_history", map[string]interface{}{
		"session_id": "s1", "page": float64(2), "limit": float64(5), "player": "Alice",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Page 2/2, Total: 6 moves")
	assert.Contains(t, text, "#6 Alice -> Lounge: 7/7 steps")
	assert.Contains(t, text, "entered the Lounge")
}

func TestFormatGameState(t *testing.T) {
	state := &service.GameStateView{
		GameState: &engine.GameState{
			Players: []*engine.Player{
				{Name: "Alice", Token: engine.MissScarlett, Pos: engine.Position{X: 5, Y: 19}, Room: "Lounge"},
				{Name: "Bob", Token: engine.ProfessorPlum, Pos: engine.Position{X: 6, Y: 25}},
			},
			Dealt:      true,
			TotalMoves: 1,
		},
		CurrentPlayerName: "Bob",
		Board:             []string{"..#", ".D1"},
		Legend:            map[string]string{"1": "Alice (Miss Scarlett)", ".": "corridor"},
	}

	text := formatGameState(state)
	assert.Contains(t, text, "..#\n.D1\n")
	assert.Contains(t, text, "1  Alice (Miss Scarlett)")
	assert.Contains(t, text, "  Alice (Miss Scarlett) in the Lounge")
	assert.Contains(t, text, "> Bob (Professor Plum) at (6,25)")
	assert.Contains(t, text, "Cards dealt: true")

	assert.Equal(t, "No game state", formatGameState(nil))
}

func TestFormatMoveResult_Failed(t *testing.T) {
	text := formatMoveResult(&service.MoveResult{Success: false, Message: "no path"})
	assert.Contains(t, text, "✗ Move failed")
	assert.Contains(t, text, "no path")
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", map[string]interface{}{}))
	require.NoError(t, err)

	text := resultText(t, result)
	for _, content := range []string{
		"Cluedo Board - Complete Instructions",
		"GAME OBJECTIVE:",
		"BOARD LEGEND:",
		"MOVEMENT:",
		"declining the destination's door ends the move on the doorstep",
		"MOVEMENT COMMANDS:",
	} {
		assert.Contains(t, text, content)
	}
}

func TestTokenNames(t *testing.T) {
	names := tokenNames()
	require.Len(t, names, 6)
	assert.Equal(t, "Miss Scarlett", names[0])
	assert.Equal(t, "Professor Plum", names[5])
}
