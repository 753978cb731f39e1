package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/service"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

// fakeAPI answers every request with response and records what it got
func fakeAPI(t *testing.T, status int, response interface{}) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var got []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			if err := json.Unmarshal(data, &rec.Body); err != nil {
				t.Errorf("request body is not JSON: %s", data)
			}
		}
		got = append(got, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server, got := fakeAPI(t, http.StatusOK, map[string]interface{}{"hints_remaining": 7})
	client := NewClient(server.URL)

	var view engine.StateView
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/ab12/state", nil, &view); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if view.HintsRemaining != 7 {
		t.Errorf("Expected 7 hints remaining, got %d", view.HintsRemaining)
	}
	if len(*got) != 1 || (*got)[0].Path != "/api/sessions/ab12/state" {
		t.Errorf("Unexpected requests %+v", *got)
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	server, _ := fakeAPI(t, http.StatusLocked, map[string]interface{}{"error": "puzzle is locked", "code": 423})
	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "POST", "/api/sessions/ab12/puzzles/vault/attempt", map[string]string{"value": "1"}, nil)
	if err == nil || err.Error() != "puzzle is locked" {
		t.Errorf("Expected the API error message, got %v", err)
	}

	bare, _ := fakeAPI(t, http.StatusBadGateway, nil)
	err = NewClient(bare.URL).apiCall(context.Background(), "GET", "/api/sessions", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("Expected status code in error, got %v", err)
	}

	err = NewClient("http://127.0.0.1:1").apiCall(context.Background(), "GET", "/api/sessions", nil, nil)
	if err == nil {
		t.Error("Expected a connection error")
	}
}

func TestClient_ToolRequests(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		handler  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		method   string
		path     string
		wantBody map[string]interface{}
	}{
		{
			name:     "interact",
			args:     map[string]interface{}{"session_id": "ab12", "hotspot_id": "study-note"},
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleInteract },
			method:   "POST",
			path:     "/api/sessions/ab12/interact",
			wantBody: map[string]interface{}{"hotspot_id": "study-note"},
		},
		{
			name:     "attempt with value",
			args:     map[string]interface{}{"session_id": "ab12", "puzzle_id": "study-door-lock", "value": "1984"},
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleAttemptPuzzle },
			method:   "POST",
			path:     "/api/sessions/ab12/puzzles/study-door-lock/attempt",
			wantBody: map[string]interface{}{"value": "1984"},
		},
		{
			name:     "attempt with values",
			args:     map[string]interface{}{"session_id": "ab12", "puzzle_id": "tiles", "values": []interface{}{"sun", "moon"}},
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleAttemptPuzzle },
			method:   "POST",
			path:     "/api/sessions/ab12/puzzles/tiles/attempt",
			wantBody: map[string]interface{}{"values": []interface{}{"sun", "moon"}},
		},
		{
			name:    "reveal hint",
			args:    map[string]interface{}{"session_id": "ab12", "puzzle_id": "study-door-lock"},
			handler: func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleRevealHint },
			method:  "POST",
			path:    "/api/sessions/ab12/puzzles/study-door-lock/hints",
		},
		{
			name:     "combine",
			args:     map[string]interface{}{"session_id": "ab12", "item_a": "rope", "item_b": "hook"},
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleCombineItems },
			method:   "POST",
			path:     "/api/sessions/ab12/combine",
			wantBody: map[string]interface{}{"item_a": "rope", "item_b": "hook"},
		},
		{
			name:    "continue",
			args:    map[string]interface{}{"session_id": "ab12"},
			handler: func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleContinueRoom },
			method:  "POST",
			path:    "/api/sessions/ab12/continue",
		},
		{
			name:     "reset",
			args:     map[string]interface{}{"session_id": "ab12", "difficulty": "hard"},
			handler:  func(c *Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return c.handleReset },
			method:   "POST",
			path:     "/api/sessions/ab12/reset",
			wantBody: map[string]interface{}{"difficulty": "hard"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, got := fakeAPI(t, http.StatusOK, service.ActionResult{
				Success: true,
				Message: "done",
				State:   &engine.StateView{Status: engine.StatusInProgress},
			})
			client := NewClient(server.URL)

			result, err := tt.handler(client)(context.Background(), callTool(tt.name, tt.args))
			if err != nil {
				t.Fatalf("handler failed: %v", err)
			}
			if result.IsError {
				t.Fatalf("unexpected tool error: %s", resultText(t, result))
			}
			if !strings.Contains(resultText(t, result), "done") {
				t.Errorf("Expected the message in the result")
			}

			if len(*got) != 1 {
				t.Fatalf("Expected one API call, got %d", len(*got))
			}
			req := (*got)[0]
			if req.Method != tt.method || req.Path != tt.path {
				t.Errorf("Expected %s %s, got %s %s", tt.method, tt.path, req.Method, req.Path)
			}
			for k, want := range tt.wantBody {
				gotJSON, _ := json.Marshal(req.Body[k])
				wantJSON, _ := json.Marshal(want)
				if string(gotJSON) != string(wantJSON) {
					t.Errorf("body[%s] = %s, want %s", k, gotJSON, wantJSON)
				}
			}
		})
	}
}

func TestClient_ToolValidation(t *testing.T) {
	server, got := fakeAPI(t, http.StatusOK, map[string]interface{}{})
	client := NewClient(server.URL)
	ctx := context.Background()

	result, _ := client.handleInteract(ctx, callTool("interact", map[string]interface{}{"session_id": "ab12"}))
	if !result.IsError {
		t.Error("Expected an error without hotspot_id")
	}
	result, _ = client.handleAttemptPuzzle(ctx, callTool("attempt_puzzle", map[string]interface{}{"session_id": "ab12", "puzzle_id": "p"}))
	if !result.IsError {
		t.Error("Expected an error without an answer")
	}
	result, _ = client.handleGameState(ctx, callTool("game_state", nil))
	if !result.IsError {
		t.Error("Expected an error without session_id")
	}
	if len(*got) != 0 {
		t.Errorf("Invalid calls must not reach the API, got %d", len(*got))
	}
}

func TestClient_createSession(t *testing.T) {
	server, got := fakeAPI(t, http.StatusCreated, service.SessionInfo{
		ID:           "ab12",
		CampaignID:   "classic",
		CampaignName: "The Clockmaker's House",
		Difficulty:   engine.Easy,
		Status:       engine.StatusInProgress,
		CreatedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		State:        &engine.StateView{Status: engine.StatusInProgress},
	})
	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{
		"campaign_id": "classic",
		"difficulty":  "easy",
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Created session: ab12", "The Clockmaker's House", "easy"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
	if (*got)[0].Body["campaign_id"] != "classic" || (*got)[0].Body["difficulty"] != "easy" {
		t.Errorf("Unexpected request body %+v", (*got)[0].Body)
	}
}

func TestFormatState(t *testing.T) {
	state := &engine.StateView{
		Status:         engine.StatusInProgress,
		Difficulty:     engine.Easy,
		HintsRemaining: 14,
		ElapsedSeconds: 125,
		Room: &engine.RoomView{
			ID:          "study",
			Name:        "The Study",
			Description: "A cramped study.",
			HotSpots: []engine.HotSpotView{
				{HotSpot: engine.HotSpot{ID: "study-note", Label: "Crumpled Note", Type: engine.HotSpotExamine}, Discovered: true},
				{HotSpot: engine.HotSpot{ID: "study-door", Label: "Locked Door", Type: engine.HotSpotPuzzle}, Glow: true},
			},
			RequiredPuzzleIDs: []string{"study-door-lock"},
		},
		Inventory: []engine.ItemView{{Item: engine.Item{ID: "key", Name: "Brass Key"}, Selected: true}},
		Journal:   []engine.JournalEntry{{Text: "1984"}},
	}

	text := formatState(state)
	for _, want := range []string{
		"ROOM: The Study (study)",
		"✓ study-note - Crumpled Note [examine]",
		"* study-door - Locked Door [puzzle]",
		"study-door-lock (unsolved)",
		"key: Brass Key (selected)",
		"Journal entries: 1",
		"Time: 02:05",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}

	state.Status = engine.StatusCompleted
	if !strings.Contains(formatState(state), "ESCAPED") {
		t.Error("Expected completion banner")
	}
	if formatState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatActionResult_Attempt(t *testing.T) {
	until := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	text := formatActionResult(&service.ActionResult{
		Attempt: &engine.AttemptResult{PuzzleID: "vault", AttemptsUsed: 3, Locked: true, LockedUntil: &until},
		State:   &engine.StateView{},
	})
	if !strings.Contains(text, "Wrong. Attempts used: 3") || !strings.Contains(text, "Locked until 09:30:00") {
		t.Errorf("Unexpected attempt text:\n%s", text)
	}

	text = formatActionResult(&service.ActionResult{
		Message: "The door swings open!",
		Attempt: &engine.AttemptResult{PuzzleID: "study-door-lock", Correct: true, RoomComplete: true},
		State:   &engine.StateView{},
	})
	if !strings.Contains(text, "Correct!") || !strings.Contains(text, "Room complete!") {
		t.Errorf("Unexpected attempt text:\n%s", text)
	}
}

func TestFormatPuzzle(t *testing.T) {
	text := formatPuzzle(&engine.PuzzleView{
		ID:   "lever-logic",
		Name: "Three Levers",
		Type: engine.LogicDeduction,
		Data: engine.PuzzleData{
			Clues:   []string{"The red lever is not first."},
			Options: []engine.LogicOption{{ID: "a", Label: "Red, blue, green"}},
		},
		HintsRevealed: []engine.Hint{{Tier: 1, Text: "Start with red."}},
		HasMoreHints:  true,
	})
	for _, want := range []string{"Three Levers", "The red lever is not first.", "a: Red, blue, green", "Hint 1: Start with red.", "More hints"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", nil))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"OBJECTIVE:", "HOTSPOTS:", "PUZZLES:", "DIFFICULTY:", "HINTS:", "INVENTORY:"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected '%s' in instructions", want)
		}
	}
}

func TestClient_ListsTools(t *testing.T) {
	client := NewClient("http://localhost:8080")

	msg := client.GetMCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{
		"attempt_puzzle", "combine_items", "continue_room", "create_session", "game_instructions",
		"game_state", "get_session", "hints", "interact", "journal", "list_campaigns",
		"list_sessions", "puzzle", "reset_game", "reveal_hint", "select_item",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Expected tools %v, got %v", want, names)
	}
}
