package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/service"
)

const instructions = `Escape Room - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GOAL:
Escape every room of the campaign. Click hotspots to examine objects, pick
up items and open puzzles. Solve the required puzzles of a room, then
continue to the next one.

AVAILABLE TOOLS:
- list_campaigns / create_session / list_sessions / get_session
- game_state: the current room, its visible hotspots, inventory and journal
- interact: click a hotspot by ID
- puzzle: read a puzzle (its answer is never shown)
- attempt_puzzle: submit an answer
- hints / reveal_hint: read or spend hints
- select_item / combine_items: use the inventory
- continue_room: leave a completed room
- journal: every clue found so far
- reset_game: start over
- game_instructions: the full rules

Read the journal before guessing. Wrong answers may lock a puzzle on hard.`

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
		"Escape Room",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func sessionTool(name, description string, props map[string]interface{}, required ...string) mcp.Tool {
	properties := map[string]interface{}{"session_id": stringProp("Session ID")}
	for k, v := range props {
		properties[k] = v
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   append([]string{"session_id"}, required...),
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Start a new escape room game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"campaign_id": stringProp("Campaign to play (optional, see list_campaigns)"),
				"difficulty": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"easy", "medium", "hard"},
					"description": "Difficulty (default medium)",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"campaign", "freeplay"},
					"description": "campaign plays rooms in order; freeplay plays one room",
				},
				"room_id": stringProp("Starting room (optional)"),
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

	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session", nil), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(sessionTool("game_state", "Show the current room, visible hotspots, inventory and journal", nil), c.handleGameState)

	c.mcpServer.AddTool(sessionTool("interact", "Click a visible hotspot in the current room",
		map[string]interface{}{"hotspot_id": stringProp("Hotspot ID from game_state")}, "hotspot_id"), c.handleInteract)

	c.mcpServer.AddTool(sessionTool("puzzle", "Show a puzzle and the hints revealed for it",
		map[string]interface{}{"puzzle_id": stringProp("Puzzle ID")}, "puzzle_id"), c.handlePuzzle)

	c.mcpServer.AddTool(sessionTool("attempt_puzzle", "Submit an answer to a puzzle",
		map[string]interface{}{
			"puzzle_id": stringProp("Puzzle ID"),
			"value":     stringProp("Answer for code, riddle and logic puzzles"),
			"values": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Ordered answer for pattern, sequence and item puzzles",
			},
		}, "puzzle_id"), c.handleAttemptPuzzle)

	c.mcpServer.AddTool(sessionTool("hints", "Show the hints revealed for a puzzle without spending any",
		map[string]interface{}{"puzzle_id": stringProp("Puzzle ID")}, "puzzle_id"), c.handleHints)

	c.mcpServer.AddTool(sessionTool("reveal_hint", "Spend a hint on a puzzle",
		map[string]interface{}{"puzzle_id": stringProp("Puzzle ID")}, "puzzle_id"), c.handleRevealHint)

	c.mcpServer.AddTool(sessionTool("select_item", "Select an inventory item; selecting a second item tries to combine them",
		map[string]interface{}{"item_id": stringProp("Item ID, empty to clear the selection")}), c.handleSelectItem)

	c.mcpServer.AddTool(sessionTool("combine_items", "Combine two inventory items",
		map[string]interface{}{
			"item_a": stringProp("First item ID"),
			"item_b": stringProp("Second item ID"),
		}, "item_a", "item_b"), c.handleCombineItems)

	c.mcpServer.AddTool(sessionTool("continue_room", "Leave a completed room", nil), c.handleContinueRoom)

	c.mcpServer.AddTool(sessionTool("journal", "List every clue found so far", nil), c.handleJournal)

	c.mcpServer.AddTool(sessionTool("reset_game", "Restart the game",
		map[string]interface{}{
			"difficulty": stringProp("New difficulty (optional)"),
			"mode":       stringProp("New mode (optional)"),
		}), c.handleReset)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_campaigns",
		Description: "List available campaigns",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListCampaigns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the escape room",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
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

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func argStrings(args map[string]interface{}, key string) []string {
	raw, _ := args[key].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	id := argString(args, "session_id")
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

// action posts to a session endpoint and formats the ActionResult
func (c *Client) action(ctx context.Context, args map[string]interface{}, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	path, err := sessionPath(args, suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := service.CreateSessionRequest{
		CampaignID: argString(args, "campaign_id"),
		Difficulty: argString(args, "difficulty"),
		Mode:       argString(args, "mode"),
		RoomID:     argString(args, "room_id"),
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\n%s", session.ID, formatSessionInfo(&session))
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
		fmt.Fprintf(&b, "- %s (Campaign: %s, %s, %s, Last played: %s)\n",
			s.ID, s.CampaignID, s.Difficulty, s.Status, s.LastAccessedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.StateView
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatState(&state)), nil
}

func (c *Client) handleInteract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	hotspotID := argString(args, "hotspot_id")
	if hotspotID == "" {
		return mcp.NewToolResultError("hotspot_id is required"), nil
	}
	return c.action(ctx, args, "/interact", map[string]string{"hotspot_id": hotspotID})
}

func (c *Client) handlePuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/puzzles/"+url.PathEscape(argString(args, "puzzle_id")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var puzzle engine.PuzzleView
	if err := c.apiCall(ctx, "GET", path, nil, &puzzle); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPuzzle(&puzzle)), nil
}

func (c *Client) handleAttemptPuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	attempt := engine.Attempt{Value: argString(args, "value"), Values: argStrings(args, "values")}
	if attempt.Value == "" && len(attempt.Values) == 0 {
		return mcp.NewToolResultError("value or values is required"), nil
	}
	return c.action(ctx, args, "/puzzles/"+url.PathEscape(argString(args, "puzzle_id"))+"/attempt", attempt)
}

func (c *Client) handleHints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/puzzles/"+url.PathEscape(argString(args, "puzzle_id"))+"/hints")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var status engine.HintStatus
	if err := c.apiCall(ctx, "GET", path, nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHintStatus(&status)), nil
}

func (c *Client) handleRevealHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	return c.action(ctx, args, "/puzzles/"+url.PathEscape(argString(args, "puzzle_id"))+"/hints", nil)
}

func (c *Client) handleSelectItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	return c.action(ctx, args, "/select", map[string]string{"item_id": argString(args, "item_id")})
}

func (c *Client) handleCombineItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]string{"item_a": argString(args, "item_a"), "item_b": argString(args, "item_b")}
	return c.action(ctx, args, "/combine", body)
}

func (c *Client) handleContinueRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.action(ctx, arguments(request), "/continue", nil)
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	opts := service.ResetOptions{Difficulty: argString(args, "difficulty"), Mode: argString(args, "mode")}
	return c.action(ctx, args, "/reset", opts)
}

func (c *Client) handleJournal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/journal")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var journal service.JournalResponse
	if err := c.apiCall(ctx, "GET", path, nil, &journal); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJournal(journal.Entries)), nil
}

func (c *Client) handleListCampaigns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Campaigns (%d):\n\n", len(configs))
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (%d rooms, %d puzzles)\n", cfg.ConfigID, cfg.Name, cfg.RoomCount, cfg.PuzzleCount)
		if cfg.Description != "" {
			fmt.Fprintf(&b, "  %s\n", cfg.Description)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rules), nil
}

const rules = `Escape Room - Complete Instructions

OBJECTIVE:
Each room hides puzzles. Solve every required puzzle of a room to unlock
its exit, then use continue_room. Clearing the last room of a campaign wins
the game. In freeplay, clearing the chosen room wins.

HOTSPOTS:
• examine - shows a description and may add a clue to your journal
• pickup - puts an item in your inventory
• puzzle - opens a puzzle; its ID is in the interaction result
• use_item - needs the right item selected first (select_item)
Some hotspots only appear after a puzzle is solved or an item is held.

PUZZLES:
• code_entry - a numeric code (value)
• riddle - a word or phrase; case and surrounding spaces do not matter (value)
• logic_deduction - the ID of the correct option (value)
• pattern_match - the symbols in order (values)
• hidden_sequence - the steps in order (values)
• item_combination - the item IDs, any order (values)

DIFFICULTY:
• easy - hotspots glow until found, more hints, first hints shown for free
• medium - the default
• hard - fewer hints; too many wrong answers lock a puzzle for a while

HINTS:
Each puzzle has tiered hints. reveal_hint spends one from a per-game
budget and shows the next tier. hints shows what you already revealed.

INVENTORY:
combine_items merges two items that belong together. Selecting a second
item while one is selected tries the same combination.

STRATEGY:
1. game_state to see the room
2. interact with every hotspot; read the journal
3. open puzzles and check their descriptions
4. attempt answers built from journal clues
5. spend hints only when stuck`
