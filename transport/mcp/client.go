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

	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/service"
)

// darkRadius is how far the player sees on dark levels
const darkRadius = 2

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Castle Maze",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Castle Maze - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the overworld to the castle door, then clear every maze level. Each level
needs a number of coins before its exit (E) opens. Hidden traps and a patrolling
guard (H) cost lives.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage runs
- game_state: current snapshot with the rendered maze
- move: one directional command (optionally fast) - requires intent explanation
- bulk_move: up to 50 commands - requires intent explanation
- nudge: move the overworld position by an offset
- restart: start over after game over or a win
- tick: advance the guard one step
- move_history: past commands
- list_configs: available campaigns
- describe_cell: what occupies one maze cell
- game_instructions: full rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		Required: []string{"session_id"},
	}
}

var directionEnum = []string{"up", "down", "left", "right"}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional campaign selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Campaign to play, as listed by list_configs (optional)",
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
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player in a direction. In the maze a fast move covers two cells; in the overworld it doubles the walking step.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        directionEnum,
					"description": "Direction to move",
				},
				"fast": map[string]interface{}{
					"type":        "boolean",
					"description": "Move two cells at once. Only the landing cell is collected or triggered.",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute up to 50 moves in sequence. Stops early when blocked, on a trap or guard hit, or when the mode or level changes.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": directionEnum,
					},
					"description": "Array of moves",
				},
				"fast": map[string]interface{}{
					"type":        "boolean",
					"description": "Apply every move as a fast move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "nudge",
		Description: "Shift the overworld position by an offset. Reaching the door region enters the maze.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"dx": map[string]interface{}{
					"type":        "integer",
					"description": "Horizontal offset",
				},
				"dy": map[string]interface{}{
					"type":        "integer",
					"description": "Vertical offset, negative is towards the castle",
				},
			},
			Required: []string{"session_id", "dx", "dy"},
		},
	}, c.handleNudge)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart",
		Description: "Restart the run from level 1. Only available after game over or a win.",
		InputSchema: sessionOnlySchema(),
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance the patrolling guard by one step",
		InputSchema: sessionOnlySchema(),
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order, newest first by default",
				},
				"current": map[string]interface{}{
					"type":        "boolean",
					"description": "Only moves since the last restart",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available campaigns",
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
		Description: "Describe one cell of the current maze level: its kind, whether it holds a coin, a revealed trap, the guard or the player.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, top row is 0)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)
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
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func boolArg(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return url.PathEscape(id), nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nCampaign: %s (%s)\n\n%s",
		info.ID, info.CampaignName, info.ConfigName, formatSnapshot(info.State))
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
		fmt.Fprintf(&b, "- %s (Campaign: %s, Created: %s", s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
		if s.State != nil {
			fmt.Fprintf(&b, ", Level %d/%d, Lives %d", s.State.Level, s.State.Levels, s.State.Lives)
		}
		b.WriteString(")\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID+"/state", nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	body := map[string]interface{}{
		"direction": stringArg(args, "direction"),
		"fast":      boolArg(args, "fast"),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/move", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	var moves []string
	switch raw := args["moves"].(type) {
	case []interface{}:
		for _, m := range raw {
			if move, ok := m.(string); ok {
				moves = append(moves, move)
			}
		}
	case []string:
		moves = raw
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must contain at least one direction"), nil
	}

	body := map[string]interface{}{
		"moves": moves,
		"fast":  boolArg(args, "fast"),
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/bulk-move", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(stringArg(args, "session_id"), &result)), nil
}

func (c *Client) handleNudge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	dx, okX := intArg(args, "dx")
	dy, okY := intArg(args, "dy")
	if !okX || !okY {
		return mcp.NewToolResultError("dx and dy must be integers"), nil
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/nudge", map[string]int{"dx": dx, "dy": dy}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/restart", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.State))), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var result service.TickResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/tick", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "Guard did not move"
	switch {
	case result.Hit:
		status = "Guard caught the player"
	case result.Moved:
		status = "Guard moved"
	}
	return mcp.NewToolResultText(status + "\n\n" + formatSnapshot(result.State)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		params.Set("order", order)
	}
	if boolArg(args, "current") {
		params.Set("current", "true")
	}

	path := "/api/sessions/" + sessionID + "/history"
	if len(params) > 0 {
		path += "?" + params.Encode()
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
	b.WriteString("Available Campaigns:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Levels: %d, Lives: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Levels, cfg.MaxLives)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	row, okR := intArg(args, "row")
	col, okC := intArg(args, "col")
	if !okR || !okC {
		return mcp.NewToolResultError("row and col must be integers"), nil
	}
	if row < 0 || col < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d,%d) are out of bounds", row, col)), nil
	}

	var info engine.CellInfo
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/cells/%d/%d", sessionID, row, col), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCellInfo(&info)), nil
}

const gameInstructions = `Castle Maze - Complete Instructions

GAME OBJECTIVE:
Escape the castle by clearing every maze level.

OVERWORLD:
• You start outside the castle at (50,80).
• move walks 2 units (4 when fast); nudge shifts by any offset.
• Reaching the door region (x 46-54, y 63-71) enters the maze.

MAZE LEGEND:
• @ - You
• # - Wall (impassable)
• . - Floor
• E - Exit, locked until you hold the level's required coins
• S - Secret passage
• o - Coin
• x - Revealed trap
• H - Patrolling guard

RULES:
• A move goes one cell; a fast move goes two and only the landing cell counts.
• Walls, the grid edge and a locked exit stop movement. Bumping is free.
• Traps are hidden until triggered. Each trap costs one life and stays revealed.
• The guard walks a clockwise patrol. Touching it costs one life and sends you
  back to the level start.
• At zero lives the run is over; use restart to begin again from level 1.
• Coins reset on every new level.
• Some levels are dark: only cells near you are shown.

PROGRESSION:
• Clearing level 1 returns you to the overworld for the next door.
• The shortcut level jumps ahead when cleared.
• A secret passage skips to the level after the secret level.
• Clearing the last level wins.

STRATEGY:
• Plan a route that collects enough coins before heading to the exit.
• Use describe_cell to check a cell before stepping on it.
• Watch the guard's position in game_state and use tick to predict its patrol.
• bulk_move stops at the first surprise so you can re-plan.

Good luck escaping the castle!`

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nCampaign: %s (%s)\nCreated: %s\nLast accessed: %s\n\n%s",
		info.ID, info.CampaignName, info.ConfigName,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		info.LastAccessedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(info.State))
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Mode: %s | Level %d/%d (%s) | Coins: %d/%d | Lives: %d/%d | Moves: %d\n",
		snap.Mode, snap.Level, snap.Levels, snap.LevelName,
		snap.Coins, snap.RequiredCoins, snap.Lives, snap.MaxLives, snap.TotalMoves)

	switch snap.Mode {
	case engine.Overworld:
		door := "closed"
		if snap.DoorOpen {
			door = "open"
		}
		fmt.Fprintf(&b, "Overworld position: (%d,%d) | Door: %s\n", snap.Overworld.X, snap.Overworld.Y, door)
	case engine.Maze:
		gate := "locked"
		if snap.GateOpen {
			gate = "open"
		}
		fmt.Fprintf(&b, "Position: %s facing %s | Exit: %s\n", snap.PlayerPos, snap.Facing, gate)
		if snap.HazardPos != nil {
			fmt.Fprintf(&b, "Guard: %s facing %s\n", *snap.HazardPos, snap.HazardFacing)
		}
		if snap.Dark {
			b.WriteString("This level is dark.\n")
		}
		b.WriteString("\n")
		for _, row := range snap.Render(darkRadius) {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}

	if snap.Flash != engine.FlashNone {
		fmt.Fprintf(&b, "\n⚡ %s!", snap.Flash)
	}
	if snap.Won {
		b.WriteString("\n🎉 VICTORY!")
	} else if snap.GameOver {
		b.WriteString("\n💀 GAME OVER")
	}
	if snap.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", snap.Message)
	}

	return b.String()
}

func formatStep(s *service.StepInfo) string {
	status := "✗"
	if s.Success {
		status = "✓"
	}
	line := fmt.Sprintf("%d. %s", s.Idx, s.Dir)
	if s.Fast {
		line += " (fast)"
	}
	line += fmt.Sprintf(" %s→%s coins=%d lives=%d %s", s.From, s.To, s.CoinsAfter, s.LivesAfter, status)
	if s.Stop != "" {
		line += " stop=" + s.Stop
	}
	if s.Transition != "" {
		line += " → " + s.Transition
	}
	return line
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if result.Step != nil {
		b.WriteString("Step: " + formatStep(result.Step) + "\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if len(result.LocalView3x3) == 3 {
		b.WriteString("Local 3x3:\n")
		b.WriteString(strings.Join(result.LocalView3x3, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n" + formatSnapshot(result.State))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s [%s]\n", result.StoppedReason, result.StopReasonCode)
	}
	fmt.Fprintf(&b, "Level %d→%d | Coins %d→%d | Lives %d→%d\n",
		result.StartLevel, result.EndLevel, result.StartCoins, result.EndCoins, result.StartLives, result.EndLives)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for i := range result.Steps {
			b.WriteString(formatStep(&result.Steps[i]) + "\n")
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if len(result.LocalView3x3) == 3 {
		b.WriteString("\nLocal 3x3:\n")
		b.WriteString(strings.Join(result.LocalView3x3, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.State))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d/%d, %d total):\n\n", history.Page, history.TotalPages, history.TotalMoves)
	for _, m := range history.Moves {
		status := "✓"
		if !m.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "#%d %s [%s L%d] %s→%s coins=%d lives=%d %s\n",
			m.MoveNumber, m.Action, m.Mode, m.Level, m.FromPosition, m.ToPosition, m.Coins, m.Lives, status)
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d", history.Page+1)
	}
	return b.String()
}

func formatCellInfo(info *engine.CellInfo) string {
	var contents []string
	if info.Player {
		contents = append(contents, "you")
	}
	if info.Hazard {
		contents = append(contents, "the guard")
	}
	if info.Collectible {
		contents = append(contents, "a coin")
	}
	if info.Trap {
		contents = append(contents, "a revealed trap")
	}
	occupant := "nothing"
	if len(contents) > 0 {
		occupant = strings.Join(contents, ", ")
	}

	return fmt.Sprintf("Cell %s:\nKind: %s (%c)\nPassable: %v\nContains: %s",
		info.Position, info.Kind, info.Kind.Char(), info.Passable, occupant)
}
