package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
	"github.com/CentralLoaf/Gridworld-DQN/game/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
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
		baseURL: baseURL,
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
		"Gridworld Predator/Prey",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Gridworld Predator/Prey - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A prey (Y) and a predator (X) share a rectangular grid. Each step you choose
one action for each agent: 0=down, 1=left, 2=up, 3=right (names work too).
The episode ends when both agents finish a step on the same cell.

AVAILABLE TOOLS:
- create_session: Start a session on a config, optionally with a seed
- list_sessions / get_session: Inspect sessions
- env_state: Current grid, positions, rewards and returns
- step: One step for both agents
- bulk_step: Several steps at once, stops at episode end
- reset_episode: Start a new episode with fresh random positions
- reward: Reward recomputed from the latest positions
- step_history: Paged step trace of the current episode
- list_configs: Available environment configs
- env_instructions: Full rules and reward formula
- describe_cell: What occupies a cell and how far it is from each agent`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func actionProperty(agent string) map[string]interface{} {
	return map[string]interface{}{
		"type":        []string{"integer", "string"},
		"description": fmt.Sprintf("Action for the %s: 0-3 or down/left/up/right", agent),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new environment session with optional config and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use (optional, defaults to classic)",
				},
				"seed": map[string]interface{}{
					"type":        []string{"integer", "string"},
					"description": "Seed for reproducible agent placement (optional); pass seeds above 2^53 as a decimal string",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
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
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Episode operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "env_state",
		Description: "Get the current environment state with the grid rendered as text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleEnvState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Advance the episode by one step with one action per agent",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id":      sessionIDProperty(),
				"prey_action":     actionProperty("prey"),
				"predator_action": actionProperty("predator"),
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Start a new episode before stepping",
				},
			},
			Required: []string{"session_id", "prey_action", "predator_action"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_step",
		Description: fmt.Sprintf("Execute up to %d steps in sequence; stops when the episode ends", engine.MaxBulkSteps),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"steps": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"prey_action":     actionProperty("prey"),
							"predator_action": actionProperty("predator"),
						},
						"required": []string{"prey_action", "predator_action"},
					},
					"description": "Action pairs to execute",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Start a new episode before stepping",
				},
			},
			Required: []string{"session_id", "steps"},
		},
	}, c.handleBulkStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_episode",
		Description: "Start a new episode with fresh random positions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reward",
		Description: "Get the rewards recomputed from the latest positions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReward)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step_history",
		Description: "Get the step trace of the current episode",
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
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStepHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available environment configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "env_instructions",
		Description: "Get the environment rules, action encoding and reward formula",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleEnvInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one grid cell: its occupant, its distance to each agent and which agents could reach it in one step",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, grows downwards)",
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

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Argument helpers. JSON numbers arrive as float64.

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// maxExactFloat is the largest integer a JSON number decoded as float64
// carries without rounding
const maxExactFloat = 1 << 53

// argInt reads a whole-number argument. ok is false when the key is absent
// or holds a non-numeric value; fractional numbers are an error.
func argInt(args map[string]interface{}, key string) (n int, ok bool, err error) {
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > maxExactFloat {
			return 0, false, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("%s must be a whole number, got %s", key, v)
		}
		return int(i), true, nil
	}
	return 0, false, nil
}

// argSeed reads a seed given as a number or, for values past 2^53, as a
// decimal string
func argSeed(args map[string]interface{}) (seed uint64, ok bool, err error) {
	switch v := args["seed"].(type) {
	case nil:
		return 0, false, nil
	case string:
		seed, err = strconv.ParseUint(v, 10, 64)
	case json.Number:
		seed, err = strconv.ParseUint(v.String(), 10, 64)
	case float64:
		if v < 0 || v != math.Trunc(v) || v > maxExactFloat {
			return 0, false, fmt.Errorf("seed must be a non-negative whole number up to 2^53 (pass larger seeds as a string), got %v", v)
		}
		return uint64(v), true, nil
	case int:
		if v < 0 {
			return 0, false, fmt.Errorf("seed must not be negative")
		}
		return uint64(v), true, nil
	default:
		return 0, false, fmt.Errorf("seed must be a number or a decimal string")
	}
	if err != nil {
		return 0, false, fmt.Errorf("seed must be a non-negative 64-bit integer: %w", err)
	}
	return seed, true, nil
}

func argBool(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// argAction returns an action as the REST API accepts it: an index or a name
func argAction(args map[string]interface{}, key string) (interface{}, error) {
	n, ok, err := argInt(args, key)
	if err != nil {
		return nil, err
	}
	if ok {
		return n, nil
	}
	if s, ok := args[key].(string); ok && s != "" {
		if _, err := engine.ParseAction(s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%s is required (0-3 or down/left/up/right)", key)
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]interface{}{}
	if configID := argString(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}
	seed, ok, err := argSeed(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nSeed: %d\n\n%s",
		session.ID, session.ConfigName, session.Seed, formatEnvState(session.EnvState))
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

	return mcp.NewToolResultText(formatSessionList(response.Count, response.Sessions)), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(request.GetArguments(), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleEnvState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(request.GetArguments(), "session_id")

	var state engine.EnvState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatEnvState(&state)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")

	preyAction, err := argAction(args, "prey_action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	predatorAction, err := argAction(args, "predator_action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"prey_action":     preyAction,
		"predator_action": predatorAction,
		"reset":           argBool(args, "reset"),
	}

	var result service.StepResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/step"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleBulkStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")
	stepsRaw, _ := args["steps"].([]interface{})

	if len(stepsRaw) == 0 {
		return mcp.NewToolResultError("steps must contain at least one action pair"), nil
	}

	steps := make([]map[string]interface{}, 0, len(stepsRaw))
	for i, raw := range stepsRaw {
		pair, ok := raw.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("steps[%d] must be an object", i)), nil
		}
		preyAction, err := argAction(pair, "prey_action")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("steps[%d]: %v", i, err)), nil
		}
		predatorAction, err := argAction(pair, "predator_action")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("steps[%d]: %v", i, err)), nil
		}
		steps = append(steps, map[string]interface{}{
			"prey_action":     preyAction,
			"predator_action": predatorAction,
		})
	}

	body := map[string]interface{}{
		"steps": steps,
		"reset": argBool(args, "reset"),
	}

	var result service.BulkStepResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-step"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkStepResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(request.GetArguments(), "session_id")

	var response struct {
		Message string           `json:"message"`
		State   *engine.EnvState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatEnvState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleReward(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(request.GetArguments(), "session_id")

	var reward service.RewardInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/reward"), nil, &reward); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReward(&reward)), nil
}

func (c *Client) handleStepHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")

	params := url.Values{}
	for _, key := range []string{"page", "limit"} {
		n, ok, err := argInt(args, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if ok {
			params.Set(key, strconv.Itoa(n))
		}
	}
	if order := argString(args, "order"); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
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

	return mcp.NewToolResultText(formatConfigs(configs)), nil
}

func (c *Client) handleEnvInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(envInstructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")
	row, okRow, errRow := argInt(args, "row")
	col, okCol, errCol := argInt(args, "col")
	if errRow != nil || errCol != nil || !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var state engine.EnvState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if state.Grid == nil {
		return mcp.NewToolResultError("environment state has no grid"), nil
	}

	pos := engine.Position{Row: row, Col: col}
	if !state.Grid.InBounds(pos) {
		rows, cols := state.Grid.Dims()
		return mcp.NewToolResultError(fmt.Sprintf("Cell %s is out of bounds. Grid is %dx%d (rows 0-%d, cols 0-%d)",
			pos, rows, cols, rows-1, cols-1)), nil
	}

	return mcp.NewToolResultText(describeCell(&state, pos)), nil
}
