// Package mcp exposes the gridworld REST API as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes one or two REST requests
// against a running API server and the JSON reply is rendered as text.
// Failures are returned as tool errors (mcp.NewToolResultError), never as
// Go errors, so the calling agent sees the API's message.
//
// MCP Tools:
//   - create_session: New session on a config, optional seed
//   - list_sessions / get_session: Session details
//   - env_state: Grid rendered as text plus positions, rewards and returns
//   - step: One action per agent
//   - bulk_step: Several action pairs, stops at episode end
//   - reset_episode: New episode with fresh random positions
//   - reward: Reward recomputed from the latest positions
//   - step_history: Paged step trace
//   - list_configs: Available environment configs
//   - env_instructions: Rules, action encoding and reward formula
//   - describe_cell: Occupant of a cell and its distance to each agent
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
