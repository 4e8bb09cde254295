// Package mcp exposes the castle maze to AI agents over the Model Context
// Protocol.
//
// Client is a thin proxy: every tool call becomes a REST request against
// the api package and the JSON answer is formatted as text for the agent.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: snapshot with the rendered maze
//   - move, bulk_move: directional commands, optionally fast
//   - nudge: overworld offset
//   - restart, tick: run control
//   - move_history: paginated history
//   - list_configs: available campaigns
//   - describe_cell: contents of one maze cell
//   - game_instructions: rules and legend
//
// move and bulk_move accept an intent argument. It is not sent to the
// server; it only asks the agent to state its plan.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
