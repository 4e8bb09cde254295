// Package api provides the HTTP REST API for the castle maze.
//
// The api package implements:
//   - Session management endpoints
//   - Game command endpoints (move, bulk move, nudge, restart, tick)
//   - Move history and cell inspection
//   - Campaign configuration listing
//   - WebSocket upgrade for presentation clients
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "castle"})
//   - GET /api/sessions - List sessions (?sort=created|accessed|id&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions with their snapshots for a multi-session view
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session and stop its timers
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/move - {"direction": "up", "fast": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "left"], "fast": false}
//   - POST /api/sessions/{id}/nudge - {"dx": 0, "dy": -12}
//   - POST /api/sessions/{id}/restart - Only after game over or a win
//   - POST /api/sessions/{id}/tick - Advance the guard one step
//   - GET /api/sessions/{id}/history - ?page=1&limit=20&order=desc&current=true
//   - GET /api/sessions/{id}/cells/{row}/{col} - Describe one maze cell
//
// Configuration:
//   - GET /api/configs - List available campaigns
//   - GET /api/configs/{name} - Full campaign definition
//
// Other:
//   - GET /healthz - Liveness probe
//   - GET /ws?session={id} - WebSocket stream of snapshots
//
// Error Handling:
//
// Errors are returned as JSON with a status derived from the error kind:
// 404 for unknown sessions, campaigns and cells outside the level, 400 for
// malformed commands, 409 for a restart mid-run.
//
//	{"error": "session not found: abc1"}
//
// State changes are not broadcast here. The game service pushes every new
// snapshot to its notifier, which is the websocket hub in production.
//
// Usage:
//
//	server := api.NewServer(gameService, hub, api.WithLogger(log))
//	http.ListenAndServe(":8080", server)
//
// Enriched Responses (Move and Bulk Move)
//
// Move responses carry the executed step, the events it raised and a
// local_view_3x3 around the player. Bulk moves add requested_moves,
// moves_executed, stop_reason_code, stopped_on_move, truncated and the
// start and end level, coins and lives.
package api
