// Package websocket pushes castle maze snapshots to presentation clients.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Run is the only goroutine touching the session map; clients
// register, unregister and broadcast through channels. Each connection has
// a read pump and a write pump.
//
// Message Protocol:
//
//   - Outgoing: {"session_id": "abc1", "event": "state_update", "snapshot": {...}}
//   - Incoming: {"action": "move", "direction": "up", "fast": true}
//     Actions are move, nudge (dx, dy), restart and state.
//   - Failed commands produce an "error" event for the sender only.
//
// Hub implements service.Notifier. BroadcastToSession never blocks; when the
// hub falls behind, updates are dropped and logged.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(log))
//	games := service.NewGameService(sessions, configs, service.WithNotifier(hub))
//	hub.SetGameService(games)
//	go hub.Run(ctx)
package websocket
