// Package session provides in-memory session management for the castle maze.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Session ID generation
//   - Expiry of idle sessions
//
// Core Types:
//
// Manager stores service.Session values keyed by lower-cased ID. Each session
// owns its own engine, so sessions never share run state.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex characters of a random UUID. Lookups
// are case-insensitive.
//
// Cleanup:
//
// Deleting or expiring a session closes it, which stops its patrol and
// flash timers. RunCleanup runs the expiry sweep on an interval until its
// context is cancelled.
//
// Usage:
//
//	manager := session.NewManager().WithLogger(log)
//	sess, err := manager.Create("", "castle", campaign)
//	if err != nil {
//		return err
//	}
//	go manager.RunCleanup(ctx, time.Hour, 24*time.Hour)
package session
