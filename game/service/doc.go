// Package service provides the business logic layer for the castle maze.
//
// The service package implements:
//   - Multi-session game management
//   - Command processing (moves, bulk moves, overworld nudges, restart)
//   - The patrol and flash timers of each session
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads campaign configurations.
// Notifier receives a snapshot after every change of a session.
//
// Concurrency:
//
// Each Session owns one engine. Commands and timer callbacks take the
// session lock, so a patrol tick never interleaves with a move. After each
// transition the patrol timer is started or stopped to match the run, a
// pending flash clear is re-armed when a new flash was raised, and the
// snapshot is pushed to the Notifier.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithNotifier(hub),
//		service.WithLogger(log),
//	)
//	defer gameService.Close()
//
//	info, err := gameService.CreateSession(ctx, "castle")
//	if err != nil {
//		log.Fatal().Err(err).Msg("create session")
//	}
//	result, err := gameService.Move(ctx, info.ID, "up", false)
package service
