// Package engine provides the core simulation of the castle maze game.
//
// The engine package implements the game mechanics including:
//   - Placement resolution that moves authored coins and traps onto free cells
//   - Multi-step grid movement with coin pickup, hidden traps and exit gating
//   - A patrolling guard that follows walls on a fixed cadence
//   - Level progression between the overworld, the mazes and the win screen
//   - Campaign configuration loading, validation and reachability analysis
//
// Core Types:
//
// A Campaign is the validated, read-only list of levels built from a
// CampaignConfig. RunState is the single mutable state of one attempt, and
// GameEngine wraps both behind the Engine interface together with the move
// history. Snapshot is the copy handed to presentation layers.
//
// Usage:
//
//	eng, err := engine.NewEngine(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.Nudge(0, -12)            // walk to the door, entering the maze
//	eng.Move(engine.Right, true) // two cells to the right
//	eng.Tick()                   // advance the guard one step
//	snap := eng.GetSnapshot()
//
// Game Rules:
//
// The player collects coins in each maze until the gate opens, then walks
// onto the exit. Hidden traps and the guard each cost a life; at zero lives
// the run is over until it is restarted. Finishing the first level returns
// the player to the overworld, the third level jumps ahead, and a secret
// passage skips straight past the trap level.
package engine
