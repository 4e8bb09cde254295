// Package schedule provides the two timers a running maze needs.
//
// Periodic drives the patrol hazard: it is started when a level with a
// guard is entered and stopped when the run leaves the maze or ends.
// OneShot clears the flash signal a short delay after it was raised; arming
// it again supersedes the pending clear.
//
// Neither type touches game state. Callbacks run on their own goroutines and
// the owner is expected to take its own lock before mutating anything.
package schedule
