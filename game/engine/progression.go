package engine

import (
	"time"

	"github.com/zyedidia/generic/mapset"
)

// Transition names a progression step taken after a command
type Transition string

const (
	TransitionNone      Transition = ""
	TransitionEnterMaze Transition = "enter_maze"
	TransitionOverworld Transition = "return_to_overworld"
	TransitionNextLevel Transition = "next_level"
	TransitionShortcut  Transition = "shortcut"
	TransitionSecret    Transition = "secret_passage"
	TransitionWin       Transition = "win"
	TransitionRestart   Transition = "restart"
)

// OverworldSettings describes the free-movement scene in front of the maze
type OverworldSettings struct {
	Start    Point
	Min      Point
	Max      Point
	DoorMin  Point
	DoorMax  Point
	Step     int
	FastStep int
}

// Clamp keeps p inside the walkable rectangle
func (o OverworldSettings) Clamp(p Point) Point {
	return Point{
		X: min(o.Max.X, max(o.Min.X, p.X)),
		Y: min(o.Max.Y, max(o.Min.Y, p.Y)),
	}
}

// AtDoor reports whether p is inside the maze entrance region
func (o OverworldSettings) AtDoor(p Point) bool {
	return p.X >= o.DoorMin.X && p.X <= o.DoorMax.X &&
		p.Y >= o.DoorMin.Y && p.Y <= o.DoorMax.Y
}

// Routing holds the level numbers with irregular end-of-level routing
type Routing struct {
	// OverworldLevel returns the player to the overworld when completed
	OverworldLevel int
	// ShortcutLevel jumps to ShortcutTarget when completed
	ShortcutLevel  int
	ShortcutTarget int
	// SecretLevel holds the secret passage; the passage leads to the level after it
	SecretLevel int
}

// Campaign is the validated, read-only set of levels and rules for a run
type Campaign struct {
	Name           string
	Description    string
	Levels         []*Level
	MaxLives       int
	PatrolInterval time.Duration
	FlashDuration  time.Duration
	Overworld      OverworldSettings
	Routing        Routing
}

// LevelCount returns the number of authored levels
func (c *Campaign) LevelCount() int {
	return len(c.Levels)
}

// Level returns level n, counting from 1
func (c *Campaign) Level(n int) (*Level, bool) {
	if n < 1 || n > len(c.Levels) {
		return nil, false
	}
	return c.Levels[n-1], true
}

func (c *Campaign) current(st *RunState) *Level {
	if lvl, ok := c.Level(st.Level); ok {
		return lvl
	}
	return c.Levels[0]
}

// NewRunState returns a run at its level-1 initial values
func (c *Campaign) NewRunState() *RunState {
	st := &RunState{}
	c.reset(st)
	return st
}

func (c *Campaign) reset(st *RunState) {
	*st = RunState{
		Mode:      Overworld,
		Overworld: c.Overworld.Start,
	}
	c.loadLevel(st, 1)
}

// loadLevel re-derives every level-scoped field from the authored level
func (c *Campaign) loadLevel(st *RunState, n int) {
	lvl, ok := c.Level(n)
	if !ok {
		lvl, n = c.Levels[0], 1
	}

	start := lvl.Start()
	collectibles := ResolveCollectibles(lvl.Grid, lvl.DesiredCollectibles)
	traps := ResolveTraps(lvl.Grid, lvl.DesiredTraps, BuildBlockedSet(lvl.Grid, collectibles, start))

	st.Level = n
	st.PlayerPos = start
	st.Facing = Right
	st.Collectibles = setOf(collectibles)
	st.Traps = setOf(traps)
	st.RevealedTraps = mapset.New[Coordinate]()
	st.HazardPos = cloneCoord(lvl.HazardSpawn)
	st.HazardFacing = Right
	st.Coins = 0
	st.Lives = c.MaxLives
	st.GameOver = false
	st.Won = false
}

func setOf(coords []Coordinate) CoordSet {
	s := mapset.New[Coordinate]()
	for _, c := range coords {
		s.Put(c)
	}
	return s
}

// DoorOpen reports whether the overworld entrance is shown open
func (c *Campaign) DoorOpen(st *RunState) bool {
	return st.SecondaryUnlock || c.Overworld.AtDoor(st.Overworld)
}

// EnterMaze switches to maze mode on the current level, or on the secret
// level when the secondary unlock is set while standing at the shortcut level.
func (c *Campaign) EnterMaze(st *RunState) int {
	target := st.Level
	if st.Level == c.Routing.ShortcutLevel && st.SecondaryUnlock {
		if _, ok := c.Level(c.Routing.SecretLevel); ok {
			target = c.Routing.SecretLevel
		}
	}
	c.loadLevel(st, target)
	st.Mode = Maze
	return st.Level
}

// Nudge moves the overworld position by (dx, dy) and enters the maze when the
// position lands inside the door region.
func (c *Campaign) Nudge(st *RunState, dx, dy int) Transition {
	if st.Mode != Overworld || st.Terminal() {
		return TransitionNone
	}
	st.Overworld = c.Overworld.Clamp(Point{X: st.Overworld.X + dx, Y: st.Overworld.Y + dy})
	if !c.Overworld.AtDoor(st.Overworld) {
		return TransitionNone
	}
	c.EnterMaze(st)
	return TransitionEnterMaze
}

// ExitRoute reports where the exit of level n leads and the level loaded
// next. The level is 0 for TransitionWin.
func (c *Campaign) ExitRoute(n int) (Transition, int) {
	switch {
	case n >= len(c.Levels):
		return TransitionWin, 0
	case n == c.Routing.OverworldLevel:
		return TransitionOverworld, n + 1
	case n == c.Routing.ShortcutLevel:
		if _, ok := c.Level(c.Routing.ShortcutTarget); ok {
			return TransitionShortcut, c.Routing.ShortcutTarget
		}
	}
	return TransitionNextLevel, n + 1
}

// SecretTarget returns the level the secret passage leads to. A secret_level
// of 0 disables the passage.
func (c *Campaign) SecretTarget() (int, bool) {
	if c.Routing.SecretLevel < 1 {
		return 0, false
	}
	target := c.Routing.SecretLevel + 1
	_, ok := c.Level(target)
	return target, ok
}

// CompleteLevel routes the run after the exit of the current level is reached
func (c *Campaign) CompleteLevel(st *RunState) Transition {
	transition, next := c.ExitRoute(st.Level)
	switch transition {
	case TransitionWin:
		st.Mode = Win
		st.Won = true
	case TransitionOverworld:
		c.loadLevel(st, next)
		st.Mode = Overworld
		st.Overworld = c.Overworld.Start
	default:
		c.loadLevel(st, next)
	}
	return transition
}

// TakeSecretPassage warps to the level after the secret level, ignoring the
// coin gate. Nothing happens when that level does not exist.
func (c *Campaign) TakeSecretPassage(st *RunState) Transition {
	target, ok := c.SecretTarget()
	if !ok {
		return TransitionNone
	}
	c.loadLevel(st, target)
	return TransitionSecret
}

// Restart resets the run to its level-1 initial values. Only allowed once the
// run is over.
func (c *Campaign) Restart(st *RunState) error {
	if !st.Terminal() {
		return ErrRestartUnavailable
	}
	c.reset(st)
	return nil
}

// Move applies a maze command and any routing it triggers
func (c *Campaign) Move(st *RunState, dir Direction, steps int) MoveReport {
	lvl := c.current(st)
	report := ApplyMove(st, lvl, dir, steps)
	if !report.Applied {
		return report
	}

	if CheckHazardCollision(st, lvl) {
		report.HazardHit = true
		report.SecretPassage = false
		report.ExitReached = false
		return report
	}

	switch {
	case report.SecretPassage:
		report.Transition = c.TakeSecretPassage(st)
	case report.ExitReached:
		report.Transition = c.CompleteLevel(st)
	}
	return report
}

// PatrolActive reports whether the hazard should be advancing
func (c *Campaign) PatrolActive(st *RunState) bool {
	return st.Mode == Maze && st.HazardPos != nil && !st.Terminal()
}

// Tick advances the hazard one step and resolves a collision with the player
func (c *Campaign) Tick(st *RunState) (moved, hit bool) {
	if !c.PatrolActive(st) {
		return false, false
	}
	lvl := c.current(st)
	moved = AdvancePatrol(st, lvl.Grid)
	hit = CheckHazardCollision(st, lvl)
	return moved, hit
}
