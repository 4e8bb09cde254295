package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// State
	GetSnapshot() *Snapshot
	GetState() *RunState
	GetCampaign() *Campaign
	IsGameOver() bool
	IsWon() bool

	// Commands
	Move(dir Direction, fast bool) MoveReport
	Nudge(dx, dy int) Transition
	Restart() error

	// Clock
	Tick() (moved, hit bool)
	ClearFlash() bool
	PatrolActive() bool
	FlashSerial() uint64

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetCurrentMoves() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Inspection
	DescribeCell(c Coordinate) (*CellInfo, error)
}

// CellInfo describes one cell of the current level as the player sees it
type CellInfo struct {
	Position    Coordinate `json:"position"`
	Kind        CellKind   `json:"kind"`
	Collectible bool       `json:"collectible"`
	Trap        bool       `json:"trap"`
	Hazard      bool       `json:"hazard"`
	Player      bool       `json:"player"`
	Passable    bool       `json:"passable"`
}

// GameEngine implements Engine for a single run of a campaign. It is not
// safe for concurrent use; callers serialise access.
type GameEngine struct {
	campaign *Campaign
	state    *RunState

	flashSerial uint64
	message     string

	moveHistory  []MoveHistoryEntry
	currentMoves []MoveHistoryEntry
	totalMoves   int
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates a new game engine for the campaign described by config
func NewEngine(config *CampaignConfig) (*GameEngine, error) {
	campaign, err := NewCampaign(config)
	if err != nil {
		return nil, err
	}
	return NewEngineForCampaign(campaign), nil
}

// NewEngineForCampaign creates a new game engine for an already built campaign
func NewEngineForCampaign(campaign *Campaign) *GameEngine {
	return &GameEngine{
		campaign:     campaign,
		state:        campaign.NewRunState(),
		message:      fmt.Sprintf("Welcome to %s. Walk to the door to enter the maze.", campaign.Name),
		moveHistory:  []MoveHistoryEntry{},
		currentMoves: []MoveHistoryEntry{},
	}
}

// GetSnapshot returns a copy of the observable state
func (e *GameEngine) GetSnapshot() *Snapshot {
	snap := e.campaign.TakeSnapshot(e.state)
	snap.Message = e.message
	snap.TotalMoves = e.totalMoves
	return snap
}

// GetState returns the live run state. Mutating it bypasses the rules.
func (e *GameEngine) GetState() *RunState {
	return e.state
}

// GetCampaign returns the campaign being played
func (e *GameEngine) GetCampaign() *Campaign {
	return e.campaign
}

// IsGameOver returns whether the player ran out of lives
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsWon returns whether the player finished the last level
func (e *GameEngine) IsWon() bool {
	return e.state.Won
}

// Move applies a directional command. In the overworld it walks the free
// position by the overworld step; in the maze it moves one cell, or two when
// fast is set.
func (e *GameEngine) Move(dir Direction, fast bool) MoveReport {
	var report MoveReport
	if e.state.Mode == Overworld {
		report = e.walkOverworld(dir, fast)
	} else {
		steps := 1
		if fast {
			steps = FastSteps
		}
		report = e.campaign.Move(e.state, dir, steps)
	}

	e.noteFlash(report.TrapTriggered || report.HazardHit)
	e.message = describeMove(e, report)
	e.recordMove(dir.String(), report.From, report.To, report.Applied)
	return report
}

func (e *GameEngine) walkOverworld(dir Direction, fast bool) MoveReport {
	step := e.campaign.Overworld.Step
	if fast {
		step = e.campaign.Overworld.FastStep
	}
	dr, dc := dir.Delta()

	report := MoveReport{Direction: dir, From: e.state.PlayerPos, Requested: 1}
	if !e.state.Terminal() {
		report.Applied = true
		report.Transition = e.campaign.Nudge(e.state, dc*step, dr*step)
	}
	report.To = e.state.PlayerPos
	return report
}

// Nudge moves the overworld position by an arbitrary offset
func (e *GameEngine) Nudge(dx, dy int) Transition {
	from := e.state.PlayerPos
	applied := e.state.Mode == Overworld && !e.state.Terminal()
	t := e.campaign.Nudge(e.state, dx, dy)
	if applied {
		e.message = describeTransition(e, t)
	}
	e.recordMove(fmt.Sprintf("nudge(%d,%d)", dx, dy), from, e.state.PlayerPos, applied)
	return t
}

// Restart resets the run to level 1 after game over or a win
func (e *GameEngine) Restart() error {
	if err := e.campaign.Restart(e.state); err != nil {
		return err
	}
	e.message = describeTransition(e, TransitionRestart)
	e.recordMove("restart", e.state.PlayerPos, e.state.PlayerPos, true)
	// the current segment starts over while the cumulative history is kept
	e.currentMoves = []MoveHistoryEntry{}
	return nil
}

// Tick advances the patrol hazard by one step
func (e *GameEngine) Tick() (moved, hit bool) {
	moved, hit = e.campaign.Tick(e.state)
	e.noteFlash(hit)
	if hit {
		e.message = hazardMessage(e.state)
	}
	return moved, hit
}

// ClearFlash drops the transient flash signal
func (e *GameEngine) ClearFlash() bool {
	if e.state.Flash == FlashNone {
		return false
	}
	e.state.Flash = FlashNone
	return true
}

// PatrolActive reports whether the hazard should currently be ticking
func (e *GameEngine) PatrolActive() bool {
	return e.campaign.PatrolActive(e.state)
}

// FlashSerial increases every time a new flash is raised
func (e *GameEngine) FlashSerial() uint64 {
	return e.flashSerial
}

func (e *GameEngine) noteFlash(raised bool) {
	if raised {
		e.flashSerial++
	}
}

// GetMoveHistory returns every command since the engine was created
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.moveHistory
}

// GetCurrentMoves returns commands since the last restart
func (e *GameEngine) GetCurrentMoves() []MoveHistoryEntry {
	return e.currentMoves
}

// GetLastMove returns the last command, or nil if there is none
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.moveHistory) == 0 {
		return nil
	}
	return &e.moveHistory[len(e.moveHistory)-1]
}

// TotalMoves returns the number of commands recorded
func (e *GameEngine) TotalMoves() int {
	return e.totalMoves
}

func (e *GameEngine) recordMove(action string, from, to Coordinate, success bool) {
	entry := MoveHistoryEntry{
		Action:       action,
		Mode:         e.state.Mode,
		Level:        e.state.Level,
		FromPosition: from,
		ToPosition:   to,
		Coins:        e.state.Coins,
		Lives:        e.state.Lives,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   e.totalMoves + 1,
	}
	e.moveHistory = append(e.moveHistory, entry)
	e.currentMoves = append(e.currentMoves, entry)
	e.totalMoves++
}

// DescribeCell reports what occupies a cell of the current level
func (e *GameEngine) DescribeCell(c Coordinate) (*CellInfo, error) {
	lvl := e.campaign.current(e.state)
	kind, ok := lvl.Grid.At(c)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}

	info := &CellInfo{
		Position:    c,
		Kind:        kind,
		Collectible: e.state.Collectibles.Has(c),
		Trap:        e.state.RevealedTraps.Has(c),
		Player:      e.state.Mode == Maze && e.state.PlayerPos == c,
		Passable:    kind == Open || kind == SecretPassage || (kind == Exit && e.state.Coins >= lvl.RequiredCoins),
	}
	if e.state.HazardPos != nil && *e.state.HazardPos == c {
		info.Hazard = true
	}
	return info, nil
}
