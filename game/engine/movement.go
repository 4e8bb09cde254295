package engine

// StopReason explains why a multi-step move ended early
type StopReason string

const (
	StopNone       StopReason = ""
	StopBoundary   StopReason = "boundary"
	StopWall       StopReason = "wall"
	StopExitLocked StopReason = "exit_locked"
)

// MoveReport describes what a directional maze command did
type MoveReport struct {
	Direction Direction  `json:"direction"`
	From      Coordinate `json:"from"`
	To        Coordinate `json:"to"`
	Requested int        `json:"requested"`
	Steps     int        `json:"steps"`
	Applied   bool       `json:"applied"`
	Stop      StopReason `json:"stop,omitempty"`

	Collected     bool `json:"collected,omitempty"`
	TrapTriggered bool `json:"trap_triggered,omitempty"`
	HazardHit     bool `json:"hazard_hit,omitempty"`
	SecretPassage bool `json:"secret_passage,omitempty"`
	ExitReached   bool `json:"exit_reached,omitempty"`

	Transition Transition `json:"transition,omitempty"`
}

// Moved reports whether the player changed cells
func (r MoveReport) Moved() bool {
	return r.From != r.To
}

// ApplyMove walks the player up to steps cells in dir. Each sub-step stops at
// the grid edge, at a wall, or at an exit while coins are short. Cell effects
// are applied once at the final cell. Routing through exits and secret
// passages is left to the caller, which inspects the report.
func ApplyMove(st *RunState, lvl *Level, dir Direction, steps int) MoveReport {
	report := MoveReport{
		Direction: dir,
		From:      st.PlayerPos,
		To:        st.PlayerPos,
		Requested: steps,
	}
	if st.Mode != Maze || st.Terminal() {
		return report
	}

	report.Applied = true
	st.Facing = dir

	pos := st.PlayerPos
	for i := 0; i < steps; i++ {
		next := pos.Step(dir)
		kind, ok := lvl.Grid.At(next)
		if !ok {
			report.Stop = StopBoundary
			break
		}
		if kind == Exit && st.Coins < lvl.RequiredCoins {
			report.Stop = StopExitLocked
			break
		}
		if kind == Wall {
			report.Stop = StopWall
			break
		}
		pos = next
		report.Steps++
	}

	st.PlayerPos = pos
	report.To = pos
	applyCellEffects(st, lvl, &report)
	return report
}

func applyCellEffects(st *RunState, lvl *Level, report *MoveReport) {
	pos := st.PlayerPos

	if st.Collectibles.Has(pos) {
		st.Collectibles.Remove(pos)
		st.Coins++
		report.Collected = true
	}

	if !st.GameOver && st.Traps.Has(pos) {
		st.Traps.Remove(pos)
		st.RevealedTraps.Put(pos)
		loseLife(st)
		st.Flash = FlashTrap
		report.TrapTriggered = true
	}

	if st.GameOver {
		return
	}

	switch kind, _ := lvl.Grid.At(pos); kind {
	case SecretPassage:
		report.SecretPassage = true
	case Exit:
		report.ExitReached = st.Coins >= lvl.RequiredCoins
	case Wall, Open:
	}
}

// loseLife takes one life, never going below zero, and ends the attempt at zero
func loseLife(st *RunState) {
	if st.Lives > 0 {
		st.Lives--
	}
	if st.Lives == 0 {
		st.GameOver = true
	}
}
