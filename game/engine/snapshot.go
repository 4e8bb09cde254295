package engine

import (
	"slices"
)

// Snapshot is the read-only view of a run handed to presentation layers.
// Unrevealed traps are never included.
type Snapshot struct {
	Campaign  string     `json:"campaign"`
	Mode      Mode       `json:"mode"`
	Level     int        `json:"level"`
	LevelName string     `json:"level_name"`
	Levels    int        `json:"levels"`
	Layout    []string   `json:"layout,omitempty"`
	Dark      bool       `json:"dark,omitempty"`
	Overworld Point      `json:"overworld"`
	DoorOpen  bool       `json:"door_open"`
	PlayerPos Coordinate `json:"player_pos"`
	Facing    Direction  `json:"facing"`

	Coins         int  `json:"coins"`
	RequiredCoins int  `json:"required_coins"`
	GateOpen      bool `json:"gate_open"`
	Lives         int  `json:"lives"`
	MaxLives      int  `json:"max_lives"`

	Collectibles  []Coordinate `json:"collectibles"`
	RevealedTraps []Coordinate `json:"revealed_traps"`
	HazardPos     *Coordinate  `json:"hazard_pos,omitempty"`
	HazardFacing  Direction    `json:"hazard_facing"`

	GameOver bool      `json:"game_over"`
	Won      bool      `json:"won"`
	Flash    FlashKind `json:"flash,omitempty"`
	Message  string    `json:"message,omitempty"`

	TotalMoves int `json:"total_moves"`
}

// TakeSnapshot copies the observable part of st
func (c *Campaign) TakeSnapshot(st *RunState) *Snapshot {
	lvl := c.current(st)
	return &Snapshot{
		Campaign:      c.Name,
		Mode:          st.Mode,
		Level:         st.Level,
		LevelName:     lvl.Name,
		Levels:        len(c.Levels),
		Layout:        lvl.Grid.Layout(),
		Dark:          lvl.Dark,
		Overworld:     st.Overworld,
		DoorOpen:      c.DoorOpen(st),
		PlayerPos:     st.PlayerPos,
		Facing:        st.Facing,
		Coins:         st.Coins,
		RequiredCoins: lvl.RequiredCoins,
		GateOpen:      st.Coins >= lvl.RequiredCoins,
		Lives:         st.Lives,
		MaxLives:      c.MaxLives,
		Collectibles:  sortedCoords(st.Collectibles),
		RevealedTraps: sortedCoords(st.RevealedTraps),
		HazardPos:     cloneCoord(st.HazardPos),
		HazardFacing:  st.HazardFacing,
		GameOver:      st.GameOver,
		Won:           st.Won,
		Flash:         st.Flash,
	}
}

func sortedCoords(set CoordSet) []Coordinate {
	out := make([]Coordinate, 0, set.Size())
	set.Each(func(c Coordinate) {
		out = append(out, c)
	})
	slices.SortFunc(out, func(a, b Coordinate) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	return out
}

// Render draws the maze as text rows: '@' player, 'H' hazard, 'o'
// collectible, 'x' revealed trap. Dark levels only show cells within radius
// of the player.
func (s *Snapshot) Render(radius int) []string {
	rows := make([][]byte, len(s.Layout))
	for r, line := range s.Layout {
		rows[r] = []byte(line)
	}
	set := func(c Coordinate, ch byte) {
		if c.Row >= 0 && c.Row < len(rows) && c.Col >= 0 && c.Col < len(rows[c.Row]) {
			rows[c.Row][c.Col] = ch
		}
	}
	for _, c := range s.Collectibles {
		set(c, 'o')
	}
	for _, c := range s.RevealedTraps {
		set(c, 'x')
	}
	if s.HazardPos != nil {
		set(*s.HazardPos, 'H')
	}
	set(s.PlayerPos, '@')

	if s.Dark && radius > 0 {
		for r := range rows {
			for c := range rows[r] {
				if ManhattanDistance(s.PlayerPos, Coordinate{Row: r, Col: c}) > radius {
					rows[r][c] = ' '
				}
			}
		}
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = string(row)
	}
	return out
}

// HasRevealedTrap reports whether c holds a revealed trap
func (s *Snapshot) HasRevealedTrap(c Coordinate) bool {
	return slices.Contains(s.RevealedTraps, c)
}

// HasCollectible reports whether c holds an unclaimed collectible
func (s *Snapshot) HasCollectible(c Coordinate) bool {
	return slices.Contains(s.Collectibles, c)
}
