package engine

import (
	"fmt"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// CellKind represents the static kind of a maze cell
type CellKind int

const (
	Wall CellKind = iota
	Open
	Exit
	SecretPassage
)

// Layout characters
const (
	WallChar   = '#'
	OpenChar   = '.'
	ExitChar   = 'E'
	SecretChar = 'S'
)

const (
	// Validation constants
	MinGridSize     = 3
	MaxGridSize     = 64
	DefaultMaxLives = 5
	MaxBulkMoves    = 50
	FastSteps       = 2
	DefaultPatrolMS = 350
	DefaultFlashMS  = 200
)

func (k CellKind) String() string {
	switch k {
	case Wall:
		return "wall"
	case Open:
		return "open"
	case Exit:
		return "exit"
	case SecretPassage:
		return "secret_passage"
	}
	return fmt.Sprintf("cell(%d)", int(k))
}

// Char returns the layout character for the cell kind
func (k CellKind) Char() byte {
	switch k {
	case Open:
		return OpenChar
	case Exit:
		return ExitChar
	case SecretPassage:
		return SecretChar
	}
	return WallChar
}

func (k CellKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CellKind) UnmarshalText(text []byte) error {
	for _, kind := range []CellKind{Wall, Open, Exit, SecretPassage} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown cell kind %q", text)
}

// Direction is one of the four grid directions
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in command order
var Directions = []Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Delta returns the row and column offsets of a single step
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection accepts direction names and the usual single-letter aliases
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w", "north":
		return Up, nil
	case "down", "s", "south":
		return Down, nil
	case "left", "a", "west":
		return Left, nil
	case "right", "d", "east":
		return Right, nil
	}
	return Up, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Mode is the top level progression mode
type Mode int

const (
	Overworld Mode = iota
	Maze
	Win
)

func (m Mode) String() string {
	switch m {
	case Overworld:
		return "overworld"
	case Maze:
		return "maze"
	case Win:
		return "win"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "overworld":
		*m = Overworld
	case "maze":
		*m = Maze
	case "win":
		*m = Win
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// FlashKind is the transient hazard signal shown to the player
type FlashKind int

const (
	FlashNone FlashKind = iota
	FlashTrap
	FlashHazard
)

func (f FlashKind) String() string {
	switch f {
	case FlashNone:
		return ""
	case FlashTrap:
		return "trap"
	case FlashHazard:
		return "hazard"
	}
	return fmt.Sprintf("flash(%d)", int(f))
}

func (f FlashKind) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *FlashKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*f = FlashNone
	case "trap":
		*f = FlashTrap
	case "hazard":
		*f = FlashHazard
	default:
		return fmt.Errorf("unknown flash %q", text)
	}
	return nil
}

// Coordinate is a (row, col) cell address
type Coordinate struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Step returns the neighbouring coordinate in direction d
func (c Coordinate) Step(d Direction) Coordinate {
	dr, dc := d.Delta()
	return Coordinate{Row: c.Row + dr, Col: c.Col + dc}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Point is a free-form overworld position
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// CoordSet is a set of cells
type CoordSet = mapset.Set[Coordinate]

// Level is one authored maze level with its parsed grid
type Level struct {
	Number              int
	Name                string
	Grid                *Grid
	RequiredCoins       int
	DesiredCollectibles []Coordinate
	DesiredTraps        []Coordinate
	HazardSpawn         *Coordinate
	Dark                bool
}

// Start returns the fixed player start cell of the level
func (l *Level) Start() Coordinate {
	return l.Grid.Start()
}

// RunState is the mutable state of one playthrough attempt
type RunState struct {
	Mode      Mode
	Level     int
	Overworld Point

	PlayerPos Coordinate
	Facing    Direction

	Collectibles  CoordSet
	Traps         CoordSet
	RevealedTraps CoordSet

	HazardPos    *Coordinate
	HazardFacing Direction

	Coins int
	Lives int

	// SecondaryUnlock opens the overworld door straight into the secret
	// level. Nothing in the rules sets it; it stays false unless a caller
	// flips it.
	SecondaryUnlock bool

	GameOver bool
	Won      bool
	Flash    FlashKind
}

// Terminal reports whether the attempt has ended
func (s *RunState) Terminal() bool {
	return s.GameOver || s.Won
}

// MoveHistoryEntry represents a single command in the session history
type MoveHistoryEntry struct {
	Action       string     `json:"action"`
	Mode         Mode       `json:"mode"`
	Level        int        `json:"level"`
	FromPosition Coordinate `json:"from_position"`
	ToPosition   Coordinate `json:"to_position"`
	Coins        int        `json:"coins"`
	Lives        int        `json:"lives"`
	Timestamp    int64      `json:"timestamp"`
	Success      bool       `json:"success"`
	MoveNumber   int        `json:"move_number"`
}

func cloneCoord(c *Coordinate) *Coordinate {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
