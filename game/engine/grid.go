package engine

import "fmt"

// Grid is the immutable cell map of one level
type Grid struct {
	cells [][]CellKind
}

// ParseLayout builds a Grid from layout rows. Rows must be rectangular and
// contain only '#', '.', 'E' and 'S'.
func ParseLayout(layout []string) (*Grid, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("%w: layout is empty", ErrInvalidConfig)
	}

	width := len(layout[0])
	cells := make([][]CellKind, len(layout))
	for r, row := range layout {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidConfig, r, len(row), width)
		}
		cells[r] = make([]CellKind, width)
		for c := 0; c < len(row); c++ {
			switch row[c] {
			case WallChar:
				cells[r][c] = Wall
			case OpenChar:
				cells[r][c] = Open
			case ExitChar:
				cells[r][c] = Exit
			case SecretChar:
				cells[r][c] = SecretPassage
			default:
				return nil, fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrInvalidConfig, row[c], r, c)
			}
		}
	}

	return &Grid{cells: cells}, nil
}

// MustParseLayout is ParseLayout for known-good layouts
func MustParseLayout(layout ...string) *Grid {
	g, err := ParseLayout(layout)
	if err != nil {
		panic(err)
	}
	return g
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return len(g.cells)
}

// Cols returns the width of the first row
func (g *Grid) Cols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// InBounds reports whether c addresses an existing cell
func (g *Grid) InBounds(c Coordinate) bool {
	if c.Row < 0 || c.Row >= len(g.cells) {
		return false
	}
	return c.Col >= 0 && c.Col < len(g.cells[c.Row])
}

// At returns the cell kind at c. Out of bounds cells report Wall and false.
func (g *Grid) At(c Coordinate) (CellKind, bool) {
	if !g.InBounds(c) {
		return Wall, false
	}
	return g.cells[c.Row][c.Col], true
}

// IsOpen reports whether c is a plain open floor cell
func (g *Grid) IsOpen(c Coordinate) bool {
	kind, ok := g.At(c)
	return ok && kind == Open
}

// Walkable reports whether c is inside the grid and not a wall
func (g *Grid) Walkable(c Coordinate) bool {
	kind, ok := g.At(c)
	return ok && kind != Wall
}

// Start returns the fixed player start cell: second to last row, first column inside the border
func (g *Grid) Start() Coordinate {
	return Coordinate{Row: len(g.cells) - 2, Col: 1}
}

// Each calls fn for every cell in row-major order
func (g *Grid) Each(fn func(Coordinate, CellKind)) {
	for r, row := range g.cells {
		for c, kind := range row {
			fn(Coordinate{Row: r, Col: c}, kind)
		}
	}
}

// Find returns every cell of the given kind in row-major order
func (g *Grid) Find(kind CellKind) []Coordinate {
	var found []Coordinate
	g.Each(func(c Coordinate, k CellKind) {
		if k == kind {
			found = append(found, c)
		}
	})
	return found
}

// Layout renders the grid back to layout rows
func (g *Grid) Layout() []string {
	rows := make([]string, len(g.cells))
	for r, row := range g.cells {
		buf := make([]byte, len(row))
		for c, kind := range row {
			buf[c] = kind.Char()
		}
		rows[r] = string(buf)
	}
	return rows
}
