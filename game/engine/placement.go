package engine

import (
	"github.com/zyedidia/generic/mapset"
)

// ResolveCollectibles moves each desired coordinate onto a distinct open
// cell. Output order matches input order and earlier entries claim contested
// cells first.
func ResolveCollectibles(g *Grid, desired []Coordinate) []Coordinate {
	return resolvePlacements(g, desired, mapset.New[Coordinate]())
}

// ResolveTraps is ResolveCollectibles with the cells in blocked already
// claimed. blocked is not modified.
func ResolveTraps(g *Grid, desired []Coordinate, blocked CoordSet) []Coordinate {
	used := mapset.New[Coordinate]()
	blocked.Each(func(c Coordinate) {
		used.Put(c)
	})
	return resolvePlacements(g, desired, used)
}

// BuildBlockedSet returns the cells traps may never occupy: the player start,
// every resolved collectible, and every exit or secret passage.
func BuildBlockedSet(g *Grid, collectibles []Coordinate, start Coordinate) CoordSet {
	blocked := mapset.New[Coordinate]()
	blocked.Put(start)
	for _, c := range collectibles {
		blocked.Put(c)
	}
	g.Each(func(c Coordinate, kind CellKind) {
		if kind == Exit || kind == SecretPassage {
			blocked.Put(c)
		}
	})
	return blocked
}

func resolvePlacements(g *Grid, desired []Coordinate, used CoordSet) []Coordinate {
	free := func(c Coordinate) bool {
		return g.IsOpen(c) && !used.Has(c)
	}

	placed := make([]Coordinate, 0, len(desired))
	for _, want := range desired {
		got, ok := want, free(want)
		if !ok {
			got, ok = ringSearch(g, want, free)
		}
		if !ok {
			got, ok = rasterSearch(g, free)
		}
		if !ok {
			// saturated grid: keep the authored cell even if it collides
			got = want
		}
		used.Put(got)
		placed = append(placed, got)
	}
	return placed
}

// ringSearch scans Manhattan rings of growing radius around origin. Within a
// ring rows are visited top to bottom and the +col candidate precedes -col.
func ringSearch(g *Grid, origin Coordinate, free func(Coordinate) bool) (Coordinate, bool) {
	maxRadius := g.Rows() + g.Cols()
	for radius := 1; radius <= maxRadius; radius++ {
		for dr := -radius; dr <= radius; dr++ {
			dc := radius - abs(dr)
			offsets := []int{dc, -dc}
			if dc == 0 {
				offsets = offsets[:1]
			}
			for _, off := range offsets {
				c := Coordinate{Row: origin.Row + dr, Col: origin.Col + off}
				if free(c) {
					return c, true
				}
			}
		}
	}
	return Coordinate{}, false
}

func rasterSearch(g *Grid, free func(Coordinate) bool) (Coordinate, bool) {
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < len(g.cells[r]); c++ {
			if cell := (Coordinate{Row: r, Col: c}); free(cell) {
				return cell, true
			}
		}
	}
	return Coordinate{}, false
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ManhattanDistance returns the grid distance between two cells
func ManhattanDistance(from, to Coordinate) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}
