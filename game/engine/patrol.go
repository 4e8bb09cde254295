package engine

// patrolCycle is the clockwise order the hazard tries directions in
var patrolCycle = [4]Direction{Right, Down, Left, Up}

func cycleIndex(d Direction) int {
	for i, dir := range patrolCycle {
		if dir == d {
			return i
		}
	}
	return 0
}

// AdvancePatrol moves the hazard one cell. Starting from its current facing it
// tries each direction in clockwise order and takes the first in-bounds,
// non-wall cell. A boxed-in hazard stays put.
func AdvancePatrol(st *RunState, g *Grid) bool {
	if st.HazardPos == nil {
		return false
	}

	start := cycleIndex(st.HazardFacing)
	for i := range patrolCycle {
		dir := patrolCycle[(start+i)%len(patrolCycle)]
		next := st.HazardPos.Step(dir)
		if !g.Walkable(next) {
			continue
		}
		st.HazardPos = &next
		if dir != st.HazardFacing {
			st.HazardFacing = dir
		}
		return true
	}
	return false
}

// CheckHazardCollision applies a hazard hit when the hazard shares the
// player's cell: one life lost, player back to the level start, hazard back
// to its spawn facing right. Returns true when a hit was applied.
func CheckHazardCollision(st *RunState, lvl *Level) bool {
	if st.Mode != Maze || st.Terminal() || st.HazardPos == nil {
		return false
	}
	if *st.HazardPos != st.PlayerPos {
		return false
	}

	loseLife(st)
	st.PlayerPos = lvl.Start()
	st.HazardPos = cloneCoord(lvl.HazardSpawn)
	st.HazardFacing = Right
	st.Flash = FlashHazard
	return true
}
