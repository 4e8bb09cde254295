package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// corridor is a three-row level: start at (1,1), exit at (1,3)
func corridor(name string) LevelConfig {
	return LevelConfig{
		Name:   name,
		Layout: []string{"#####", "#..E#", "#####"},
	}
}

// secretLevel has an exit on the top row and a secret passage right of the start
func secretLevel() LevelConfig {
	return LevelConfig{
		Name:          "Secret",
		Layout:        []string{"#####", "#..E#", "#.S.#", "#####"},
		RequiredCoins: 1,
		Collectibles:  []Coordinate{{1, 1}},
	}
}

// roomLevel is a 5x7 room with two coins, one trap and a guard
func roomLevel() LevelConfig {
	return LevelConfig{
		Name: "Room",
		Layout: []string{
			"#######",
			"#....E#",
			"#.#...#",
			"#.....#",
			"#######",
		},
		RequiredCoins: 2,
		Collectibles:  []Coordinate{{3, 3}, {1, 2}},
		Traps:         []Coordinate{{2, 3}},
		HazardSpawn:   &Coordinate{Row: 1, Col: 4},
	}
}

func sixLevels() []LevelConfig {
	return []LevelConfig{
		corridor("One"),
		corridor("Two"),
		corridor("Three"),
		secretLevel(),
		corridor("Five"),
		corridor("Six"),
	}
}

func newTestCampaign(t *testing.T, levels ...LevelConfig) *Campaign {
	t.Helper()
	c, err := NewCampaign(&CampaignConfig{Name: "test", Description: "test campaign", Levels: levels})
	require.NoError(t, err)
	return c
}

// inMaze returns a run that has already walked through the overworld door
func inMaze(t *testing.T, c *Campaign) *RunState {
	t.Helper()
	st := c.NewRunState()
	c.EnterMaze(st)
	require.Equal(t, Maze, st.Mode)
	return st
}
