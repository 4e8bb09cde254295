package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestEngine(t *testing.T, levels ...LevelConfig) *GameEngine {
	t.Helper()
	if len(levels) == 0 {
		levels = []LevelConfig{roomLevel(), corridor("Second")}
	}
	eng, err := NewEngine(&CampaignConfig{Name: "Engine Test", Description: "engine tests", Levels: levels})
	require.NoError(t, err)
	return eng
}

func TestNewEngine(t *testing.T) {
	eng := createTestEngine(t)

	snap := eng.GetSnapshot()
	assert.Equal(t, Overworld, snap.Mode)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, DefaultMaxLives, snap.Lives)
	assert.Equal(t, "Engine Test", snap.Campaign)
	assert.NotEmpty(t, snap.Message)
	assert.False(t, eng.IsGameOver())
	assert.False(t, eng.IsWon())
	assert.Nil(t, eng.GetLastMove())

	_, err := NewEngine(&CampaignConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEngineOverworldWalk(t *testing.T) {
	eng := createTestEngine(t)

	report := eng.Move(Left, false)
	assert.True(t, report.Applied)
	assert.Equal(t, Point{X: 48, Y: 80}, eng.GetState().Overworld)

	eng.Move(Right, true)
	assert.Equal(t, Point{X: 52, Y: 80}, eng.GetState().Overworld)

	// (52,80) -> (52,68) with three fast steps up
	eng.Move(Up, true)
	eng.Move(Up, true)
	report = eng.Move(Up, true)

	assert.Equal(t, TransitionEnterMaze, report.Transition)
	assert.Equal(t, Maze, eng.GetState().Mode)
	assert.True(t, eng.PatrolActive())
}

func TestEngineNudge(t *testing.T) {
	eng := createTestEngine(t)

	assert.Equal(t, TransitionNone, eng.Nudge(10, 0))
	assert.Equal(t, TransitionEnterMaze, eng.Nudge(-10, -12))

	history := eng.GetMoveHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "nudge(10,0)", history[0].Action)
	assert.True(t, history[1].Success)
	assert.Equal(t, Maze, history[1].Mode)

	// nudging inside the maze is recorded but does nothing
	assert.Equal(t, TransitionNone, eng.Nudge(1, 1))
	assert.False(t, eng.GetLastMove().Success)
}

func TestEngineFlashSerial(t *testing.T) {
	eng := createTestEngine(t)
	eng.Nudge(0, -12)
	st := eng.GetState()
	st.PlayerPos = Coordinate{3, 3}
	st.Collectibles.Remove(Coordinate{3, 3})

	serial := eng.FlashSerial()
	report := eng.Move(Up, false)

	require.True(t, report.TrapTriggered)
	assert.Equal(t, serial+1, eng.FlashSerial())
	assert.Equal(t, FlashTrap, eng.GetSnapshot().Flash)
	assert.Contains(t, eng.GetSnapshot().Message, "trap")

	assert.True(t, eng.ClearFlash())
	assert.False(t, eng.ClearFlash(), "already cleared")
	assert.Equal(t, FlashNone, eng.GetSnapshot().Flash)
}

func TestEngineTick(t *testing.T) {
	eng := createTestEngine(t)

	moved, hit := eng.Tick()
	assert.False(t, moved, "no patrol in the overworld")
	assert.False(t, hit)

	eng.Nudge(0, -12)
	before := *eng.GetState().HazardPos
	moved, _ = eng.Tick()
	assert.True(t, moved)
	assert.NotEqual(t, before, *eng.GetState().HazardPos)

	st := eng.GetState()
	st.PlayerPos = st.HazardPos.Step(Down)
	st.HazardFacing = Down
	serial := eng.FlashSerial()
	_, hit = eng.Tick()
	assert.True(t, hit)
	assert.Equal(t, serial+1, eng.FlashSerial())
	assert.Equal(t, FlashHazard, st.Flash)
}

func TestEngineRestartKeepsHistory(t *testing.T) {
	eng := createTestEngine(t)
	assert.ErrorIs(t, eng.Restart(), ErrRestartUnavailable)

	eng.Nudge(0, -12)
	eng.Move(Right, false)
	eng.GetState().GameOver = true
	eng.Move(Right, false)
	require.Len(t, eng.GetMoveHistory(), 3)
	assert.False(t, eng.GetLastMove().Success, "moves after game over are rejected")

	require.NoError(t, eng.Restart())

	assert.Len(t, eng.GetMoveHistory(), 4)
	assert.Empty(t, eng.GetCurrentMoves())
	assert.Equal(t, 4, eng.TotalMoves())
	assert.Equal(t, Overworld, eng.GetState().Mode)
	assert.False(t, eng.IsGameOver())
}

func TestDescribeCell(t *testing.T) {
	eng := createTestEngine(t)
	eng.Nudge(0, -12)

	info, err := eng.DescribeCell(Coordinate{3, 1})
	require.NoError(t, err)
	assert.True(t, info.Player)
	assert.Equal(t, Open, info.Kind)

	info, err = eng.DescribeCell(Coordinate{1, 5})
	require.NoError(t, err)
	assert.Equal(t, Exit, info.Kind)
	assert.False(t, info.Passable, "gate is closed")

	info, err = eng.DescribeCell(Coordinate{2, 3})
	require.NoError(t, err)
	assert.False(t, info.Trap, "hidden traps are not described")

	info, err = eng.DescribeCell(Coordinate{1, 4})
	require.NoError(t, err)
	assert.True(t, info.Hazard)

	_, err = eng.DescribeCell(Coordinate{-1, 0})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestSnapshotHidesTraps(t *testing.T) {
	eng := createTestEngine(t)
	eng.Nudge(0, -12)
	st := eng.GetState()
	require.Equal(t, 1, st.Traps.Size())

	snap := eng.GetSnapshot()
	assert.Empty(t, snap.RevealedTraps)
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"traps"`)

	st.PlayerPos = Coordinate{3, 3}
	eng.Move(Up, false)

	snap = eng.GetSnapshot()
	assert.Equal(t, []Coordinate{{2, 3}}, snap.RevealedTraps)
	assert.True(t, snap.HasRevealedTrap(Coordinate{2, 3}))
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	eng := createTestEngine(t)
	eng.Nudge(0, -12)

	data, err := json.Marshal(eng.GetSnapshot())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mode":"maze"`)
	assert.Contains(t, string(data), `"facing":"right"`)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, eng.GetSnapshot(), &decoded)
}

func TestSnapshotRender(t *testing.T) {
	eng := createTestEngine(t)
	eng.Nudge(0, -12)

	rows := eng.GetSnapshot().Render(0)
	assert.Equal(t, []string{
		"#######",
		"#.o.HE#",
		"#.#...#",
		"#@.o..#",
		"#######",
	}, rows)

	snap := eng.GetSnapshot()
	snap.Dark = true
	dark := snap.Render(1)
	assert.Equal(t, "#@.    ", dark[3])
	assert.Equal(t, "       ", dark[0])
}
