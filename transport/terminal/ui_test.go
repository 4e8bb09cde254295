package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/service"
	"github.com/wricardo/castle-maze/game/session"
)

type hallConfigs struct {
	config *engine.CampaignConfig
}

func (h hallConfigs) LoadConfig(name string) (*engine.CampaignConfig, error) {
	return h.config, nil
}

func (h hallConfigs) ListConfigs() ([]*service.ConfigInfo, error) {
	return []*service.ConfigInfo{{ConfigID: "hall", Name: h.config.Name}}, nil
}

func (h hallConfigs) GetDefault() *engine.CampaignConfig { return h.config }

func newTestUI(t *testing.T) (*UI, service.GameService, *bytes.Buffer) {
	t.Helper()
	cfg := &engine.CampaignConfig{
		Name:             "Hall",
		PatrolIntervalMS: 3600000,
		Levels: []engine.LevelConfig{
			{
				Name:          "Hall",
				Layout:        []string{"#####", "#..E#", "#...#", "#####"},
				RequiredCoins: 1,
				Collectibles:  []engine.Coordinate{{Row: 2, Col: 2}},
			},
		},
	}
	require.NoError(t, engine.ValidateCampaignConfig(cfg))

	var out bytes.Buffer
	ui := NewUI(NewRenderer(&out))
	games := service.NewGameService(session.NewManager(), hallConfigs{config: cfg}, service.WithNotifier(ui))
	t.Cleanup(games.Close)
	return ui, games, &out
}

func TestUIPlayToVictory(t *testing.T) {
	ui, games, out := newTestUI(t)

	// five steps north reach the door, then coin, up, exit
	final, err := ui.Play(context.Background(), games, "", strings.NewReader("wwwwwdwdq"))
	require.NoError(t, err)

	assert.True(t, final.Won)
	assert.Equal(t, 1, final.Coins)
	assert.Contains(t, out.String(), "CASTLE MAZE")

	sessions, err := games.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions, "the session is removed when play ends")
}

func TestUIRestartAfterWin(t *testing.T) {
	ui, games, _ := newTestUI(t)

	final, err := ui.Play(context.Background(), games, "", strings.NewReader("wwwwwdwdr"))
	require.NoError(t, err)

	assert.False(t, final.Won)
	assert.Equal(t, engine.Overworld, final.Mode)
	assert.Equal(t, engine.Point{X: 50, Y: 80}, final.Overworld)
}

func TestUIRestartMidRunIgnored(t *testing.T) {
	ui, games, _ := newTestUI(t)

	final, err := ui.Play(context.Background(), games, "", strings.NewReader("\x1b[1;2Arq"))
	require.NoError(t, err)

	assert.Equal(t, engine.Point{X: 50, Y: 76}, final.Overworld, "fast step then a refused restart")
}

func TestUIPlayEOF(t *testing.T) {
	ui, games, out := newTestUI(t)

	final, err := ui.Play(context.Background(), games, "", strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, engine.Overworld, final.Mode)
	assert.Equal(t, 0, final.TotalMoves)
	assert.Contains(t, out.String(), "Outside the castle")
}

func TestUIPlayCancelled(t *testing.T) {
	ui, games, _ := newTestUI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	final, err := ui.Play(ctx, games, "", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, engine.Overworld, final.Mode)
}

func TestUIBroadcastKeepsNewest(t *testing.T) {
	ui := NewUI(NewRenderer(&bytes.Buffer{}))

	ui.BroadcastToSession("a", &engine.Snapshot{TotalMoves: 1})
	ui.BroadcastToSession("a", &engine.Snapshot{TotalMoves: 2})

	upd := <-ui.updates
	assert.Equal(t, 2, upd.snapshot.TotalMoves)
	assert.Empty(t, ui.updates)
}
