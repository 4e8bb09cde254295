package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/service"
	"github.com/wricardo/castle-maze/game/session"
)

type stubConfigs struct {
	config *engine.CampaignConfig
}

func (s *stubConfigs) LoadConfig(name string) (*engine.CampaignConfig, error) {
	return s.config, nil
}

func (s *stubConfigs) ListConfigs() ([]*service.ConfigInfo, error) {
	return []*service.ConfigInfo{{ConfigID: "hub", Name: s.config.Name, Levels: len(s.config.Levels)}}, nil
}

func (s *stubConfigs) GetDefault() *engine.CampaignConfig {
	return s.config
}

func newStubConfigs(t *testing.T) *stubConfigs {
	t.Helper()
	cfg := &engine.CampaignConfig{
		Name:             "hub",
		PatrolIntervalMS: 3600000,
		Levels: []engine.LevelConfig{
			{Name: "Hall", Layout: []string{"#####", "#..E#", "#...#", "#####"}},
		},
	}
	require.NoError(t, engine.ValidateCampaignConfig(cfg))
	return &stubConfigs{config: cfg}
}

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	require.NotNil(t, hub)
	assert.NotNil(t, hub.sessions)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.Nil(t, hub.games)
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	require.Contains(t, hub.sessions, "test-session")
	assert.True(t, hub.sessions["test-session"][client])
	assert.Len(t, hub.sessions["test-session"], 1)
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	assert.NotContains(t, hub.sessions, "test-session", "empty sessions are cleaned up")
	_, open := <-client.send
	assert.False(t, open, "send channel is closed")

	// a second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	hub.registerClient(client1)
	hub.registerClient(client2)
	assert.Len(t, hub.sessions[sessionID], 2)

	hub.unregisterClient(client1)
	assert.Len(t, hub.sessions[sessionID], 1)
	assert.True(t, hub.sessions[sessionID][client2])
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"
	client := newTestClient(hub, sessionID)
	other := newTestClient(hub, "other-session")
	hub.registerClient(client)
	hub.registerClient(other)

	snap := &engine.Snapshot{
		Mode:      engine.Maze,
		Level:     2,
		PlayerPos: engine.Coordinate{Row: 5, Col: 3},
		Lives:     4,
	}
	hub.BroadcastToSession(sessionID, snap)

	message := <-hub.broadcast
	hub.broadcastMessage(message)

	select {
	case data := <-client.send:
		var got Message
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, sessionID, got.SessionID)
		assert.Equal(t, "state_update", got.Event)
		require.NotNil(t, got.Snapshot)
		assert.Equal(t, engine.Coordinate{Row: 5, Col: 3}, got.Snapshot.PlayerPos)
		assert.Equal(t, engine.Maze, got.Snapshot.Mode)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message received within timeout")
	}

	assert.Empty(t, other.send, "other sessions are not notified")
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.BroadcastToSession("flood", &engine.Snapshot{})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastToSession blocked without a running hub")
	}
	assert.Len(t, hub.broadcast, broadcastBuffer)
}

func TestHubTargetedMessage(t *testing.T) {
	hub := NewHub()
	sender := newTestClient(hub, "s")
	watcher := newTestClient(hub, "s")
	hub.registerClient(sender)
	hub.registerClient(watcher)

	hub.reply(sender, "error", "bad move")
	hub.broadcastMessage(<-hub.broadcast)

	require.Len(t, sender.send, 1)
	assert.Empty(t, watcher.send)

	var got Message
	require.NoError(t, json.Unmarshal(<-sender.send, &got))
	assert.Equal(t, "error", got.Event)
	assert.Equal(t, "bad move", got.Data)
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		assert.Equal(t, "event-test", message.SessionID)
		assert.Equal(t, "custom-event", message.Event)
		assert.Equal(t, "test-data", message.Data)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no broadcast message received within timeout")
	}
}

// startHub runs a hub wired to a fresh game service behind an httptest server
func startHub(t *testing.T) (*Hub, service.GameService, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub()
	games := service.NewGameService(session.NewManager(), newStubConfigs(t), service.WithNotifier(hub))
	hub.SetGameService(games)

	runDone := make(chan error, 1)
	go func() { runDone <- hub.Run(ctx) }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		server.Close()
		games.Close()
		cancel()
		<-runDone
	})

	return hub, games, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url, sessionID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?session="+sessionID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent reads frames until one with the given event arrives
func readEvent(t *testing.T, conn *websocket.Conn, event string) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var message Message
		require.NoError(t, json.Unmarshal(data, &message))
		if message.Event == event {
			return message
		}
	}
}

func TestWebSocketInitialState(t *testing.T) {
	_, games, url := startHub(t)
	info, err := games.CreateSession(context.Background(), "")
	require.NoError(t, err)

	conn := dial(t, url, info.ID)

	message := readEvent(t, conn, "state_update")
	assert.Equal(t, info.ID, message.SessionID)
	require.NotNil(t, message.Snapshot)
	assert.Equal(t, engine.Overworld, message.Snapshot.Mode)
}

func TestWebSocketCommands(t *testing.T) {
	_, games, url := startHub(t)
	info, err := games.CreateSession(context.Background(), "")
	require.NoError(t, err)

	conn := dial(t, url, info.ID)
	readEvent(t, conn, "state_update")

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "nudge", DX: 0, DY: -12}))
	message := readEvent(t, conn, "state_update")
	assert.Equal(t, engine.Maze, message.Snapshot.Mode)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "move", Direction: "right"}))
	message = readEvent(t, conn, "state_update")
	assert.Equal(t, engine.Coordinate{Row: 2, Col: 2}, message.Snapshot.PlayerPos)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "move", Direction: "sideways"}))
	message = readEvent(t, conn, "error")
	assert.Contains(t, message.Data, "direction")

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "restart"}))
	message = readEvent(t, conn, "error")
	assert.Contains(t, message.Data, "restart")

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "dance"}))
	message = readEvent(t, conn, "error")
	assert.Equal(t, "unknown action: dance", message.Data)
}

func TestWebSocketServiceBroadcast(t *testing.T) {
	_, games, url := startHub(t)
	ctx := context.Background()
	info, err := games.CreateSession(ctx, "")
	require.NoError(t, err)

	watcher := dial(t, url, info.ID)
	readEvent(t, watcher, "state_update")

	// a round trip guarantees the watcher is registered
	require.NoError(t, watcher.WriteJSON(ClientMessage{Action: "state"}))
	readEvent(t, watcher, "state_update")

	_, err = games.Move(ctx, info.ID, "left", false)
	require.NoError(t, err)

	message := readEvent(t, watcher, "state_update")
	assert.Equal(t, engine.Point{X: 48, Y: 80}, message.Snapshot.Overworld)
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	runDone := make(chan error, 1)
	go func() { runDone <- hub.Run(ctx) }()

	cancel()
	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// ServeWS after shutdown must not hang on register
	select {
	case <-hub.done:
	default:
		t.Fatal("done channel not closed")
	}
}
