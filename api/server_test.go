package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/castle-maze/game/config"
	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/service"
	"github.com/wricardo/castle-maze/game/session"
	"github.com/wricardo/castle-maze/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc     func(ctx context.Context, sessionID, direction string, fast bool) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, moves []string, fast bool) (*service.BulkMoveResult, error)
	NudgeFunc    func(ctx context.Context, sessionID string, dx, dy int) (*service.MoveResult, error)
	RestartFunc  func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	TickFunc     func(ctx context.Context, sessionID string) (*service.TickResult, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	DescribeCellFunc   func(ctx context.Context, sessionID string, cell engine.Coordinate) (*engine.CellInfo, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.CampaignConfig, error)
}

var _ service.GameService = (*MockGameService)(nil)

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "test-config", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, fast bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, fast)
	}
	return &service.MoveResult{Success: true, State: &engine.Snapshot{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, fast bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, fast)
	}
	return &service.BulkMoveResult{Success: true, State: &engine.Snapshot{}}, nil
}

func (m *MockGameService) Nudge(ctx context.Context, sessionID string, dx, dy int) (*service.MoveResult, error) {
	if m.NudgeFunc != nil {
		return m.NudgeFunc(ctx, sessionID, dx, dy)
	}
	return &service.MoveResult{Success: true, State: &engine.Snapshot{}}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return &engine.Snapshot{}, nil
}

func (m *MockGameService) Tick(ctx context.Context, sessionID string) (*service.TickResult, error) {
	if m.TickFunc != nil {
		return m.TickFunc(ctx, sessionID)
	}
	return &service.TickResult{State: &engine.Snapshot{}}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.Snapshot{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) DescribeCell(ctx context.Context, sessionID string, cell engine.Coordinate) (*engine.CellInfo, error) {
	if m.DescribeCellFunc != nil {
		return m.DescribeCellFunc(ctx, sessionID, cell)
	}
	return &engine.CellInfo{Position: cell}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.CampaignConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.CampaignConfig{Name: configName, Description: "Test config"}, nil
}

func (m *MockGameService) Close() {}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "body: %s", w.Body.String())
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{session.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("session not found: %w", session.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrSessionClosed, http.StatusNotFound},
		{fmt.Errorf("load: %w", config.ErrConfigNotFound), http.StatusNotFound},
		{engine.ErrInvalidDirection, http.StatusBadRequest},
		{fmt.Errorf("%w: (9,9)", engine.ErrOutOfBounds), http.StatusBadRequest},
		{fmt.Errorf("%w: %w", config.ErrInvalidConfig, engine.ErrInvalidConfig), http.StatusBadRequest},
		{fmt.Errorf("restart session x: %w", engine.ErrRestartUnavailable), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
		})
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "default config",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "sess-123", ConfigName: "castle"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				assert.Equal(t, "sess-123", resp.ID)
			},
		},
		{
			name:        "config_id is preferred",
			requestBody: map[string]string{"config_id": "gauntlet", "config_name": "castle"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "sess-456", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				assert.Equal(t, "gauntlet", resp.ConfigName)
			},
		},
		{
			name:        "unknown config",
			requestBody: map[string]string{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to load config %q: %w", configName, config.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				assert.Equal(t, "service error", resp["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			var body interface{}
			if tt.requestBody != nil {
				body = tt.requestBody
			}
			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions", body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Minute)},
				{ID: "b", CreatedAt: base.Add(time.Minute), LastAccessedAt: base.Add(time.Minute)},
				{ID: "c", CreatedAt: base.Add(2 * time.Minute), LastAccessedAt: base.Add(2 * time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name  string
		query string
		ids   []string
		total int
	}{
		{"default sorts by access, newest first", "", []string{"a", "c", "b"}, 3},
		{"created ascending", "?sort=created&order=asc", []string{"a", "b", "c"}, 3},
		{"limit", "?sort=created&limit=2", []string{"c", "b"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			var ids []string
			for _, s := range resp.Sessions {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, len(tt.ids), resp.Count)
			assert.Equal(t, tt.total, resp.Total)
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	notFound := func(ctx context.Context, id string) (*service.SessionInfo, error) {
		return nil, fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
	}
	server := setupTestServer(&MockGameService{
		GetSessionFunc: notFound,
		DeleteSessionFunc: func(ctx context.Context, id string) error {
			if id == "gone" {
				return session.ErrSessionNotFound
			}
			return nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(server, makeRequest("DELETE", "/api/sessions/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Session abc deleted")

	w = serve(server, makeRequest("DELETE", "/api/sessions/gone", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Game Operation Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		rawBody        string
		expectedStatus int
	}{
		{"valid move", map[string]interface{}{"direction": "up", "fast": true}, "", http.StatusOK},
		{"invalid direction", map[string]interface{}{"direction": "sideways"}, "", http.StatusBadRequest},
		{"malformed body", nil, "{not json", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFast bool
			server := setupTestServer(&MockGameService{
				MoveFunc: func(ctx context.Context, id, direction string, fast bool) (*service.MoveResult, error) {
					if _, err := engine.ParseDirection(direction); err != nil {
						return nil, err
					}
					gotFast = fast
					return &service.MoveResult{Success: true, State: &engine.Snapshot{Mode: engine.Maze}}, nil
				},
			})

			req := makeRequest("POST", "/api/sessions/s1/move", tt.body)
			if tt.rawBody != "" {
				req = httptest.NewRequest("POST", "/api/sessions/s1/move", strings.NewReader(tt.rawBody))
			}
			w := serve(server, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.True(t, gotFast)
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				assert.Equal(t, engine.Maze, resp.State.Mode)
			}
		})
	}
}

func TestBulkMove(t *testing.T) {
	var gotMoves []string
	server := setupTestServer(&MockGameService{
		BulkMoveFunc: func(ctx context.Context, id string, moves []string, fast bool) (*service.BulkMoveResult, error) {
			gotMoves = moves
			return &service.BulkMoveResult{
				Success:        false,
				MovesExecuted:  1,
				RequestedMoves: len(moves),
				StopReasonCode: "blocked_wall",
				State:          &engine.Snapshot{},
			}, nil
		},
	})

	w := serve(server, makeRequest("POST", "/api/sessions/s1/bulk-move", map[string]interface{}{"moves": []string{"up", "left"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"up", "left"}, gotMoves)

	var resp service.BulkMoveResult
	parseResponse(t, w, &resp)
	assert.Equal(t, "blocked_wall", resp.StopReasonCode)

	w = serve(server, makeRequest("POST", "/api/sessions/s1/bulk-move", map[string]interface{}{"moves": []string{}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNudge(t *testing.T) {
	var dx, dy int
	server := setupTestServer(&MockGameService{
		NudgeFunc: func(ctx context.Context, id string, x, y int) (*service.MoveResult, error) {
			dx, dy = x, y
			return &service.MoveResult{Success: true, State: &engine.Snapshot{Mode: engine.Maze}}, nil
		},
	})

	w := serve(server, makeRequest("POST", "/api/sessions/s1/nudge", map[string]int{"dx": 2, "dy": -12}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, dx)
	assert.Equal(t, -12, dy)
}

func TestRestart(t *testing.T) {
	running := true
	server := setupTestServer(&MockGameService{
		RestartFunc: func(ctx context.Context, id string) (*engine.Snapshot, error) {
			if running {
				return nil, fmt.Errorf("restart session %s: %w", id, engine.ErrRestartUnavailable)
			}
			return &engine.Snapshot{Mode: engine.Overworld, Lives: 5}, nil
		},
	})

	w := serve(server, makeRequest("POST", "/api/sessions/s1/restart", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	running = false
	w = serve(server, makeRequest("POST", "/api/sessions/s1/restart", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}
	parseResponse(t, w, &resp)
	assert.Equal(t, 5, resp.State.Lives)
}

func TestTick(t *testing.T) {
	server := setupTestServer(&MockGameService{
		TickFunc: func(ctx context.Context, id string) (*service.TickResult, error) {
			return &service.TickResult{Moved: true, State: &engine.Snapshot{HazardPos: &engine.Coordinate{Row: 1, Col: 5}}}, nil
		},
	})

	w := serve(server, makeRequest("POST", "/api/sessions/s1/tick", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.TickResult
	parseResponse(t, w, &resp)
	assert.True(t, resp.Moved)
	assert.Equal(t, engine.Coordinate{Row: 1, Col: 5}, *resp.State.HazardPos)
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=x&order=sideways&current=true", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc", Current: true}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			server := setupTestServer(&MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, id string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}}, nil
				},
			})

			w := serve(server, makeRequest("GET", "/api/sessions/s1/history"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetGameState(t *testing.T) {
	server := setupTestServer(&MockGameService{
		GetGameStateFunc: func(ctx context.Context, id string) (*engine.Snapshot, error) {
			if id != "s1" {
				return nil, fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
			}
			return &engine.Snapshot{Level: 3, Coins: 2}, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/s1/state", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var snap engine.Snapshot
	parseResponse(t, w, &snap)
	assert.Equal(t, 3, snap.Level)

	w = serve(server, makeRequest("GET", "/api/sessions/zz/state", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDescribeCell(t *testing.T) {
	server := setupTestServer(&MockGameService{
		DescribeCellFunc: func(ctx context.Context, id string, cell engine.Coordinate) (*engine.CellInfo, error) {
			if cell.Row > 10 {
				return nil, fmt.Errorf("%w: %s", engine.ErrOutOfBounds, cell)
			}
			return &engine.CellInfo{Position: cell, Kind: engine.Exit}, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/s1/cells/1/5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var info engine.CellInfo
	parseResponse(t, w, &info)
	assert.Equal(t, engine.Coordinate{Row: 1, Col: 5}, info.Position)
	assert.Equal(t, engine.Exit, info.Kind)

	w = serve(server, makeRequest("GET", "/api/sessions/s1/cells/40/1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(server, makeRequest("GET", "/api/sessions/s1/cells/a/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "non-numeric coordinates do not match the route")
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	loaded := &engine.CampaignConfig{
		Name:     "Castle",
		MaxLives: 5,
		Levels: []engine.LevelConfig{
			{Name: "Hall", Layout: []string{"#####", "#..E#", "#####"}, Traps: []engine.Coordinate{{Row: 1, Col: 2}}},
		},
	}
	server := setupTestServer(&MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "castle", Name: "Castle", Levels: 6}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, name string) (*engine.CampaignConfig, error) {
			if name != "castle" {
				return nil, config.ErrConfigNotFound
			}
			return loaded, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/configs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []*service.ConfigInfo
	parseResponse(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 6, list[0].Levels)

	w = serve(server, makeRequest("GET", "/api/configs/castle", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "traps", "trap positions stay hidden")
	var cfg engine.CampaignConfig
	parseResponse(t, w, &cfg)
	assert.Equal(t, 5, cfg.MaxLives)
	require.Len(t, cfg.Levels, 1)
	assert.Equal(t, "Hall", cfg.Levels[0].Name)
	assert.Empty(t, cfg.Levels[0].Traps)
	assert.Len(t, loaded.Levels[0].Traps, 1, "the loaded config is not modified")

	w = serve(server, makeRequest("GET", "/api/configs/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnifiedSessions(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	all := []*service.SessionInfo{
		{ID: "b", ConfigName: "castle", CreatedAt: base.Add(time.Minute), State: &engine.Snapshot{Levels: 6}},
		{ID: "a", ConfigName: "castle", CreatedAt: base, State: &engine.Snapshot{Levels: 6}},
		{ID: "g", ConfigName: "gauntlet", CreatedAt: base, State: &engine.Snapshot{Levels: 3}},
	}
	server := setupTestServer(&MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return all, nil
		},
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			for _, s := range all {
				if s.ID == id {
					return s, nil
				}
			}
			return nil, session.ErrSessionNotFound
		},
	})

	type unified struct {
		ConfigName string `json:"config_name"`
		Levels     int    `json:"levels"`
		Sessions   []struct {
			SessionID string `json:"session_id"`
		} `json:"sessions"`
	}

	w := serve(server, makeRequest("GET", "/api/sessions/unified?configName=castle", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp unified
	parseResponse(t, w, &resp)
	assert.Equal(t, "castle", resp.ConfigName)
	assert.Equal(t, 6, resp.Levels)
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, "a", resp.Sessions[0].SessionID)

	w = serve(server, makeRequest("GET", "/api/sessions/unified?sessionIds=g,missing", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp = unified{}
	parseResponse(t, w, &resp)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, 3, resp.Levels)
}

func TestHealth(t *testing.T) {
	w := serve(setupTestServer(&MockGameService{}), makeRequest("GET", "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

type staticConfigs struct {
	config *engine.CampaignConfig
}

func (s staticConfigs) LoadConfig(name string) (*engine.CampaignConfig, error) {
	if name != "" && name != "hall" {
		return nil, config.ErrConfigNotFound
	}
	return s.config, nil
}

func (s staticConfigs) ListConfigs() ([]*service.ConfigInfo, error) {
	return []*service.ConfigInfo{{ConfigID: "hall", Name: s.config.Name}}, nil
}

func (s staticConfigs) GetDefault() *engine.CampaignConfig { return s.config }

// TestEndToEnd drives a real service through HTTP and watches it over the websocket
func TestEndToEnd(t *testing.T) {
	cfg := &engine.CampaignConfig{
		Name:             "hall",
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

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub()
	games := service.NewGameService(session.NewManager(), staticConfigs{config: cfg}, service.WithNotifier(hub))
	hub.SetGameService(games)
	runDone := make(chan error, 1)
	go func() { runDone <- hub.Run(ctx) }()

	httpServer := httptest.NewServer(NewServer(games, hub))
	t.Cleanup(func() {
		httpServer.Close()
		games.Close()
		cancel()
		<-runDone
	})

	post := func(path string, body interface{}) *http.Response {
		data, _ := json.Marshal(body)
		resp, err := http.Post(httpServer.URL+path, "application/json", bytes.NewReader(data))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := post("/api/sessions", map[string]string{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var info service.SessionInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))

	dialSession := func(id string) *gorillaws.Conn {
		wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?session=" + id
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	readFrom := func(conn *gorillaws.Conn) *engine.Snapshot {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg websocket.Message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg.Snapshot
	}

	conn := dialSession(info.ID)
	readSnapshot := func() *engine.Snapshot { return readFrom(conn) }
	assert.Equal(t, engine.Overworld, readSnapshot().Mode)

	// Session IDs are case-insensitive, and so are subscriptions
	upper := dialSession(strings.ToUpper(info.ID))
	assert.Equal(t, engine.Overworld, readFrom(upper).Mode)

	resp = post("/api/sessions/"+info.ID+"/nudge", map[string]int{"dx": 0, "dy": -12})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, engine.Maze, readSnapshot().Mode)
	assert.Equal(t, engine.Maze, readFrom(upper).Mode)

	resp = post("/api/sessions/"+info.ID+"/bulk-move", map[string]interface{}{"moves": []string{"right", "up", "right"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bulk service.BulkMoveResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bulk))
	assert.True(t, bulk.Won)
	assert.Equal(t, "won", bulk.StopReasonCode)

	resp = post("/api/sessions/"+info.ID+"/move", map[string]string{"direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post("/api/sessions/"+info.ID+"/restart", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	noSession, err := http.Get(httpServer.URL + "/ws?session=nope")
	require.NoError(t, err)
	noSession.Body.Close()
	assert.Equal(t, http.StatusNotFound, noSession.StatusCode)
}
