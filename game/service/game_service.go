package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/schedule"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, fast bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, fast bool) (*BulkMoveResult, error)
	Nudge(ctx context.Context, sessionID string, dx, dy int) (*MoveResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	Tick(ctx context.Context, sessionID string) (*TickResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	DescribeCell(ctx context.Context, sessionID string, cell engine.Coordinate) (*engine.CellInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.CampaignConfig, error)

	// Close stops every session timer
	Close()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configName string, config *engine.CampaignConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles campaign configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.CampaignConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.CampaignConfig
}

// Notifier receives a snapshot after every state change of a session.
// Implementations must not block.
type Notifier interface {
	BroadcastToSession(sessionID string, snapshot *engine.Snapshot)
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigName     string
	Engine         *engine.GameEngine
	Config         *engine.CampaignConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// mu serialises commands and timer callbacks
	mu          sync.Mutex
	patrol      *schedule.Periodic
	flash       *schedule.OneShot
	flashSerial uint64
	closed      bool
}

// Close stops the session timers. Callbacks that are already running
// become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.patrol != nil {
		s.patrol.Stop()
	}
	if s.flash != nil {
		s.flash.Cancel()
	}
}

// Touch records an access to the session
func (s *Session) Touch(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastAccessedAt = at
}

// LastAccessed returns the time of the last access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}

// PatrolRunning reports whether the patrol timer is armed
func (s *Session) PatrolRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patrol != nil && s.patrol.Running()
}
