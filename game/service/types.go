package service

import (
	"time"

	"github.com/wricardo/castle-maze/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	ConfigName     string           `json:"config_name"`
	CampaignName   string           `json:"campaign_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	State          *engine.Snapshot `json:"state"`
}

// MoveResult contains the result of a single command
type MoveResult struct {
	Success      bool             `json:"success"`
	State        *engine.Snapshot `json:"state"`
	Message      string           `json:"message"`
	Events       []GameEvent      `json:"events,omitempty"`
	Step         *StepInfo        `json:"step,omitempty"`
	LocalView3x3 []string         `json:"local_view_3x3,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int              `json:"moves_executed"`
	RequestedMoves int              `json:"requested_moves"`
	Success        bool             `json:"success"`
	State          *engine.Snapshot `json:"state"`
	Events         []GameEvent      `json:"events"`
	StoppedReason  string           `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string           `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_boundary|exit_locked|invalid_direction|trap|hazard|mode_changed|level_changed|game_over|won
	StoppedOnMove  int              `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`

	// Start/end snapshot
	StartLevel int               `json:"start_level"`
	EndLevel   int               `json:"end_level"`
	StartPos   engine.Coordinate `json:"start_pos"`
	EndPos     engine.Coordinate `json:"end_pos"`
	StartCoins int               `json:"start_coins"`
	EndCoins   int               `json:"end_coins"`
	StartLives int               `json:"start_lives"`
	EndLives   int               `json:"end_lives"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver     bool     `json:"game_over"`
	Won          bool     `json:"won"`
	Message      string   `json:"message,omitempty"`
	LocalView3x3 []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each executed command
type StepInfo struct {
	Idx        int               `json:"idx"`
	Dir        string            `json:"dir"`
	Fast       bool              `json:"fast,omitempty"`
	Mode       engine.Mode       `json:"mode"`
	From       engine.Coordinate `json:"from"`
	To         engine.Coordinate `json:"to"`
	Stop       string            `json:"stop,omitempty"`
	CoinsAfter int               `json:"coins_after"`
	LivesAfter int               `json:"lives_after"`
	Success    bool              `json:"success"`
	Collected  bool              `json:"collected,omitempty"`
	Trap       bool              `json:"trap,omitempty"`
	Hazard     bool              `json:"hazard,omitempty"`
	Transition string            `json:"transition,omitempty"`
}

// TickResult reports a manual patrol step
type TickResult struct {
	Moved bool             `json:"moved"`
	Hit   bool             `json:"hit"`
	State *engine.Snapshot `json:"state"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string            `json:"type"` // "move", "blocked", "coin", "trap", "hazard", "secret_passage", "exit", "enter_maze", "level_complete", "game_over", "victory", "restart"
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Level     int               `json:"level,omitempty"`
	Position  engine.Coordinate `json:"position"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Order   string `json:"order"` // "asc" or "desc"
	Current bool   `json:"current"`
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a campaign configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Levels      int    `json:"levels"`
	MaxLives    int    `json:"max_lives"`
}
