package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/schedule"
)

// ErrSessionClosed is returned when a session was deleted while a command
// was waiting for it
var ErrSessionClosed = errors.New("session closed")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	log      zerolog.Logger
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *gameServiceImpl) {
		s.log = log
	}
}

// WithNotifier sets the receiver of snapshot updates
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) {
		s.notifier = n
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a campaign display name
func (s *gameServiceImpl) getConfigID(campaignName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == campaignName {
				return cfg.ConfigID
			}
		}
	}
	if campaignName == "" {
		return "default"
	}
	return campaignName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.CampaignConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			var configIDs []string
			if available, listErr := s.configs.ListConfigs(); listErr == nil {
				for _, cfg := range available {
					configIDs = append(configIDs, cfg.ConfigID)
				}
			}
			return nil, fmt.Errorf("failed to load config %q (available: %s): %w", configName, strings.Join(configIDs, ", "), err)
		}
	} else {
		config = s.configs.GetDefault()
		configName = s.getConfigID(config.Name)
	}

	sess, err := s.sessions.Create("", configName, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Info().Str("session", sess.ID).Str("config", configName).Msg("session created")
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and stops its timers
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		CampaignName:   sess.Engine.GetCampaign().Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Engine.GetSnapshot(),
	}
}

// lockSession looks up a session, touches it and takes its lock. The
// caller must unlock.
func (s *gameServiceImpl) lockSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionClosed)
	}
	return sess, nil
}

// Move executes a single directional command for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, fast bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	report := sess.Engine.Move(dir, fast)
	step := s.stepInfo(sess, 1, report, fast)
	events := s.extractMoveEvents(sess, report)
	s.afterTransition(sess)
	s.logStep(sess, step)

	snap := sess.Engine.GetSnapshot()
	return &MoveResult{
		Success:      step.Success,
		State:        snap,
		Message:      snap.Message,
		Events:       events,
		Step:         &step,
		LocalView3x3: buildLocal3x3(snap),
	}, nil
}

// BulkMove executes multiple moves in sequence. It stops early when a move
// is blocked, a trap or the guard is hit, the mode or level changes, or the
// run ends.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, fast bool) (*BulkMoveResult, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	st := sess.Engine.GetState()
	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Success:        true,
		Events:         make([]GameEvent, 0),
		StartLevel:     st.Level,
		StartPos:       st.PlayerPos,
		StartCoins:     st.Coins,
		StartLives:     st.Lives,
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if st.Terminal() {
			result.StopReasonCode = terminalCode(st)
			result.StoppedReason = fmt.Sprintf("run is over before move %d", i+1)
			result.StoppedOnMove = i + 1
			break
		}

		dir, err := engine.ParseDirection(move)
		if err != nil {
			result.Success = false
			result.StopReasonCode = "invalid_direction"
			result.StoppedReason = fmt.Sprintf("move %d: %v", i+1, err)
			result.StoppedOnMove = i + 1
			break
		}

		prevMode, prevLevel := st.Mode, st.Level
		report := sess.Engine.Move(dir, fast)
		step := s.stepInfo(sess, i+1, report, fast)
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, s.extractMoveEvents(sess, report)...)
		s.logStep(sess, step)
		if step.Success {
			result.MovesExecuted++
		}

		code := bulkStopCode(report, prevMode, prevLevel, st)
		if code == "" {
			continue
		}
		result.StopReasonCode = code
		result.StoppedOnMove = i + 1
		switch code {
		case "blocked_wall", "blocked_boundary", "exit_locked":
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
		default:
			result.StoppedReason = fmt.Sprintf("stopped after move %d: %s", i+1, strings.ReplaceAll(code, "_", " "))
		}
		break
	}

	s.afterTransition(sess)

	snap := sess.Engine.GetSnapshot()
	result.State = snap
	result.EndLevel = st.Level
	result.EndPos = st.PlayerPos
	result.EndCoins = st.Coins
	result.EndLives = st.Lives
	result.GameOver = st.GameOver
	result.Won = st.Won
	result.Message = snap.Message
	result.LocalView3x3 = buildLocal3x3(snap)
	return result, nil
}

// Nudge moves the overworld position by an offset
func (s *gameServiceImpl) Nudge(ctx context.Context, sessionID string, dx, dy int) (*MoveResult, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	transition := sess.Engine.Nudge(dx, dy)
	last := sess.Engine.GetLastMove()

	var events []GameEvent
	if transition == engine.TransitionEnterMaze {
		events = append(events, s.newEvent(sess, "enter_maze", sess.Engine.GetSnapshot().Message))
		s.log.Info().Str("session", sess.ID).Int("level", sess.Engine.GetState().Level).Msg("entered maze")
	}
	s.afterTransition(sess)

	snap := sess.Engine.GetSnapshot()
	return &MoveResult{
		Success: last != nil && last.Success,
		State:   snap,
		Message: snap.Message,
		Events:  events,
	}, nil
}

// Restart resets the run after game over or a win
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.Engine.Restart(); err != nil {
		return nil, fmt.Errorf("restart session %s: %w", sessionID, err)
	}
	s.afterTransition(sess)
	s.log.Info().Str("session", sess.ID).Msg("run restarted")
	return sess.Engine.GetSnapshot(), nil
}

// Tick advances the patrol hazard by one step, as the patrol timer does
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*TickResult, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	moved, hit := s.tick(sess)
	return &TickResult{Moved: moved, Hit: hit, State: sess.Engine.GetSnapshot()}, nil
}

// GetGameState retrieves the current snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.Engine.GetSnapshot(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	history := sess.Engine.GetMoveHistory()
	if opts.Current {
		history = sess.Engine.GetCurrentMoves()
	}
	history = append([]engine.MoveHistoryEntry(nil), history...)
	sess.mu.Unlock()

	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// DescribeCell reports what occupies a cell of the session's current level
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, cell engine.Coordinate) (*engine.CellInfo, error) {
	sess, err := s.lockSession(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.Engine.DescribeCell(cell)
}

// ListConfigs returns available campaign configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific campaign configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.CampaignConfig, error) {
	return s.configs.LoadConfig(configName)
}

// Close stops the timers of every session
func (s *gameServiceImpl) Close() {
	for _, sess := range s.sessions.List() {
		sess.Close()
	}
}

// afterTransition syncs the session timers with the run and publishes the
// new snapshot. Callers hold sess.mu.
func (s *gameServiceImpl) afterTransition(sess *Session) {
	s.ensureTimers(sess)

	if sess.Engine.PatrolActive() {
		sess.patrol.Start()
	} else {
		sess.patrol.Stop()
	}

	if serial := sess.Engine.FlashSerial(); serial != sess.flashSerial {
		sess.flashSerial = serial
		sess.flash.Arm()
	}

	s.notify(sess)
}

func (s *gameServiceImpl) ensureTimers(sess *Session) {
	if sess.patrol != nil {
		return
	}
	campaign := sess.Engine.GetCampaign()
	sess.patrol = schedule.NewPeriodic(campaign.PatrolInterval, func() {
		s.patrolTick(sess)
	})
	sess.flash = schedule.NewOneShot(campaign.FlashDuration, func(gen uint64) {
		s.clearFlash(sess, gen)
	})
}

func (s *gameServiceImpl) patrolTick(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	s.tick(sess)
}

// tick runs one patrol step. Callers hold sess.mu.
func (s *gameServiceImpl) tick(sess *Session) (moved, hit bool) {
	moved, hit = sess.Engine.Tick()
	if hit {
		st := sess.Engine.GetState()
		s.log.Info().Str("session", sess.ID).Int("level", st.Level).Int("lives", st.Lives).Bool("game_over", st.GameOver).Msg("guard caught player")
	}
	if moved || hit {
		s.afterTransition(sess)
	} else if sess.patrol != nil && !sess.Engine.PatrolActive() {
		sess.patrol.Stop()
	}
	return moved, hit
}

func (s *gameServiceImpl) clearFlash(sess *Session, gen uint64) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed || gen != sess.flash.Generation() {
		return
	}
	if sess.Engine.ClearFlash() {
		s.notify(sess)
	}
}

func (s *gameServiceImpl) notify(sess *Session) {
	if s.notifier != nil {
		s.notifier.BroadcastToSession(sess.ID, sess.Engine.GetSnapshot())
	}
}

func (s *gameServiceImpl) logStep(sess *Session, step StepInfo) {
	s.log.Debug().
		Str("session", sess.ID).
		Int("idx", step.Idx).
		Str("dir", step.Dir).
		Bool("fast", step.Fast).
		Stringer("mode", step.Mode).
		Stringer("from", step.From).
		Stringer("to", step.To).
		Bool("success", step.Success).
		Int("coins", step.CoinsAfter).
		Int("lives", step.LivesAfter).
		Msg("move")
	if step.Transition != "" {
		st := sess.Engine.GetState()
		s.log.Info().Str("session", sess.ID).Str("transition", step.Transition).Int("level", st.Level).Msg("progression")
	}
}

func (s *gameServiceImpl) stepInfo(sess *Session, idx int, r engine.MoveReport, fast bool) StepInfo {
	st := sess.Engine.GetState()
	return StepInfo{
		Idx:        idx,
		Dir:        r.Direction.String(),
		Fast:       fast,
		Mode:       st.Mode,
		From:       r.From,
		To:         r.To,
		Stop:       string(r.Stop),
		CoinsAfter: st.Coins,
		LivesAfter: st.Lives,
		Success:    moveSucceeded(r),
		Collected:  r.Collected,
		Trap:       r.TrapTriggered,
		Hazard:     r.HazardHit,
		Transition: string(r.Transition),
	}
}

func moveSucceeded(r engine.MoveReport) bool {
	return r.Applied && (r.Stop == engine.StopNone || r.Moved())
}

func terminalCode(st *engine.RunState) string {
	if st.Won {
		return "won"
	}
	return "game_over"
}

func bulkStopCode(r engine.MoveReport, prevMode engine.Mode, prevLevel int, st *engine.RunState) string {
	switch {
	case st.Terminal():
		return terminalCode(st)
	case r.HazardHit:
		return "hazard"
	case r.TrapTriggered:
		return "trap"
	case st.Mode != prevMode:
		return "mode_changed"
	case st.Level != prevLevel:
		return "level_changed"
	case !r.Moved() && r.Stop == engine.StopExitLocked:
		return "exit_locked"
	case !r.Moved() && r.Stop != engine.StopNone:
		return "blocked_" + string(r.Stop)
	}
	return ""
}
