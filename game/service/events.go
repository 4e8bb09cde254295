package service

import (
	"fmt"
	"time"

	"github.com/wricardo/castle-maze/game/engine"
)

func (s *gameServiceImpl) newEvent(sess *Session, kind, message string) GameEvent {
	st := sess.Engine.GetState()
	return GameEvent{
		Type:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Level:     st.Level,
		Position:  st.PlayerPos,
	}
}

// extractMoveEvents generates events from a move report
func (s *gameServiceImpl) extractMoveEvents(sess *Session, r engine.MoveReport) []GameEvent {
	if !r.Applied {
		return nil
	}
	st := sess.Engine.GetState()
	events := []GameEvent{}

	switch {
	case r.Moved():
		events = append(events, s.newEvent(sess, "move", fmt.Sprintf("Moved %s to %s", r.Direction, r.To)))
	case r.Stop != engine.StopNone:
		events = append(events, s.newEvent(sess, "blocked", fmt.Sprintf("Blocked %s by %s", r.Direction, r.Stop)))
	case r.Transition == engine.TransitionNone:
		events = append(events, s.newEvent(sess, "move", fmt.Sprintf("Walked %s to (%d,%d)", r.Direction, st.Overworld.X, st.Overworld.Y)))
	}

	if r.Collected {
		events = append(events, s.newEvent(sess, "coin", fmt.Sprintf("Coin collected: %d", st.Coins)))
	}
	if r.TrapTriggered {
		events = append(events, s.newEvent(sess, "trap", fmt.Sprintf("Trap triggered at %s", r.To)))
	}
	if r.HazardHit {
		events = append(events, s.newEvent(sess, "hazard", fmt.Sprintf("Caught by the guard, lives left: %d", st.Lives)))
	}

	switch r.Transition {
	case engine.TransitionEnterMaze:
		events = append(events, s.newEvent(sess, "enter_maze", fmt.Sprintf("Entered level %d", st.Level)))
	case engine.TransitionOverworld, engine.TransitionNextLevel, engine.TransitionShortcut:
		events = append(events, s.newEvent(sess, "level_complete", fmt.Sprintf("Level complete, next is level %d", st.Level)))
	case engine.TransitionSecret:
		events = append(events, s.newEvent(sess, "secret_passage", fmt.Sprintf("Secret passage to level %d", st.Level)))
	case engine.TransitionWin:
		events = append(events, s.newEvent(sess, "victory", "Escaped the castle"))
	case engine.TransitionNone, engine.TransitionRestart:
	}

	if st.GameOver {
		events = append(events, s.newEvent(sess, "game_over", sess.Engine.GetSnapshot().Message))
	}
	return events
}

// buildLocal3x3 returns the cells around the player in maze mode, '#'
// outside the grid
func buildLocal3x3(snap *engine.Snapshot) []string {
	if snap == nil || snap.Mode != engine.Maze {
		return nil
	}
	rows := snap.Render(0)
	lines := make([]string, 0, 3)
	for dr := -1; dr <= 1; dr++ {
		line := make([]byte, 0, 3)
		for dc := -1; dc <= 1; dc++ {
			r, c := snap.PlayerPos.Row+dr, snap.PlayerPos.Col+dc
			if r < 0 || r >= len(rows) || c < 0 || c >= len(rows[r]) {
				line = append(line, engine.WallChar)
				continue
			}
			line = append(line, rows[r][c])
		}
		lines = append(lines, string(line))
	}
	return lines
}
