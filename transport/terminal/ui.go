package terminal

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/service"
)

var errQuit = errors.New("quit")

type update struct {
	sessionID string
	snapshot  *engine.Snapshot
}

// UI plays a single session in the terminal. It is the service notifier, so
// patrol ticks and flash clears redraw the screen as well as key presses.
type UI struct {
	renderer *Renderer
	updates  chan update
	log      zerolog.Logger
}

var _ service.Notifier = (*UI)(nil)

// UIOption configures a UI
type UIOption func(*UI)

// WithUILogger sets the UI logger
func WithUILogger(log zerolog.Logger) UIOption {
	return func(u *UI) {
		u.log = log
	}
}

// NewUI creates a terminal UI drawing with renderer
func NewUI(renderer *Renderer, opts ...UIOption) *UI {
	u := &UI{
		renderer: renderer,
		updates:  make(chan update, 1),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// BroadcastToSession queues a redraw. Only the newest pending snapshot is
// kept.
func (u *UI) BroadcastToSession(sessionID string, snapshot *engine.Snapshot) {
	upd := update{sessionID: sessionID, snapshot: snapshot}
	for {
		select {
		case u.updates <- upd:
			return
		default:
		}
		select {
		case <-u.updates:
		default:
		}
	}
}

// Play creates a session, reads commands from in until quit or EOF and
// returns the final snapshot. games must have been created with this UI as
// its notifier.
func (u *UI) Play(ctx context.Context, games service.GameService, configName string, in io.Reader) (*engine.Snapshot, error) {
	info, err := games.CreateSession(ctx, configName)
	if err != nil {
		return nil, err
	}
	defer games.DeleteSession(context.Background(), info.ID)

	if cfg, err := games.LoadConfig(ctx, info.ConfigName); err == nil && cfg.Overworld != nil {
		u.renderer.overworld = *cfg.Overworld
	}
	if err := u.renderer.Draw(info.State); err != nil {
		return nil, err
	}

	u.log.Info().Str("session", info.ID).Str("config", info.ConfigName).Msg("terminal session started")

	g, gctx := errgroup.WithContext(ctx)
	keys := make(chan Command)
	readErr := make(chan error, 1)

	// stdin cannot be interrupted, so the reader is left out of the group
	go func() {
		reader := NewKeyReader(in)
		for {
			cmd, err := reader.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case keys <- cmd:
			case <-gctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case err := <-readErr:
				if errors.Is(err, io.EOF) {
					return errQuit
				}
				return err
			case cmd := <-keys:
				if err := u.apply(gctx, games, info.ID, cmd); err != nil {
					return err
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case upd := <-u.updates:
				if upd.sessionID != info.ID {
					continue
				}
				if err := u.renderer.Draw(upd.snapshot); err != nil {
					return err
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return nil, err
	}

	final, err := games.GetGameState(context.Background(), info.ID)
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("session", info.ID).Bool("won", final.Won).Int("moves", final.TotalMoves).Msg("terminal session ended")
	return final, nil
}

func (u *UI) apply(ctx context.Context, games service.GameService, sessionID string, cmd Command) error {
	switch cmd.Kind {
	case CommandQuit:
		return errQuit
	case CommandMove:
		_, err := games.Move(ctx, sessionID, cmd.Direction.String(), cmd.Fast)
		return err
	case CommandRestart:
		_, err := games.Restart(ctx, sessionID)
		if errors.Is(err, engine.ErrRestartUnavailable) {
			return nil
		}
		return err
	}
	return nil
}
