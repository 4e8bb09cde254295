package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/castle-maze/game/config"
	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/service"
	"github.com/wricardo/castle-maze/transport/terminal"
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a campaign in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "campaign",
				Aliases: []string{"c"},
				Value:   config.DefaultConfigName,
				Usage:   "campaign to play",
			},
			&cli.IntFlag{
				Name:  "dark-radius",
				Value: 2,
				Usage: "how far the player sees on dark levels",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colours",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write logs to this file; the screen itself is never logged to",
			},
		},
		Action: runPlay,
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("no-color") {
		color.Enable = false
	}

	log, closeLog, err := playLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	out := outWriter(cmd)
	renderer := terminal.NewRenderer(out, terminal.WithDarkRadius(int(cmd.Int("dark-radius"))))
	ui := terminal.NewUI(renderer, terminal.WithUILogger(log))

	svc, err := initializeServices(cmd.String("config-dir"), log, service.WithNotifier(ui))
	if err != nil {
		return err
	}
	defer svc.games.Close()

	restore, err := terminal.MakeRaw()
	if err != nil {
		return fmt.Errorf("play needs an interactive terminal: %w", err)
	}
	final, err := ui.Play(ctx, svc.games, cmd.String("campaign"), os.Stdin)
	restore()
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, summary(final))
	return nil
}

// playLogger discards logs unless --log-file is set
func playLogger(cmd *cli.Command) (zerolog.Logger, func(), error) {
	path := cmd.String("log-file")
	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := zerolog.InfoLevel
	if cmd.Bool("debug") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(io.Writer(f)).Level(level).With().Timestamp().Logger(), func() { f.Close() }, nil
}

// summary describes how a terminal run ended
func summary(snap *engine.Snapshot) string {
	switch {
	case snap.Won:
		return fmt.Sprintf("You escaped %s in %d moves.", snap.Campaign, snap.TotalMoves)
	case snap.GameOver:
		return fmt.Sprintf("Game over on level %d (%s) after %d moves.", snap.Level, snap.LevelName, snap.TotalMoves)
	case snap.Mode == engine.Overworld:
		return fmt.Sprintf("Left outside the castle before level %d after %d moves.", snap.Level, snap.TotalMoves)
	default:
		return fmt.Sprintf("Left on level %d/%d (%s) with %d/%d coins after %d moves.",
			snap.Level, snap.Levels, snap.LevelName, snap.Coins, snap.RequiredCoins, snap.TotalMoves)
	}
}
