// Command castlemaze runs the Castle Maze game engine.
//
// Subcommands:
//   - serve: HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//   - mcp: MCP stdio server, backed by a running API or an internal one
//   - play: interactive terminal game
//   - validate: structural and reachability checks for campaign files
//   - levels: per-level summary of a campaign
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/castle-maze/game/config"
	"github.com/wricardo/castle-maze/game/service"
	"github.com/wricardo/castle-maze/game/session"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Castle Maze"
)

const defaultConfigDir = "configs"

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Flags on the root command are visible to
// every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "castlemaze",
		Usage:   AppName + " game server and tools",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   defaultConfigDir,
				Usage:   "directory containing campaign files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			validateCommand(),
			levelsCommand(),
		},
	}
}

// newLogger writes JSON logs to stderr so stdout stays free for the MCP
// protocol and command output. --debug switches to a console writer.
func newLogger(cmd *cli.Command) zerolog.Logger {
	var w io.Writer = errWriter(cmd)
	level := zerolog.InfoLevel
	if cmd.Bool("debug") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// services groups what initializeServices wires together
type services struct {
	games    service.GameService
	sessions *session.Manager
	configs  *config.Manager
}

// initializeServices wires the config and session managers into a game
// service. opts are passed through to the service.
func initializeServices(configDir string, log zerolog.Logger, opts ...service.Option) (*services, error) {
	configs, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessions := session.NewManager().WithLogger(log.With().Str("component", "sessions").Logger())

	opts = append([]service.Option{service.WithLogger(log.With().Str("component", "games").Logger())}, opts...)
	games := service.NewGameService(sessions, configs, opts...)

	log.Debug().Str("config_dir", configDir).Msg("services initialized")
	return &services{games: games, sessions: sessions, configs: configs}, nil
}
