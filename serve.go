package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/castle-maze/api"
	"github.com/wricardo/castle-maze/game/service"
	"github.com/wricardo/castle-maze/transport/mcp"
	"github.com/wricardo/castle-maze/transport/websocket"
)

const (
	cleanupInterval = time.Hour
	shutdownTimeout = 10 * time.Second
	probeTimeout    = 2 * time.Second
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Usage:   "HTTP listen address",
				Sources: cli.EnvVars("ADDR"),
			},
			&cli.DurationFlag{
				Name:  "session-ttl",
				Value: 24 * time.Hour,
				Usage: "remove sessions idle for longer than this",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(websocket.WithLogger(log.With().Str("component", "websocket").Logger()))
	svc, err := initializeServices(cmd.String("config-dir"), log, service.WithNotifier(hub))
	if err != nil {
		return err
	}
	defer svc.games.Close()
	hub.SetGameService(svc.games)

	addr := cmd.String("addr")
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      newRouter(svc.games, hub, localURL(addr), log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		return svc.sessions.RunCleanup(gctx, cleanupInterval, cmd.Duration("session-ttl"))
	})
	g.Go(func() error {
		log.Info().
			Str("addr", addr).
			Str("api", "/api").
			Str("websocket", "/ws?session=<id>").
			Str("mcp", "/mcp").
			Msgf("%s v%s listening", AppName, Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// newRouter mounts the REST API at the root and the MCP endpoint at /mcp.
// The MCP tools call back into the API at baseURL.
func newRouter(games service.GameService, hub *websocket.Hub, baseURL string, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(games, hub, api.WithLogger(log.With().Str("component", "api").Logger())))
	mux.Handle("/mcp", mcpHandler(mcp.NewClient(baseURL).GetMCPServer()))
	return mux
}

// mcpHandler answers one JSON-RPC message per POST
func mcpHandler(srv *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := srv.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// localURL turns a listen address into a loopback URL
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server, starting an internal API when none is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "game API to drive; leave empty to always use an internal one",
				Sources: cli.EnvVars("CASTLE_API_URL"),
			},
		},
		Action: runMCP,
	}
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)

	baseURL := cmd.String("api-url")
	if baseURL != "" && apiAvailable(ctx, baseURL) {
		log.Info().Str("api", baseURL).Msg("using external API server")
	} else {
		internalURL, shutdown, err := startInternalAPI(cmd.String("config-dir"), log)
		if err != nil {
			return err
		}
		defer shutdown()
		log.Info().Str("api", internalURL).Msg("no external API server found, started internal one")
		baseURL = internalURL
	}

	client := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")
	return server.ServeStdio(client.GetMCPServer())
}

// apiAvailable probes the health endpoint of an API server
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port
func startInternalAPI(configDir string, log zerolog.Logger) (string, func(), error) {
	svc, err := initializeServices(configDir, log)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		svc.games.Close()
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{Handler: api.NewServer(svc.games, nil, api.WithLogger(log))}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server failed")
		}
	}()

	shutdown := func() {
		httpServer.Close()
		svc.games.Close()
	}
	return "http://" + listener.Addr().String(), shutdown, nil
}
