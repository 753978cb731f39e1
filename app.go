package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/escape-room-game/api"
	"github.com/wricardo/escape-room-game/game/config"
	"github.com/wricardo/escape-room-game/game/service"
	"github.com/wricardo/escape-room-game/game/session"
	"github.com/wricardo/escape-room-game/transport/mcp"
	"github.com/wricardo/escape-room-game/transport/websocket"
)

const (
	syncInterval      = 5 * time.Second
	saveInterval      = time.Minute
	cleanupInterval   = time.Hour
	shutdownTimeout   = 10 * time.Second
	probeTimeout      = 2 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// app holds the services shared by every command
type app struct {
	settings config.Settings
	logger   *zap.Logger
	configs  *config.Manager
	sessions *session.Manager
	store    session.SessionPersistence
	service  service.GameService
}

type tunnelOptions struct {
	enabled   bool
	domain    string
	authtoken string
}

func setup(cmd *cli.Command) (*app, error) {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(settings.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	a, err := newApp(settings, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return a, nil
}

func newApp(settings config.Settings, logger *zap.Logger) (*app, error) {
	configs, err := config.NewManager(settings.ConfigDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	store, err := openStore(settings)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManagerWithPersistence(store, configs, logger, settings.EngineOptions()...)
	if err := sessions.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", zap.Error(err))
	}

	logger.Info("services initialized",
		zap.String("config_dir", settings.ConfigDir),
		zap.String("storage", settings.Storage),
		zap.Int("sessions", sessions.Count()))

	return &app{
		settings: settings,
		logger:   logger,
		configs:  configs,
		sessions: sessions,
		store:    store,
		service:  service.NewGameService(sessions, configs, logger),
	}, nil
}

func openStore(settings config.Settings) (session.SessionPersistence, error) {
	switch settings.Storage {
	case config.StorageSQLite:
		store, err := session.NewSQLitePersistence(settings.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		return store, nil
	default:
		store, err := session.NewFilePersistence(settings.SessionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session persistence: %w", err)
		}
		return store, nil
	}
}

// Close saves every session and releases the store
func (a *app) Close() {
	if err := a.sessions.SaveAllSessions(); err != nil {
		a.logger.Warn("final save incomplete", zap.Error(err))
	}
	if closer, ok := a.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("failed to close session store", zap.Error(err))
		}
	}
	a.logger.Sync()
}

// handler serves the REST API, WebSocket updates and MCP over HTTP
func (a *app) handler(hub *websocket.Hub, mcpBaseURL string) http.Handler {
	apiServer := api.NewServer(a.service, hub, a.logger)
	mcpClient := mcp.NewClient(mcpBaseURL)

	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpClient.GetMCPServer()))
	return mux
}

func (a *app) serve(ctx context.Context, tunnel tunnelOptions) error {
	addr := net.JoinHostPort(a.settings.Host, strconv.Itoa(a.settings.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	hub := websocket.NewHub(a.logger)
	handler := a.handler(hub, "http://"+listener.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return a.serveListener(ctx, listener, handler)
	})
	g.Go(func() error {
		a.maintain(ctx)
		return nil
	})
	if a.settings.WatchConfigs {
		g.Go(func() error {
			if err := a.configs.Watch(ctx); err != nil {
				a.logger.Warn("campaign watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	if tunnel.enabled {
		g.Go(func() error {
			if err := a.serveTunnel(ctx, tunnel, handler); err != nil {
				a.logger.Error("ngrok tunnel failed", zap.Error(err))
			}
			return nil
		})
	}

	a.logger.Info("server listening",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("addr", listener.Addr().String()))
	err = g.Wait()
	a.logger.Info("server stopped")
	return err
}

// serveListener runs an HTTP server on l until ctx is done
func (a *app) serveListener(ctx context.Context, l net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *app) serveTunnel(ctx context.Context, opts tunnelOptions, handler http.Handler) error {
	var endpointOpts []ngrokConfig.HTTPEndpointOption
	if opts.domain != "" {
		endpointOpts = append(endpointOpts, ngrokConfig.WithDomain(opts.domain))
	}
	connectOpts := []ngrok.ConnectOption{ngrok.WithAuthtokenFromEnv()}
	if opts.authtoken != "" {
		connectOpts = append(connectOpts, ngrok.WithAuthtoken(opts.authtoken))
	}

	tun, err := ngrok.Listen(ctx, ngrokConfig.HTTPEndpoint(endpointOpts...), connectOpts...)
	if err != nil {
		return fmt.Errorf("start ngrok tunnel: %w", err)
	}
	a.logger.Info("ngrok tunnel established", zap.String("url", tun.URL()))
	return a.serveListener(ctx, tun, handler)
}

// maintain keeps memory and storage in step until ctx is done
func (a *app) maintain(ctx context.Context) {
	syncTicker := time.NewTicker(syncInterval)
	defer syncTicker.Stop()
	saveTicker := time.NewTicker(saveInterval)
	defer saveTicker.Stop()
	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncTicker.C:
			a.sessions.PruneOrphans()
		case <-saveTicker.C:
			if err := a.sessions.SaveAllSessions(); err != nil {
				a.logger.Warn("periodic save incomplete", zap.Error(err))
			}
		case <-cleanupTicker.C:
			a.sessions.CleanupExpiredSessions(a.settings.SessionTTL())
		}
	}
}

// serveStdioMCP proxies MCP over stdio to apiURL, or to a running server on
// host:port, or to an internal server on a loopback port
func (a *app) serveStdioMCP(ctx context.Context, apiURL string) error {
	// closing stdin ends the session and stops the internal server
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if apiURL == "" {
		external := "http://" + net.JoinHostPort(a.settings.Host, strconv.Itoa(a.settings.Port))
		if probe(ctx, external) {
			a.logger.Info("using external API server", zap.String("url", external))
			apiURL = external
		}
	}

	if apiURL == "" {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		apiURL = "http://" + listener.Addr().String()
		a.logger.Info("starting internal API server", zap.String("url", apiURL))

		hub := websocket.NewHub(a.logger)
		handler := a.handler(hub, apiURL)
		g.Go(func() error {
			hub.Run(ctx)
			return nil
		})
		g.Go(func() error {
			return a.serveListener(ctx, listener, handler)
		})
		g.Go(func() error {
			a.maintain(ctx)
			return nil
		})
	}

	mcpClient := mcp.NewClient(apiURL)
	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	g.Go(func() error {
		defer cancel()
		a.logger.Info("MCP stdio server ready", zap.String("api", apiURL))
		err := stdio.Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

// probe reports whether an API server answers /health at baseURL
func probe(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
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
