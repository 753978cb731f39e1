// Command escape-room starts the escape room game server.
//
// It supports two modes:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket
//     updates and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API
//     if none is available
//
// Defaults come from settings.yaml; flags and environment variables override
// them. An optional ngrok tunnel exposes the server during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/escape-room-game/game/config"
	"github.com/wricardo/escape-room-game/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Escape Room Game Server"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:           "escape-room",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "serve",
		Flags:          globalFlags(),
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP, WebSocket and MCP server",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel"},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "reserved ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
					&cli.StringFlag{Name: "ngrok-authtoken", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN")},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := setup(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					return a.serve(ctx, tunnelOptions{
						enabled:   cmd.Bool("ngrok"),
						domain:    firstNonEmpty(cmd.String("ngrok-domain"), a.settings.NgrokDomain),
						authtoken: cmd.String("ngrok-authtoken"),
					})
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "serve MCP over stdin/stdout",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Usage: "use this running API server instead of probing host:port"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := setup(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					return a.serveStdioMCP(ctx, cmd.String("api-url"))
				},
			},
			{
				Name:      "validate",
				Usage:     "lint campaign files",
				ArgsUsage: "[file...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					settings, err := resolveSettings(cmd)
					if err != nil {
						return err
					}
					return runValidate(os.Stdout, settings.ConfigDir, cmd.Args().Slice())
				},
			},
		},
	}
}

// globalFlags are shared by every subcommand
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "settings", Value: "settings.yaml", Usage: "settings file", Sources: cli.EnvVars("ESCAPE_SETTINGS")},
		&cli.StringFlag{Name: "host", Usage: "host to bind to", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Usage: "port to listen on", Sources: cli.EnvVars("PORT")},
		&cli.StringFlag{Name: "config-dir", Usage: "directory containing campaign files", Sources: cli.EnvVars("CONFIG_DIR")},
		&cli.StringFlag{Name: "storage", Usage: "session storage: file or sqlite", Sources: cli.EnvVars("STORAGE")},
		&cli.StringFlag{Name: "sessions-dir", Usage: "directory for file storage", Sources: cli.EnvVars("SESSIONS_DIR")},
		&cli.StringFlag{Name: "sqlite-path", Usage: "database file for sqlite storage", Sources: cli.EnvVars("SQLITE_PATH")},
		&cli.IntFlag{Name: "lockout", Usage: "seconds a puzzle stays locked after too many wrong attempts (0: 5s, 8s on hard)", Sources: cli.EnvVars("HINT_LOCKOUT_SECONDS")},
		&cli.IntFlag{Name: "session-ttl", Usage: "hours an idle session stays in memory", Sources: cli.EnvVars("SESSION_TTL_HOURS")},
		&cli.BoolFlag{Name: "no-watch", Usage: "do not reload campaign files when they change"},
		&cli.BoolFlag{Name: "debug", Usage: "enable debug logging", Sources: cli.EnvVars("DEBUG")},
	}
}

// resolveSettings layers flags and environment variables over the settings file
func resolveSettings(cmd *cli.Command) (config.Settings, error) {
	settings, err := config.LoadSettings(cmd.String("settings"))
	if err != nil {
		return settings, err
	}

	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		settings.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("storage") {
		settings.Storage = cmd.String("storage")
	}
	if cmd.IsSet("sessions-dir") {
		settings.SessionsDir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("sqlite-path") {
		settings.SQLitePath = cmd.String("sqlite-path")
	}
	if cmd.IsSet("lockout") {
		settings.HintLockoutSeconds = int(cmd.Int("lockout"))
	}
	if cmd.IsSet("session-ttl") {
		settings.SessionTTLHours = int(cmd.Int("session-ttl"))
	}
	if cmd.Bool("no-watch") {
		settings.WatchConfigs = false
	}
	if cmd.Bool("debug") {
		settings.Debug = true
	}
	return settings, settings.Validate()
}

// newLogger writes to stderr so stdout stays free for MCP stdio
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// errInvalidCampaigns is returned when the linter finds errors
var errInvalidCampaigns = errors.New("some campaigns have errors")

// runValidate lints files, or every campaign in dir when files is empty
func runValidate(w io.Writer, dir string, files []string) error {
	var results []validate.ValidationResult
	if len(files) == 0 {
		var err error
		if results, err = validate.ValidateDir(dir); err != nil {
			return err
		}
	}
	for _, f := range files {
		results = append(results, validate.ValidateFile(f))
	}
	if !validate.PrintReport(w, results) {
		return errInvalidCampaigns
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
