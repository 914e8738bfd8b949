package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/btouchard/beacon/internal/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "beacon: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:      "beacon",
		Usage:     "Real-time notification hub",
		UsageText: "beacon [global options] command [command options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("BEACON_CONFIG"),
				Destination: &configPath,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the Beacon server",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(configPath)
					if err != nil {
						return fmt.Errorf("loading configuration: %w", err)
					}
					setupLogging(cfg)

					slog.Info("starting beacon",
						"version", version,
						"host", cfg.Server.Host,
						"port", cfg.Server.Port)

					return run(ctx, cfg)
				},
			},
			{
				Name:  "check",
				Usage: "Validate configuration",
				Action: func(ctx context.Context, c *cli.Command) error {
					if _, err := loadConfig(configPath); err != nil {
						return fmt.Errorf("configuration error: %w", err)
					}
					_, _ = fmt.Fprintln(c.Root().Writer, "configuration is valid")
					return nil
				},
			},
			sendCommand(),
			{
				Name:  "version",
				Usage: "Print version",
				Action: func(ctx context.Context, c *cli.Command) error {
					_, _ = fmt.Fprintf(c.Root().Writer, "beacon %s\n", version)
					return nil
				},
			},
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch cfg.Server.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlers := []slog.Handler{
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	}

	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			slog.Warn("failed to open log file, using stdout only", "path", cfg.Server.LogFile, "error", err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		}
	}

	logger := slog.New(slog.NewMultiHandler(handlers...))
	slog.SetDefault(logger)
}
