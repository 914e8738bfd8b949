package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/beacon/internal/api"
	"github.com/btouchard/beacon/internal/config"
	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/journal"
	beaconmcp "github.com/btouchard/beacon/internal/mcp"
	"github.com/btouchard/beacon/internal/notify"
	"github.com/btouchard/beacon/internal/tunnel"
)

func run(ctx context.Context, cfg *config.Config) error {
	// --- Hub ---
	h := hub.New(hub.Options{
		Capacity:       cfg.Hub.Capacity,
		BufferSize:     cfg.Hub.BufferSize,
		MaxSubscribers: cfg.Hub.MaxSubscribers,
	})

	var (
		background sync.WaitGroup
		jrnl       *journal.SQLiteJournal
	)
	// Closing the hub ends every subscriber stream, so the background
	// consumers return before the journal is closed.
	defer func() {
		h.Close()
		background.Wait()
		if jrnl != nil {
			_ = jrnl.Close()
		}
	}()

	deps := api.Deps{
		Hub:            h,
		Version:        version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		WriteTimeout:   cfg.Server.WriteTimeout,
	}

	// --- Journal ---
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		jrnl = j

		sub, err := h.Connect()
		if err != nil {
			return fmt.Errorf("attaching journal: %w", err)
		}
		retention := time.Duration(cfg.Journal.RetentionDays) * 24 * time.Hour

		background.Add(1)
		go func() {
			defer background.Done()
			j.Run(ctx, sub, retention)
		}()

		deps.Journal = j
		slog.Info("journal opened", "path", cfg.Journal.Path, "retention_days", cfg.Journal.RetentionDays)
	}

	// --- MCP Server ---
	if cfg.MCP.Enabled {
		mcpServer := beaconmcp.NewServer(&beaconmcp.Deps{
			Hub:     h,
			Version: version,
		})
		deps.MCP = server.NewStreamableHTTPServer(mcpServer)

		sub, err := h.Connect()
		if err != nil {
			return fmt.Errorf("attaching mcp notifier: %w", err)
		}
		background.Add(1)
		go func() {
			defer background.Done()
			notify.Forward(ctx, sub.Events(), notify.NewMCPNotifier(mcpServer, 0))
		}()
	}

	// --- HTTP Server ---
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("beacon is ready", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Tunnel ---
	if cfg.Tunnel.Enabled {
		tun := tunnel.NewNgrok(cfg.Tunnel.AuthToken, cfg.Tunnel.Domain)
		if _, err := tun.Start(ctx, addr); err != nil {
			_ = srv.Close()
			return fmt.Errorf("starting tunnel: %w", err)
		}
		defer func() { _ = tun.Close() }()

		go func() {
			if err := srv.Serve(tun.Listener()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("tunnel: %w", err)
			}
		}()
		slog.Info("webhook published", "url", tunnel.WebhookURL(tun))
	}

	select {
	case err := <-errCh:
		_ = srv.Close()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
