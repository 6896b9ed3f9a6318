package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pm-launchpad/internal/bootstrap"
	"pm-launchpad/internal/metrics"
	"pm-launchpad/internal/session"
	"pm-launchpad/internal/tui"
)

// runInteractive starts the terminal UI. Logs go to LOG_FILE so they do not
// corrupt the screen.
func runInteractive(cmd *cobra.Command, opts *options) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	log := bootstrap.NewLogger(logFile, cfg.LogLevel)

	m := metrics.New()
	svc, err := bootstrap.NewAdvisor(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	ctrl, err := session.NewController(svc, session.WithLogger(log), session.WithRecorder(m))
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// Quitting the UI stops the metrics listener too.
		defer cancel()
		return tui.Run(gctx, ctrl, tui.WithLogger(log), tui.WithCharLimit(cfg.MaxMessageLength))
	})
	if cfg.MetricsEnabled() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			return serveHTTP(gctx, log, srv)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("launchpad exited with error")
		return err
	}
	log.Info().Msg("launchpad exited")
	return nil
}
