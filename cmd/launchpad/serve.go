package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pm-launchpad/handler"
	"pm-launchpad/internal/bootstrap"
	"pm-launchpad/internal/metrics"
)

func runServe(cmd *cobra.Command, opts *options) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log := bootstrap.NewLogger(os.Stdout, cfg.LogLevel)

	m := metrics.New()
	svc, err := bootstrap.NewAdvisor(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	h, err := handler.NewHandler(svc, handler.WithLogger(log), handler.WithRecorder(m))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/", h)

	srv := &http.Server{
		Addr:              opts.listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ModelTimeout + 10*time.Second,
	}
	return serveHTTP(ctx, log, srv)
}
