package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pm-launchpad/internal/config"
)

// options holds the flag values shared by every subcommand.
type options struct {
	provider    string
	model       string
	logLevel    string
	metricsAddr string
	prompts     string
	listen      string
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "launchpad",
		Short: "PM Launchpad - an AI project management advisor",
		Long: `Launchpad walks a project manager through initiation and stakeholder
analysis in the terminal, then drafts a project charter and a stakeholder
register from the conversation.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.provider, "provider", "", "model provider: gemini or openai (overrides MODEL_PROVIDER)")
	pf.StringVar(&opts.model, "model", "", "model name (overrides MODEL)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	pf.StringVar(&opts.metricsAddr, "metrics-addr", "", "address for the Prometheus listener (overrides METRICS_ADDR)")
	pf.StringVar(&opts.prompts, "prompts", "", "YAML prompt catalogue (overrides PROMPTS_FILE)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the advisor HTTP API locally",
		Long: `Serves POST /chat, /charter and /stakeholders with the same contract as
the Lambda deployment. /metrics is served on the same listener.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	serve.Flags().StringVar(&opts.listen, "listen", ":8080", "address for the API listener")
	root.AddCommand(serve)

	return root
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = opts.provider
		if !flags.Changed("model") && os.Getenv("MODEL") == "" {
			cfg.Model = ""
		}
	}
	if flags.Changed("model") {
		cfg.Model = opts.model
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if flags.Changed("prompts") {
		cfg.PromptsFile = opts.prompts
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// serveHTTP runs srv until ctx is done, then shuts it down gracefully.
func serveHTTP(ctx context.Context, log zerolog.Logger, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http listener started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
	}
	log.Info().Str("addr", srv.Addr).Msg("http listener stopped")
	return nil
}
