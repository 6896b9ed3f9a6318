package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"pm-launchpad/handler"
	"pm-launchpad/internal/bootstrap"
	"pm-launchpad/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		boot := bootstrap.NewLogger(os.Stderr, "info")
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := bootstrap.NewLogger(os.Stdout, cfg.LogLevel)

	h, err := newHandler(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create handler")
	}

	lambda.Start(h.Handle)
}

func newHandler(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*handler.Handler, error) {
	svc, err := bootstrap.NewAdvisor(ctx, cfg, log, nil)
	if err != nil {
		return nil, fmt.Errorf("create advisor: %w", err)
	}
	return handler.NewHandler(svc, handler.WithLogger(log))
}
