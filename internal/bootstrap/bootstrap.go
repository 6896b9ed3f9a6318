// Package bootstrap builds the advisor stack from a Config. Both binaries
// share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"

	"pm-launchpad/internal/advisor"
	"pm-launchpad/internal/config"
	"pm-launchpad/internal/integrations/credentials"
	"pm-launchpad/internal/integrations/gemini"
	"pm-launchpad/internal/integrations/openai"
	"pm-launchpad/internal/integrations/paramstore"
)

var loadAWSConfig = func(ctx context.Context) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx)
}

// NewLogger returns a JSON logger writing to w at the named level. Unknown
// levels fall back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// KeySource picks the API key source: API_KEY when set, otherwise the SSM
// parameter under PARAM_PREFIX.
func KeySource(ctx context.Context, cfg *config.Config) (credentials.Source, error) {
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		return credentials.Static(key), nil
	}
	if !cfg.UsesParamStore() {
		return nil, errors.New("bootstrap: no API key configured; set API_KEY or PARAM_PREFIX")
	}
	awsCfg, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load AWS config: %w", err)
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create SSM client: %w", err)
	}
	return credentials.NewParamStore(ssmClient, cfg.ParamPrefix, cfg.Provider)
}

// LLMClient builds the provider client selected by MODEL_PROVIDER.
func LLMClient(cfg *config.Config, keys credentials.Source) (advisor.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(keys, openai.WithBaseURL(cfg.OpenAIBaseURL))
	case config.ProviderGemini:
		return gemini.NewClient(keys, gemini.WithBaseURL(cfg.GeminiBaseURL))
	default:
		return nil, fmt.Errorf("bootstrap: unknown provider %q", cfg.Provider)
	}
}

// NewAdvisor wires credentials, provider and prompts into an advisor.Service.
func NewAdvisor(ctx context.Context, cfg *config.Config, log zerolog.Logger, rec advisor.Recorder) (*advisor.Service, error) {
	keys, err := KeySource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	llm, err := LLMClient(cfg, keys)
	if err != nil {
		return nil, err
	}
	prompts, err := advisor.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Dur("timeout", cfg.ModelTimeout).
		Bool("paramstore", cfg.UsesParamStore()).
		Msg("advisor configured")

	return advisor.NewService(llm, prompts, advisor.Settings{
		Model:              cfg.Model,
		Timeout:            cfg.ModelTimeout,
		Temperature:        cfg.Temperature,
		MaxHistoryMessages: cfg.MaxHistoryMessages,
		MaxMessageLength:   cfg.MaxMessageLength,
		MaxTranscriptChars: cfg.MaxTranscriptChars,
	}, advisor.WithLogger(log), advisor.WithRecorder(rec))
}
