// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Model provider
	Provider      string   `envconfig:"MODEL_PROVIDER" default:"gemini"`
	Model         string   `envconfig:"MODEL"`
	APIKey        string   `envconfig:"API_KEY"`
	ParamPrefix   string   `envconfig:"PARAM_PREFIX"` // SSM prefix holding <provider>-token when API_KEY is unset
	OpenAIBaseURL string   `envconfig:"OPENAI_BASE_URL"`
	GeminiBaseURL string   `envconfig:"GEMINI_BASE_URL"`
	Temperature   *float64 `envconfig:"TEMPERATURE" default:"0.4"`

	// Advisor limits
	ModelTimeout       time.Duration `envconfig:"MODEL_TIMEOUT" default:"60s"`
	MaxHistoryMessages int           `envconfig:"MAX_HISTORY_MESSAGES" default:"40"`
	MaxMessageLength   int           `envconfig:"MAX_MESSAGE_LENGTH" default:"4000"`
	MaxTranscriptChars int           `envconfig:"MAX_TRANSCRIPT_CHARS" default:"60000"`
	PromptsFile        string        `envconfig:"PROMPTS_FILE"`

	// Observability
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile     string `envconfig:"LOG_FILE" default:"launchpad.log"`
	MetricsAddr string `envconfig:"METRICS_ADDR"` // empty disables the metrics listener
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize canonicalizes the provider name, fills in the provider's default
// model and checks the limits. Call it again after overriding fields.
func (c *Config) Normalize() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("config: unknown MODEL_PROVIDER %q", c.Provider)
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = c.DefaultModel()
	}
	c.ParamPrefix = strings.TrimRight(strings.TrimSpace(c.ParamPrefix), "/")
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("config: MODEL_TIMEOUT must be positive, got %s", c.ModelTimeout)
	}
	if c.MaxHistoryMessages <= 0 || c.MaxMessageLength <= 0 || c.MaxTranscriptChars <= 0 {
		return fmt.Errorf("config: MAX_HISTORY_MESSAGES, MAX_MESSAGE_LENGTH and MAX_TRANSCRIPT_CHARS must be positive")
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("config: TEMPERATURE must be within 0-2, got %v", *c.Temperature)
	}
	return nil
}

// DefaultModel is the model used when MODEL is unset.
func (c *Config) DefaultModel() string {
	if c.Provider == ProviderOpenAI {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}

// UsesParamStore reports whether the API key must be read from SSM.
func (c *Config) UsesParamStore() bool {
	return strings.TrimSpace(c.APIKey) == "" && c.ParamPrefix != ""
}

// MetricsEnabled reports whether a metrics listener should be started.
func (c *Config) MetricsEnabled() bool {
	return strings.TrimSpace(c.MetricsAddr) != ""
}
