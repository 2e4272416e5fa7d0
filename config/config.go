// Package config loads runtime settings from a config file and environment
// variables, with working defaults for everything except API credentials.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted for the model backend.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

const (
	configName = "councilsim"
	configType = "yaml"
	envPrefix  = "COUNCILSIM"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	// Addr is the HTTP listen address.
	Addr string

	// Provider selects the model backend: "anthropic" or "openai".
	Provider        string
	AnthropicAPIKey string
	OpenAIAPIKey    string

	// DebateModel generates hearing turns; AnalysisModel backs persona
	// generation and post-debate analysis.
	DebateModel   string
	AnalysisModel string

	DebateTemperature float64
	MaxTokensPerTurn  int64

	AnalysisTierTimeout time.Duration
	PersonaTimeout      time.Duration
	ResearchTimeout     time.Duration

	LogLevel  string
	LogFormat string
}

// Load resolves settings from, in precedence order: environment variables
// (COUNCILSIM_ prefixed, plus the providers' conventional API key names),
// an optional councilsim.yaml in the working directory or $HOME, and
// built-in defaults. A missing config file is not an error.
func Load(cfg *viper.Viper) (*Settings, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(".")
	cfg.AddConfigPath("$HOME/.councilsim")

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	// Providers' conventional key variables work without the prefix.
	_ = cfg.BindEnv("anthropic_api_key", "COUNCILSIM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = cfg.BindEnv("openai_api_key", "COUNCILSIM_OPENAI_API_KEY", "OPENAI_API_KEY")

	cfg.SetDefault("addr", ":8000")
	cfg.SetDefault("provider", ProviderAnthropic)
	cfg.SetDefault("debate_model", "claude-sonnet-4-5-20250929")
	cfg.SetDefault("analysis_model", "claude-sonnet-4-5-20250929")
	cfg.SetDefault("debate_temperature", 0.85)
	cfg.SetDefault("max_tokens_per_turn", 400)
	cfg.SetDefault("analysis_tier_timeout", "120s")
	cfg.SetDefault("persona_timeout", "60s")
	cfg.SetDefault("research_timeout", "50s")
	cfg.SetDefault("log_level", "info")
	cfg.SetDefault("log_format", "text")

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	s := &Settings{
		Addr:                cfg.GetString("addr"),
		Provider:            cfg.GetString("provider"),
		AnthropicAPIKey:     cfg.GetString("anthropic_api_key"),
		OpenAIAPIKey:        cfg.GetString("openai_api_key"),
		DebateModel:         cfg.GetString("debate_model"),
		AnalysisModel:       cfg.GetString("analysis_model"),
		DebateTemperature:   cfg.GetFloat64("debate_temperature"),
		MaxTokensPerTurn:    cfg.GetInt64("max_tokens_per_turn"),
		AnalysisTierTimeout: cfg.GetDuration("analysis_tier_timeout"),
		PersonaTimeout:      cfg.GetDuration("persona_timeout"),
		ResearchTimeout:     cfg.GetDuration("research_timeout"),
		LogLevel:            cfg.GetString("log_level"),
		LogFormat:           cfg.GetString("log_format"),
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	switch s.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", s.Provider)
	}
	if s.DebateTemperature < 0 || s.DebateTemperature > 2 {
		return fmt.Errorf("debate_temperature %v out of range", s.DebateTemperature)
	}
	if s.MaxTokensPerTurn <= 0 {
		return fmt.Errorf("max_tokens_per_turn must be positive")
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (s *Settings) APIKey() string {
	if s.Provider == ProviderOpenAI {
		return s.OpenAIAPIKey
	}
	return s.AnthropicAPIKey
}
