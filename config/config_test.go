package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8000", s.Addr)
	assert.Equal(t, ProviderAnthropic, s.Provider)
	assert.Equal(t, 0.85, s.DebateTemperature)
	assert.Equal(t, int64(400), s.MaxTokensPerTurn)
	assert.Equal(t, 120*time.Second, s.AnalysisTierTimeout)
	assert.Equal(t, 50*time.Second, s.ResearchTimeout)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COUNCILSIM_PROVIDER", "openai")
	t.Setenv("COUNCILSIM_ADDR", ":9100")
	t.Setenv("COUNCILSIM_MAX_TOKENS_PER_TURN", "600")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, s.Provider)
	assert.Equal(t, ":9100", s.Addr)
	assert.Equal(t, int64(600), s.MaxTokensPerTurn)
	assert.Equal(t, "sk-test", s.OpenAIAPIKey)
	assert.Equal(t, "sk-test", s.APIKey())
}

func TestLoad_ConventionalAnthropicKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	s, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test", s.APIKey())
}

func TestLoad_Validation(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		t.Setenv("COUNCILSIM_PROVIDER", "gemini")
		_, err := Load(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("temperature out of range", func(t *testing.T) {
		t.Setenv("COUNCILSIM_DEBATE_TEMPERATURE", "3.5")
		_, err := Load(viper.New())
		require.Error(t, err)
	})

	t.Run("non-positive token budget", func(t *testing.T) {
		t.Setenv("COUNCILSIM_MAX_TOKENS_PER_TURN", "0")
		_, err := Load(viper.New())
		require.Error(t, err)
	})
}
