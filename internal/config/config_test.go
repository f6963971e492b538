package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Agent.ID = "AGENT12345"
	cfg.Agent.AliasID = "TSTALIASID"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.Agent.ID)
	assert.Empty(t, cfg.Agent.AliasID)
	assert.Equal(t, "stream", cfg.Agent.Decode)
	assert.False(t, cfg.Agent.EnableTrace)
	assert.Empty(t, cfg.AWS.Region)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Console)
	assert.True(t, cfg.Logging.Redaction)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "invoke-agent", cfg.Tracing.ServiceName)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing agent id", func(t *testing.T) {
		cfg := validConfig()
		cfg.Agent.ID = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent id is required")
	})

	t.Run("placeholder agent id", func(t *testing.T) {
		cfg := validConfig()
		cfg.Agent.ID = "your-agent-id"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid agent id")
	})

	t.Run("missing alias id", func(t *testing.T) {
		cfg := validConfig()
		cfg.Agent.AliasID = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent alias id is required")
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Level = "verbose"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent id is required")
		assert.Contains(t, err.Error(), "agent alias id is required")
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestConfigString(t *testing.T) {
	cfg := validConfig()

	s := cfg.String()
	assert.Contains(t, s, `"id": "AGENT12345"`)
	assert.Contains(t, s, `"alias_id": "TSTALIASID"`)
}
