package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. INVOKE_AGENT_AGENT_ID
const EnvPrefix = "INVOKE_AGENT"

// Keys lists every configuration key that can be set from env or flags
var Keys = []string{
	"agent.id",
	"agent.alias_id",
	"agent.enable_trace",
	"agent.end_session",
	"agent.decode",
	"aws.region",
	"aws.profile",
	"aws.endpoint",
	"logging.level",
	"logging.file",
	"logging.console",
	"logging.max_size",
	"logging.max_age",
	"logging.compress",
	"logging.redaction",
	"metrics.textfile",
	"tracing.enabled",
	"tracing.service_name",
	"tracing.otlp_endpoint",
}

// Loader handles configuration loading
type Loader struct {
	configPath string
	flags      map[string]*pflag.Flag
	ignoreEnv  bool
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		flags:      make(map[string]*pflag.Flag),
	}
}

// BindFlag makes a command-line flag override key when the flag is set
func (l *Loader) BindFlag(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	l.flags[key] = flag
}

// IgnoreEnv makes Load skip INVOKE_AGENT_* environment overrides
func (l *Loader) IgnoreEnv() {
	l.ignoreEnv = true
}

// Load resolves the configuration. Precedence: flags > env > file > defaults.
// A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v, DefaultConfig())

	if !l.ignoreEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		for _, key := range Keys {
			if err := v.BindEnv(key); err != nil {
				return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
			}
		}
	}

	for key, flag := range l.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag for %s: %w", key, err)
		}
	}

	configPath := l.GetConfigPath()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// defaults, env and flags only
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := ValidateSchema(data); err != nil {
				return nil, err
			}
			if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to file
func (l *Loader) Save(cfg *Config) error {
	configPath := l.GetConfigPath()
	if configPath == "" {
		return fmt.Errorf("failed to determine config path")
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")

	v.Set("agent", cfg.Agent)
	v.Set("aws", cfg.AWS)
	v.Set("logging", cfg.Logging)
	v.Set("metrics", cfg.Metrics)
	v.Set("tracing", cfg.Tracing)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".invoke-agent", "config.json")
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("agent.id", cfg.Agent.ID)
	v.SetDefault("agent.alias_id", cfg.Agent.AliasID)
	v.SetDefault("agent.enable_trace", cfg.Agent.EnableTrace)
	v.SetDefault("agent.end_session", cfg.Agent.EndSession)
	v.SetDefault("agent.decode", cfg.Agent.Decode)

	v.SetDefault("aws.region", cfg.AWS.Region)
	v.SetDefault("aws.profile", cfg.AWS.Profile)
	v.SetDefault("aws.endpoint", cfg.AWS.Endpoint)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_age", cfg.Logging.MaxAge)
	v.SetDefault("logging.compress", cfg.Logging.Compress)
	v.SetDefault("logging.redaction", cfg.Logging.Redaction)

	v.SetDefault("metrics.textfile", cfg.Metrics.Textfile)

	v.SetDefault("tracing.enabled", cfg.Tracing.Enabled)
	v.SetDefault("tracing.service_name", cfg.Tracing.ServiceName)
	v.SetDefault("tracing.otlp_endpoint", cfg.Tracing.OTLPEndpoint)
}
