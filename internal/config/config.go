package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config represents the invoke-agent configuration
type Config struct {
	// Target agent
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// AWS client settings
	AWS AWSConfig `json:"aws" mapstructure:"aws"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Tracing
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`
}

// AgentConfig identifies the agent to invoke and how to read its reply
type AgentConfig struct {
	ID          string `json:"id" mapstructure:"id"`
	AliasID     string `json:"alias_id" mapstructure:"alias_id"`
	EnableTrace bool   `json:"enable_trace" mapstructure:"enable_trace"`
	EndSession  bool   `json:"end_session" mapstructure:"end_session"`
	Decode      string `json:"decode" mapstructure:"decode"` // stream, chunk
}

// AWSConfig overrides parts of the SDK's default configuration chain
type AWSConfig struct {
	Region   string `json:"region" mapstructure:"region"`
	Profile  string `json:"profile" mapstructure:"profile"`
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	// Textfile is written after each invocation when set
	Textfile string `json:"textfile" mapstructure:"textfile"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled      bool   `json:"enabled" mapstructure:"enabled"`
	ServiceName  string `json:"service_name" mapstructure:"service_name"`
	OTLPEndpoint string `json:"otlp_endpoint" mapstructure:"otlp_endpoint"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Decode: "stream",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   10,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
		Tracing: TracingConfig{
			ServiceName: "invoke-agent",
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid and returns the first problem found
func (c *Config) Validate() error {
	errs := NewValidator().ValidateConfig(c)
	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
