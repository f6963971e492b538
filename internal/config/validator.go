package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// TestAliasID is the built-in alias that targets an agent's working draft
const TestAliasID = "TSTALIASID"

var (
	agentIDPattern = regexp.MustCompile(`^[0-9a-zA-Z]{10}$`)
	regionPattern  = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]*)?-[a-z]+-\d+$`)
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAgentID validates a Bedrock agent id
func (v *Validator) ValidateAgentID(id string) error {
	if id == "" {
		return fmt.Errorf("agent id is required (set agent.id, INVOKE_AGENT_AGENT_ID or --agent-id)")
	}
	if !agentIDPattern.MatchString(id) {
		return fmt.Errorf("invalid agent id %q (must be 10 alphanumeric characters)", id)
	}
	return nil
}

// ValidateAgentAliasID validates a Bedrock agent alias id
func (v *Validator) ValidateAgentAliasID(id string) error {
	if id == "" {
		return fmt.Errorf("agent alias id is required (set agent.alias_id, INVOKE_AGENT_AGENT_ALIAS_ID or --agent-alias-id)")
	}
	if id == TestAliasID {
		return nil
	}
	if !agentIDPattern.MatchString(id) {
		return fmt.Errorf("invalid agent alias id %q (must be 10 alphanumeric characters or %s)", id, TestAliasID)
	}
	return nil
}

// ValidateRegion validates an AWS region name; empty defers to the SDK
func (v *Validator) ValidateRegion(region string) error {
	if region == "" {
		return nil
	}
	if !regionPattern.MatchString(region) {
		return fmt.Errorf("invalid AWS region: %s", region)
	}
	return nil
}

// ValidateEndpoint validates an endpoint override; empty defers to the SDK
func (v *Validator) ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint URL: %s", endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint scheme %q (must be http or https)", u.Scheme)
	}
	return nil
}

// ValidateDecodeMode validates the chunk decode mode
func (v *Validator) ValidateDecodeMode(mode string) error {
	if mode == "" {
		return nil // Use default
	}

	validModes := []string{"stream", "chunk"}
	for _, valid := range validModes {
		if mode == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid decode mode: %s (must be one of: %s)", mode, strings.Join(validModes, ", "))
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateAgentID(cfg.Agent.ID); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateAgentAliasID(cfg.Agent.AliasID); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateDecodeMode(cfg.Agent.Decode); err != nil {
		errors = append(errors, err)
	}

	if err := v.ValidateRegion(cfg.AWS.Region); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateEndpoint(cfg.AWS.Endpoint); err != nil {
		errors = append(errors, fmt.Errorf("aws.endpoint: %w", err))
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}
	if cfg.Logging.MaxSize < 0 {
		errors = append(errors, fmt.Errorf("logging.max_size must be >= 0"))
	}
	if cfg.Logging.MaxAge < 0 {
		errors = append(errors, fmt.Errorf("logging.max_age must be >= 0"))
	}

	if cfg.Tracing.Enabled && cfg.Tracing.OTLPEndpoint != "" {
		if err := v.ValidateEndpoint(cfg.Tracing.OTLPEndpoint); err != nil {
			errors = append(errors, fmt.Errorf("tracing.otlp_endpoint: %w", err))
		}
	}

	return errors
}
