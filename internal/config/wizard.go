package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a new configuration wizard reading answers from in
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run runs the interactive configuration wizard starting from base.
// Pressing Enter keeps the value shown in brackets.
func (w *Wizard) Run(base *Config) (*Config, error) {
	cfg := DefaultConfig()
	if base != nil {
		copied := *base
		cfg = &copied
	}
	validator := NewValidator()

	fmt.Fprintln(w.out, "=== invoke-agent Configuration Wizard ===")
	fmt.Fprintln(w.out)

	fmt.Fprintln(w.out, "Agent:")
	id, err := w.askValid("Agent ID", cfg.Agent.ID, validator.ValidateAgentID)
	if err != nil {
		return nil, err
	}
	cfg.Agent.ID = id

	aliasID, err := w.askValid("Agent alias ID", cfg.Agent.AliasID, validator.ValidateAgentAliasID)
	if err != nil {
		return nil, err
	}
	cfg.Agent.AliasID = aliasID

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "AWS (press Enter to use the SDK defaults):")
	region, err := w.askValid("Region", cfg.AWS.Region, validator.ValidateRegion)
	if err != nil {
		return nil, err
	}
	cfg.AWS.Region = region

	profile, err := w.ask("Shared config profile", cfg.AWS.Profile)
	if err != nil {
		return nil, err
	}
	cfg.AWS.Profile = profile

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Logging:")
	level, err := w.ask("Log level (debug/info/warn/error)", cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateLogLevel(level); err != nil {
		fmt.Fprintf(w.out, "Warning: %v, using default (info)\n", err)
		level = "info"
	}
	cfg.Logging.Level = level

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete!")

	return cfg, nil
}

// ask prompts once and returns the answer, or current when the answer is empty
func (w *Wizard) ask(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(w.out, "%s: ", label)
	}

	line, err := w.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}

// askValid prompts until validate accepts the answer
func (w *Wizard) askValid(label, current string, validate func(string) error) (string, error) {
	for {
		answer, err := w.ask(label, current)
		if err != nil {
			return "", err
		}
		if err := validate(answer); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}
		return answer, nil
	}
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		// Accept a final answer without a trailing newline
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("configuration input ended early: %w", err)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
