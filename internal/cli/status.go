package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the resolved configuration",
		Long: `Show where the configuration comes from, the agent that would be invoked
and whether the configuration is complete. No request is sent.`,
		Args: cobra.NoArgs,
		RunE: a.runStatus,
	}
}

func (a *app) runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	loader := a.newLoader()
	configPath := loader.GetConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "Config file: %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Config file: %s (not found)\n", configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Agent ID: %s\n", orUnset(cfg.Agent.ID))
	fmt.Fprintf(out, "Agent alias ID: %s\n", orUnset(cfg.Agent.AliasID))
	fmt.Fprintf(out, "Region: %s\n", orDefault(cfg.AWS.Region))
	fmt.Fprintf(out, "Profile: %s\n", orDefault(cfg.AWS.Profile))
	if cfg.AWS.Endpoint != "" {
		fmt.Fprintf(out, "Endpoint: %s\n", cfg.AWS.Endpoint)
	}
	fmt.Fprintf(out, "Decode: %s\n", cfg.Agent.Decode)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(out, "Status: not ready")
		return &ExitCodeError{Code: 1, Err: err}
	}
	fmt.Fprintln(out, "Status: ready")
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "(SDK default)"
	}
	return s
}
