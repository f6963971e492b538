package cli

import (
	"fmt"

	"github.com/harun/invoke-agent/internal/config"
	"github.com/spf13/cobra"
)

func newConfigureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Run interactive configuration wizard",
		Long: `Run an interactive configuration wizard to set up invoke-agent.
The wizard asks for the agent id, alias id, AWS region and profile, then writes
the config file. Values already in the file are offered as defaults;
INVOKE_AGENT_* environment variables and agent flags are not saved.`,
		Args: cobra.NoArgs,
		RunE: a.runConfigure,
	}
}

func (a *app) runConfigure(cmd *cobra.Command, args []string) error {
	// Only the file and the answers are saved, never env or flag overrides
	loader := config.NewLoader(a.cfgFile)
	loader.IgnoreEnv()

	base, err := loader.Load()
	if err != nil {
		return err
	}

	wizard := config.NewWizard(cmd.InOrStdin(), cmd.OutOrStdout())
	cfg, err := wizard.Run(base)
	if err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nConfiguration saved to: %s\n", loader.GetConfigPath())
	fmt.Fprintln(out, "\nYou can now run: invoke-agent '<prompt>'")

	return nil
}
