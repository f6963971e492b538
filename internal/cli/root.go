package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/harun/invoke-agent/internal/config"
	"github.com/harun/invoke-agent/internal/logger"
	"github.com/harun/invoke-agent/internal/metrics"
	"github.com/harun/invoke-agent/internal/tracing"
	"github.com/harun/invoke-agent/pkg/agentruntime"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	version   = "0.1.0"
	usageLine = "Usage: invoke-agent '<prompt>'"
)

// ClientFactory builds the agent runtime client for a resolved configuration
type ClientFactory func(ctx context.Context, cfg agentruntime.BedrockConfig) (agentruntime.Client, error)

// Option customizes Run
type Option func(*app)

// WithClientFactory replaces the Bedrock client, e.g. with an in-memory fake
func WithClientFactory(f ClientFactory) Option {
	return func(a *app) {
		a.newClient = f
	}
}

// WithSessionIDGenerator replaces the random session id generator
func WithSessionIDGenerator(f func() string) Option {
	return func(a *app) {
		a.newSessionID = f
	}
}

// WithStdin sets the reader used by interactive commands
func WithStdin(r io.Reader) Option {
	return func(a *app) {
		a.stdin = r
	}
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	newClient    ClientFactory
	newSessionID func() string

	cfgFile  string
	verbose  bool
	bindings map[string]*pflag.Flag
}

func defaultClientFactory(ctx context.Context, cfg agentruntime.BedrockConfig) (agentruntime.Client, error) {
	client, err := agentruntime.NewBedrockClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Run executes the command line args and returns the process exit code.
// Results go to stdout; failures are printed to stderr as "Error: <message>".
func Run(args []string, stdout, stderr io.Writer, opts ...Option) int {
	a := &app{
		stdin:     os.Stdin,
		stdout:    stdout,
		stderr:    stderr,
		newClient: defaultClientFactory,
	}
	for _, opt := range opts {
		opt(a)
	}

	cmd := newRootCmd(a)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err != nil && !errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke-agent [flags] <prompt>",
		Short: "Send a prompt to an Amazon Bedrock agent",
		Long: `invoke-agent sends a prompt to an Amazon Bedrock agent and prints the
streamed response. Each run uses a new session.

The agent is selected with agent.id and agent.alias_id from the config file,
INVOKE_AGENT_* environment variables or flags. Credentials and region are
resolved by the AWS SDK default chain.

Flags go before the prompt; everything after the prompt is ignored. To send
a prompt that starts with "-" or matches a subcommand name, pass it after "--":

  invoke-agent --agent-id AGENT12345 -- "-5 degrees, is that cold?"`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runInvoke,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	// Stop flag parsing at the prompt so its text is never read as flags
	cmd.Flags().SetInterspersed(false)

	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	a.bindings = make(map[string]*pflag.Flag)

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.invoke-agent/config.json)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr at debug level")
	a.bind("logging.level", pf.Lookup("log-level"))

	// Agent flags, shared with subcommands
	pf.String("agent-id", "", "agent id")
	pf.String("agent-alias-id", "", "agent alias id")
	pf.String("region", "", "AWS region")
	pf.String("profile", "", "AWS shared config profile")
	pf.String("endpoint", "", "agent runtime endpoint override")
	pf.Bool("enable-trace", false, "request trace events from the agent")
	pf.Bool("end-session", false, "end the agent session after this prompt")
	pf.String("decode", "stream", "chunk decoding (stream, chunk)")

	a.bind("agent.id", pf.Lookup("agent-id"))
	a.bind("agent.alias_id", pf.Lookup("agent-alias-id"))
	a.bind("aws.region", pf.Lookup("region"))
	a.bind("aws.profile", pf.Lookup("profile"))
	a.bind("aws.endpoint", pf.Lookup("endpoint"))
	a.bind("agent.enable_trace", pf.Lookup("enable-trace"))
	a.bind("agent.end_session", pf.Lookup("end-session"))
	a.bind("agent.decode", pf.Lookup("decode"))

	cmd.AddCommand(newConfigureCmd(a))
	cmd.AddCommand(newStatusCmd(a))

	return cmd
}

func (a *app) bind(key string, flag *pflag.Flag) {
	a.bindings[key] = flag
}

// newLoader creates a config loader honoring --config and the bound flags
func (a *app) newLoader() *config.Loader {
	loader := config.NewLoader(a.cfgFile)
	for key, flag := range a.bindings {
		loader.BindFlag(key, flag)
	}
	return loader
}

// loadConfig resolves the configuration for the current command line
func (a *app) loadConfig() (*config.Config, error) {
	loader := a.newLoader()

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if a.verbose {
		cfg.Logging.Console = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func (a *app) newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
		Output:    a.stderr,
	})
}

func (a *app) runInvoke(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.stdout, usageLine)
		return errUsage
	}
	prompt := args[0]

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := a.newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	if len(args) > 1 {
		log.Debug().Int("ignored_args", len(args)-1).Msg("Using only the first argument as the prompt")
	}

	ctx := cmd.Context()
	if cfg.Tracing.Enabled {
		if err := tracing.InitOpenTelemetry(ctx, tracing.Options{
			ServiceName:  cfg.Tracing.ServiceName,
			OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		}); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			defer func() {
				if err := tracing.ShutdownOpenTelemetry(context.Background()); err != nil {
					log.Warn().Err(err).Msg("Failed to flush traces")
				}
			}()
		}
	}

	client, err := a.newClient(ctx, agentruntime.BedrockConfig{
		Region:   cfg.AWS.Region,
		Profile:  cfg.AWS.Profile,
		Endpoint: cfg.AWS.Endpoint,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create agent runtime client")
		return err
	}

	m := metrics.NewMetrics()
	invoker, err := agentruntime.NewInvoker(agentruntime.Config{
		Client:       client,
		AgentID:      cfg.Agent.ID,
		AgentAliasID: cfg.Agent.AliasID,
		Decode:       agentruntime.DecodeMode(cfg.Agent.Decode),
		EnableTrace:  cfg.Agent.EnableTrace,
		EndSession:   cfg.Agent.EndSession,
		Logger:       log.With().Str("component", "agentruntime").Logger(),
		Metrics:      m,
		NewSessionID: a.newSessionID,
	})
	if err != nil {
		return err
	}

	result, err := invoker.Invoke(ctx, prompt)
	writeMetrics(m, cfg.Metrics.Textfile, log)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, result.Text)
	return nil
}

func writeMetrics(m *metrics.Metrics, path string, log *logger.Logger) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to write metrics")
		return
	}
	log.Info().Str("path", path).Msg("Metrics written")
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}
