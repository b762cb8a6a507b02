package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"intakebot/pkg/agent"
	"intakebot/pkg/agent/middleware/metrics"
	"intakebot/pkg/config"
	"intakebot/pkg/intake"
	"intakebot/pkg/logx"
	"intakebot/pkg/prompts"
)

type chatOptions struct {
	contextPath string
	configPath  string
	envFile     string
	restorePath string
	promptPath  string
	secretsDir  string
	metricsAddr string
	logFile     string
	outputDir   string
	demo        bool
	offline     bool
	debug       bool
}

var chatOpts chatOptions

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive requirements-gathering session",
	Long: `chat opens an interactive session. Type 'status' for progress, 'export' to
write the session to intake_state.json, and 'quit' or 'exit' to stop.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	f := chatCmd.Flags()
	f.BoolVar(&chatOpts.demo, "demo", false, "use a sample intake-form context")
	f.StringVar(&chatOpts.contextPath, "context", "", "YAML or JSON file with the intake-form context")
	f.StringVar(&chatOpts.configPath, "config", "", "JSON session config file")
	f.StringVar(&chatOpts.envFile, "env", "", "dotenv file to load (default ./.env)")
	f.StringVar(&chatOpts.restorePath, "restore", "", "resume from an exported state file")
	f.StringVar(&chatOpts.promptPath, "prompt", "", "override the base system instruction file")
	f.StringVar(&chatOpts.secretsDir, "secrets-dir", ".", "directory holding "+config.SecretsFileName)
	f.StringVar(&chatOpts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	f.StringVar(&chatOpts.logFile, "log-file", "", "write logs to this file instead of stderr")
	f.StringVar(&chatOpts.outputDir, "output-dir", ".", "directory for exported state and requirements")
	f.BoolVar(&chatOpts.offline, "offline", false, "use a scripted assistant instead of a real model")
	f.BoolVar(&chatOpts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	opts := chatOpts

	if opts.debug {
		logx.SetDebugConfig(true)
	}
	if opts.logFile != "" {
		logFile, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = logFile.Close() }()
		logx.SetOutput(logFile)
		defer logx.SetOutput(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	usage := metrics.NewInternalRecorder()
	var recorder metrics.Recorder = usage
	if opts.metricsAddr != "" {
		recorder = metrics.Multi(usage, metrics.NewPrometheusRecorder())
		startMetricsServer(ctx, opts.metricsAddr, logx.NewLogger("metrics"))
	}

	orch, err := buildOrchestrator(&opts, recorder)
	if err != nil {
		reportStartupError(cmd.ErrOrStderr(), err)
		return err
	}

	shell := NewShell(orch, cmd.InOrStdin(), cmd.OutOrStdout(), usage, opts.outputDir)
	shell.restored = opts.restorePath != ""
	return shell.Run(ctx)
}

// buildOrchestrator resolves configuration, credentials and collaborators and
// returns a new or restored session.
func buildOrchestrator(opts *chatOptions, recorder metrics.Recorder) (*intake.Orchestrator, error) {
	var envPaths []string
	if opts.envFile != "" {
		envPaths = append(envPaths, opts.envFile)
	}
	if err := config.LoadDotEnv(envPaths...); err != nil {
		return nil, err
	}

	cfg, err := config.LoadSessionConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	initiating, err := resolveInitiatingContext(opts.contextPath, opts.demo)
	if err != nil {
		return nil, err
	}

	var exported *intake.ExportedState
	if opts.restorePath != "" {
		exported, err = readExportedState(opts.restorePath)
		if err != nil {
			return nil, err
		}
		if initiating == nil && exported.Conversation != nil {
			initiating = exported.Conversation.Layer0Context
		}
	}

	factory := agent.NewClientFactory(recorder, nil)
	var service *agent.CompletionService
	if opts.offline {
		service = agent.NewCompletionService(factory.Wrap(newOfflineClient()), cfg)
	} else {
		if err := unlockSecrets(opts.secretsDir); err != nil {
			return nil, err
		}
		client, err := factory.CreateClient(cfg)
		if err != nil {
			return nil, err
		}
		service = agent.NewCompletionService(client, cfg)
	}

	promptSource := prompts.Resolve(opts.promptPath, ".")

	if exported != nil {
		return intake.RestoreFromState(*exported, cfg, promptSource, service, initiating)
	}
	return intake.New(cfg, promptSource, service, initiating)
}

func readExportedState(path string) (*intake.ExportedState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var exported intake.ExportedState
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return &exported, nil
}

// reportStartupError prints remediation hints for the fatal startup errors.
func reportStartupError(w io.Writer, err error) {
	var cfgErr *config.ConfigurationError
	var promptErr *prompts.PromptLoadError

	switch {
	case errors.As(err, &promptErr):
		fmt.Fprintf(w, "File Error: %v\n", err)
	case errors.As(err, &cfgErr):
		fmt.Fprintf(w, "Configuration Error: %v\n\n", err)
		fmt.Fprintln(w, "Please ensure you have set up your .env file with the key for your model, e.g.:")
		fmt.Fprintf(w, "  %s=your-api-key-here\n", config.EnvAnthropicAPIKey)
		fmt.Fprintln(w, "or run 'intake secrets init' to create an encrypted secrets file.")
	}
}
