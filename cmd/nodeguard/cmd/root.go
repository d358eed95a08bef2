// Package cmd provides the CLI commands for nodeguard.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nodeguard/internal/config"
	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
	"github.com/Aman-CERP/nodeguard/internal/logging"
	"github.com/Aman-CERP/nodeguard/internal/profiling"
	"github.com/Aman-CERP/nodeguard/pkg/version"
)

// Global flags
var (
	debugMode      bool
	configDir      string
	loggingCleanup func()
)

// Profiling flags
var (
	profileOpts    profiling.Options
	profileSession *profiling.Session
)

// NewRootCmd creates the root command for the nodeguard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodeguard",
		Short: "Node server with a bootstrap resource gate",
		Long: `nodeguard runs a node whose startup is guarded by bootstrap checks on
heap sizing, file descriptors, memory locking, threads, virtual memory and
cluster quorum settings.

When the node binds only loopback or link-local addresses, failed checks are
logged as warnings. Otherwise any failed check aborts startup.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("nodeguard version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.nodeguard/logs/")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding .nodeguard.yaml (default: project root)")

	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write heap profile to file on exit")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startLoggingAndProfiling
	cmd.PersistentPostRunE = stopLoggingAndProfiling

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error for the user.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

// printError writes fatal and uncoded errors as the enumerated CLI
// diagnostic. Other coded errors use the user format, which adds category
// and severity under --debug.
func printError(w io.Writer, err error) {
	if nerrors.IsFatal(err) || nerrors.GetCode(err) == "" {
		_, _ = fmt.Fprint(w, nerrors.FormatForCLI(err))
		return
	}
	_, _ = fmt.Fprintln(w, nerrors.FormatForUser(err, debugMode))
}

// startLoggingAndProfiling enables debug file logging and profiling if requested.
func startLoggingAndProfiling(_ *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Debug("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}

	if profileOpts.Enabled() {
		session, err := profiling.Start(profileOpts)
		if err != nil {
			return nerrors.InternalError("failed to start profiling", err)
		}
		profileSession = session
	}
	return nil
}

// stopLoggingAndProfiling runs after a successful command. Serve stops on
// a signal, which returns normally, so profiles are written then too.
func stopLoggingAndProfiling(_ *cobra.Command, _ []string) error {
	var err error
	if profileSession != nil {
		if stopErr := profileSession.Stop(); stopErr != nil {
			err = nerrors.InternalError("failed to write profiles", stopErr)
		}
		slog.Debug("Profiling stopped", slog.String("heap_in_use", profiling.HeapInUse()))
		profileSession = nil
	}
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// resolveRoot returns --config-dir, or the project root of the working directory.
func resolveRoot() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		return cwd, nil
	}
	return root, nil
}

// loadConfig loads the effective configuration for the resolved root.
func loadConfig() (*config.Config, string, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(root)
	if ne, ok := err.(*nerrors.NodeError); ok {
		return nil, "", ne.WithDetail("root", root).
			WithSuggestion("Fix the setting in " + config.ProjectFile + " or the matching NODEGUARD_ variable")
	}
	if err != nil {
		return nil, "", nerrors.ConfigError(fmt.Sprintf("failed to load configuration: %v", err), err).
			WithDetail("root", root)
	}
	return cfg, root, nil
}

// commandLogger returns the debug logger when --debug is set, otherwise a
// logger built from the logging section of cfg writing to stderr.
func commandLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func(), error) {
	if debugMode {
		return slog.Default(), func() {}, nil
	}
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.FilePath = cfg.Logging.File
	lc.Stderr = cmd.ErrOrStderr()
	return logging.Setup(lc)
}
