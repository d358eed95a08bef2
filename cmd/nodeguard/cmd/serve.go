package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
	"github.com/Aman-CERP/nodeguard/internal/node"
)

func newServeCmd() *cobra.Command {
	var pidFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the node",
		Long: `Start the node. Startup takes the data path lock, binds the transport
and HTTP listeners, runs the bootstrap checks, and only then serves
/healthz and /metrics.

If limits are enforced and any check fails, nothing is served and every
failed check is listed.`,
		Example: `  # Start with the project configuration
  nodeguard serve

  # Write a PID file
  nodeguard serve --pidfile /run/nodeguard.pid`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, pidFile)
		},
	}

	cmd.Flags().StringVar(&pidFile, "pidfile", "", "Write the process ID to this file once startup checks pass")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, pidFile string) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := commandLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []node.Option{node.WithLogger(logger)}
	if pidFile != "" {
		opts = append(opts, node.WithPIDFile(pidFile))
	}

	return runNode(ctx, logger, node.New(cfg, root, opts...))
}

// runNode starts n and logs a returned error. Errors after the node began
// serving are logged as a stop rather than a failed start.
func runNode(ctx context.Context, logger *slog.Logger, n *node.Node) error {
	err := n.Start(ctx)
	if err == nil {
		return nil
	}

	msg := "node failed to start"
	select {
	case <-n.Ready():
		msg = "node stopped with error"
	default:
	}

	attrs := make([]any, 0, 8)
	for k, v := range nerrors.FormatForLog(err) {
		attrs = append(attrs, slog.Any(k, v))
	}
	logger.Error(msg, attrs...)
	return err
}
