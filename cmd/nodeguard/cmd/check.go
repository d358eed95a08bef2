package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nodeguard/internal/bootstrap"
	"github.com/Aman-CERP/nodeguard/internal/config"
	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
	"github.com/Aman-CERP/nodeguard/internal/node"
	"github.com/Aman-CERP/nodeguard/internal/output"
	"github.com/Aman-CERP/nodeguard/internal/probe"
)

// checkOptions holds the check command flags.
type checkOptions struct {
	jsonOutput bool
	enforce    bool
	verbose    bool
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the bootstrap checks without starting the node",
		Long: `Run the bootstrap checks against this machine and the effective
configuration, without binding any port.

Limits are enforced when the configured bind or publish addresses are not
all loopback or link-local, or when --enforce is given. The command exits
non-zero only when enforced checks fail or a check cannot read the system.`,
		Example: `  # Show check results
  nodeguard check

  # Fail on any violation, as a production node would
  nodeguard check --enforce

  # JSON output for scripting
  nodeguard check --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			debug.SetMemoryLimit(memoryLimitFor(cfg))
			return runCheck(cmd.Context(), cmd.OutOrStdout(), cfg, probe.NewSystem(cfg.InitialHeapBytes()), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.enforce, "enforce", false, "Treat every violation as fatal")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show addresses, platform profile and probe values")

	return cmd
}

// memoryLimitFor mirrors the heap limit serve applies, so the heap check
// sees the configured maximum. A negative value leaves the limit unchanged.
func memoryLimitFor(cfg *config.Config) int64 {
	if maxHeap := cfg.MaxHeapBytes(); maxHeap > 0 {
		return maxHeap
	}
	return -1
}

// CheckReport is the JSON output of the check command.
type CheckReport struct {
	Status   string                  `json:"status"`
	Platform string                  `json:"platform"`
	Enforced bool                    `json:"enforced"`
	Checks   []bootstrap.CheckResult `json:"checks"`
	Warnings []string                `json:"warnings,omitempty"`
	Errors   []string                `json:"errors,omitempty"`
	// Failure is the fatal error the gate returned, if any.
	Failure json.RawMessage `json:"failure,omitempty"`
}

func runCheck(ctx context.Context, out io.Writer, cfg *config.Config, p probe.Probe, opts checkOptions) error {
	platform := bootstrap.CurrentPlatform()

	checks, err := bootstrap.Checks(cfg.Settings(), platform, p)
	if err != nil {
		return err
	}

	bound, err := plannedAddress(ctx, cfg)
	if err != nil {
		return err
	}
	enforce := opts.enforce || bootstrap.EnforceLimits(bound)

	results := bootstrap.Evaluate(enforce, checks)

	// Only critical results make the gate fail; it then produces the same
	// fatal error serve would.
	var gateErr error
	if bootstrap.HasCriticalFailures(results) {
		gate := bootstrap.New(
			bootstrap.WithPlatform(platform),
			bootstrap.WithNodeName(cfg.Node.Name),
			bootstrap.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		gateErr = gate.Run(enforce, checks)
	}

	if opts.jsonOutput {
		if err := writeCheckJSON(out, platform, enforce, results, gateErr); err != nil {
			return err
		}
	} else {
		printCheckResults(out, platform, enforce, bound, p, results, opts.verbose)
	}
	return gateErr
}

// plannedAddress resolves the configured addresses without binding.
func plannedAddress(ctx context.Context, cfg *config.Config) (bootstrap.BoundAddress, error) {
	transport, err := node.Resolve(ctx, cfg.Network.BindHosts, cfg.Network.Port)
	if err != nil {
		return bootstrap.BoundAddress{}, err
	}
	httpAddrs, err := node.Resolve(ctx, cfg.Network.BindHosts, cfg.Network.HTTPPort)
	if err != nil {
		return bootstrap.BoundAddress{}, err
	}
	publish, err := node.PublishAddress(ctx, cfg.Network.PublishHost, transport)
	if err != nil {
		return bootstrap.BoundAddress{}, err
	}
	return bootstrap.BoundAddress{
		Bound:   append(transport, httpAddrs...),
		Publish: publish,
	}, nil
}

func writeCheckJSON(out io.Writer, platform bootstrap.Platform, enforce bool, results []bootstrap.CheckResult, gateErr error) error {
	report := CheckReport{
		Status:   bootstrap.SummaryStatus(results),
		Platform: string(platform),
		Enforced: enforce,
		Checks:   results,
	}
	for _, r := range results {
		switch {
		case r.IsCritical():
			report.Errors = append(report.Errors, r.Name+": "+r.Message)
		case r.Status == bootstrap.StatusWarn:
			report.Warnings = append(report.Warnings, r.Name+": "+r.Message)
		}
	}

	if gateErr != nil {
		failure, err := nerrors.FormatJSON(gateErr)
		if err != nil {
			return err
		}
		report.Failure = failure
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printCheckResults(out io.Writer, platform bootstrap.Platform, enforce bool, bound bootstrap.BoundAddress,
	p probe.Probe, results []bootstrap.CheckResult, verbose bool) {
	w := output.New(out)

	mode := "advisory, bound to loopback or link-local only"
	if enforce {
		mode = "enforced"
	}
	w.Header(fmt.Sprintf("Bootstrap checks (%s, %s)", platform, mode))

	if verbose {
		profile := bootstrap.ProfileFor(platform)
		w.Status("addr", fmt.Sprintf("bound %v, publish %s", bound.Bound, bound.Publish))
		w.Status("os", fmt.Sprintf("file descriptor limit %d, thread check %t, virtual memory check %t",
			profile.FileDescriptorLimit, profile.ThreadLimit, profile.VirtualMemoryLimit))
		for _, line := range probeSummary(p) {
			w.Status("probe", line)
		}
	}
	w.Newline()

	for _, r := range results {
		switch r.Status {
		case bootstrap.StatusPass:
			w.Success(r.Name)
		case bootstrap.StatusWarn:
			w.Warning(r.Name)
			w.Detail(r.Message)
		default:
			w.Error(r.Status.String(), r.Name)
			w.Detail(r.Message)
		}
	}

	w.Newline()
	w.Status("status", bootstrap.SummaryStatus(results))
}

// probeSummary renders the raw probe values; errors show in place of values.
func probeSummary(p probe.Probe) []string {
	render := func(v int64, err error) string {
		if err != nil {
			return "error: " + err.Error()
		}
		return fmt.Sprintf("%d", v)
	}
	locked, lockErr := p.MemoryLocked()
	lockedText := fmt.Sprintf("%t", locked)
	if lockErr != nil {
		lockedText = "error: " + lockErr.Error()
	}

	return []string{
		"initial heap " + render(p.InitialHeapSize()),
		"max heap " + render(p.MaxHeapSize()),
		"max file descriptors " + render(p.MaxFileDescriptors()),
		"memory locked " + lockedText,
		"max threads " + render(p.MaxThreads()),
		"max virtual memory " + render(p.MaxVirtualMemory()),
		fmt.Sprintf("user %s, rlimit infinity %d", p.UserName(), p.RlimInfinity()),
	}
}
