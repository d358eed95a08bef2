package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
	"github.com/Aman-CERP/nodeguard/internal/probe"
)

// FailedMessage is the headline of an aggregated bootstrap failure.
const FailedMessage = "bootstrap checks failed"

// Recorder observes gate runs. internal/metrics provides a Prometheus implementation.
type Recorder interface {
	ObserveRun(enforced bool, checks int)
	ObserveViolation(check string)
}

// Gate runs a check catalog and applies the enforcement decision.
type Gate struct {
	logger   *slog.Logger
	nodeName string
	platform Platform
	recorder Recorder
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger that receives advisory warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithNodeName sets the node name attached to every warning.
func WithNodeName(name string) Option {
	return func(g *Gate) {
		g.nodeName = name
	}
}

// WithPlatform overrides the platform used to build the catalog in Validate.
func WithPlatform(platform Platform) Option {
	return func(g *Gate) {
		g.platform = platform
	}
}

// WithRecorder sets a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Gate) {
		g.recorder = r
	}
}

// New creates a Gate with the given options.
func New(opts ...Option) *Gate {
	g := &Gate{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		platform: CurrentPlatform(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validate builds the catalog for settings and the gate's platform, derives
// enforcement from bound, and runs the gate.
func Validate(settings Settings, bound BoundAddress, p probe.Probe, opts ...Option) error {
	g := New(opts...)
	checks, err := Checks(settings, g.platform, p)
	if err != nil {
		return err
	}
	return g.Run(EnforceLimits(bound), checks)
}

// violation is one failed check, kept with its name for logging and metrics.
type violation struct {
	check   string
	message string
}

// Run evaluates every check in order. With no violations it returns nil.
// When enforce is false each violation is logged as a warning and Run
// returns nil. When enforce is true Run returns a fatal *errors.NodeError
// whose Causes hold one error per violation, in catalog order.
//
// A check whose probe fails returns a fatal configuration error regardless
// of enforce.
func (g *Gate) Run(enforce bool, checks []Check) error {
	if g.recorder != nil {
		g.recorder.ObserveRun(enforce, len(checks))
	}

	violations, err := collect(checks)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}

	if g.recorder != nil {
		for _, v := range violations {
			g.recorder.ObserveViolation(v.check)
		}
	}

	if !enforce {
		for _, v := range violations {
			g.logger.Warn(v.message,
				slog.String("check", v.check),
				slog.String("node", g.nodeName))
		}
		return nil
	}

	return fatal(g.nodeName, violations)
}

func collect(checks []Check) ([]violation, error) {
	var violations []violation
	for _, c := range checks {
		failed, err := c.Check()
		if err != nil {
			return nil, nerrors.New(nerrors.ErrCodeCheckConfigInvalid,
				fmt.Sprintf("bootstrap check [%s] could not read its probe: %v", c.Name(), err), err).
				WithDetail("check", c.Name())
		}
		if failed {
			violations = append(violations, violation{check: c.Name(), message: c.Message()})
		}
	}
	return violations, nil
}

func fatal(nodeName string, violations []violation) *nerrors.NodeError {
	lines := make([]string, 0, 1+len(violations))
	lines = append(lines, FailedMessage)
	causes := make([]error, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, v.message)
		causes = append(causes, nerrors.New(nerrors.ErrCodeCheckViolation, v.message, nil).
			WithDetail("check", v.check))
	}

	err := nerrors.New(nerrors.ErrCodeBootstrapFailed, strings.Join(lines, "\n"), nil).
		WithCauses(causes...).
		WithSuggestion("fix the listed limits, or bind only to loopback addresses for local development")
	if nodeName != "" {
		err = err.WithDetail("node", nodeName)
	}
	return err
}
