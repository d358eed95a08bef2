package bootstrap

import (
	"fmt"
	"strings"
)

// CheckStatus represents the outcome of a single check in a report.
type CheckStatus int

const (
	// StatusPass indicates the check passed.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a violation that does not block startup.
	StatusWarn
	// StatusFail indicates a violation that blocks startup.
	StatusFail
	// StatusError indicates the check could not read its probe.
	StatusError
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status in lower case for JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText decodes a lower case status written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pass":
		*s = StatusPass
	case "warn":
		*s = StatusWarn
	case "fail":
		*s = StatusFail
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// CheckResult holds the result of one check for display.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// IsCritical returns true if this result blocks startup.
func (r CheckResult) IsCritical() bool {
	return r.Status == StatusFail || r.Status == StatusError
}

// Evaluate runs every check and reports each outcome without applying the
// gate. Violations are StatusFail when enforce is true, StatusWarn otherwise.
// Unlike Run, a probe error does not stop evaluation of later checks.
func Evaluate(enforce bool, checks []Check) []CheckResult {
	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		r := CheckResult{Name: c.Name(), Status: StatusPass}
		failed, err := c.Check()
		switch {
		case err != nil:
			r.Status = StatusError
			r.Message = fmt.Sprintf("could not read probe: %v", err)
		case failed && enforce:
			r.Status = StatusFail
			r.Message = c.Message()
		case failed:
			r.Status = StatusWarn
			r.Message = c.Message()
		}
		results = append(results, r)
	}
	return results
}

// HasCriticalFailures returns true if any result blocks startup.
func HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns "ready", "ready_with_warnings" or "failed".
func SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status == StatusWarn {
			hasWarnings = true
		}
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}
