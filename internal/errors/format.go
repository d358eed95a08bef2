package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForUser returns a user-friendly error message.
// If debug is true, includes category and severity.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	ne, ok := err.(*NodeError)
	if !ok {
		// Standard error - just return message
		return err.Error()
	}

	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(ne.Message)
	sb.WriteString("\n")

	if ne.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(ne.Suggestion)
		sb.WriteString("\n")
	}

	if debug {
		sb.WriteString(fmt.Sprintf("\nCategory: %s, Severity: %s", ne.Category, ne.Severity))
	}

	// Error code for reference
	sb.WriteString(fmt.Sprintf("\n[%s]", ne.Code))

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
// Aggregate errors list every sub-cause on its own numbered line.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	ne, ok := err.(*NodeError)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	headline, _, _ := strings.Cut(ne.Message, "\n")
	sb.WriteString(fmt.Sprintf("Error: %s\n", headline))

	causes := CauseMessages(ne)
	if len(causes) == 0 && headline != ne.Message {
		// Multi-line message without structured causes
		for _, line := range strings.Split(ne.Message, "\n")[1:] {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}
	for i, c := range causes {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, c))
	}

	if ne.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", ne.Suggestion))
	}

	sb.WriteString(fmt.Sprintf("  Code: %s\n", ne.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Causes     []string          `json:"causes,omitempty"`
}

// FormatJSON returns a JSON representation of the error.
// Suitable for machine consumption and structured logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	ne, ok := err.(*NodeError)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       ne.Code,
		Message:    ne.Message,
		Category:   string(ne.Category),
		Severity:   string(ne.Severity),
		Details:    ne.Details,
		Suggestion: ne.Suggestion,
		Causes:     CauseMessages(ne),
	}

	if ne.Cause != nil {
		je.Cause = ne.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	ne, ok := err.(*NodeError)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": ne.Code,
		"message":    ne.Message,
		"category":   string(ne.Category),
		"severity":   string(ne.Severity),
	}

	if ne.Cause != nil {
		result["cause"] = ne.Cause.Error()
	}

	if causes := CauseMessages(ne); len(causes) > 0 {
		result["causes"] = causes
	}

	if ne.Suggestion != "" {
		result["suggestion"] = ne.Suggestion
	}

	for k, v := range ne.Details {
		result["detail_"+k] = v
	}

	return result
}
