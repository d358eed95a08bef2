// Package output formats CLI output. Styles apply only when the destination
// is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette, as 256-color codes.
const (
	ColorGreen  = "154"
	ColorYellow = "220"
	ColorRed    = "196"
	ColorGray   = "245"
	ColorWhite  = "255"
)

// Styles holds the styles used for each kind of line.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles returns styles that render text unchanged.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Header: plain, Success: plain, Warning: plain, Error: plain, Dim: plain}
}

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer. Color is enabled when out is a terminal and NO_COLOR
// is unset.
func New(out io.Writer) *Writer {
	return NewWithColor(out, IsTTY(out) && !DetectNoColor())
}

// NewWithColor creates a Writer with color explicitly on or off.
func NewWithColor(out io.Writer, useColor bool) *Writer {
	styles := NoColorStyles()
	if useColor {
		styles = DefaultStyles()
	}
	return &Writer{out: out, styles: styles}
}

// Header prints a bold section header.
func (w *Writer) Header(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(msg))
}

// Status prints msg after a dimmed name column. Errors from writing are
// ignored for console output.
func (w *Writer) Status(name, msg string) {
	if name == "" {
		w.line(strings.Repeat(" ", 7), msg)
		return
	}
	w.line(label(w.styles.Dim, name), msg)
}

func (w *Writer) line(prefix, msg string) {
	_, _ = fmt.Fprintf(w.out, "%s%s\n", prefix, msg)
}

// Success prints a message labelled PASS.
func (w *Writer) Success(msg string) {
	w.line(label(w.styles.Success, "PASS"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a message labelled WARN.
func (w *Writer) Warning(msg string) {
	w.line(label(w.styles.Warning, "WARN"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints a message labelled with the given failure label, FAIL if empty.
func (w *Writer) Error(name, msg string) {
	if name == "" {
		name = "FAIL"
	}
	w.line(label(w.styles.Error, name), msg)
}

// Detail prints a dimmed, indented continuation line.
func (w *Writer) Detail(msg string) {
	w.line(strings.Repeat(" ", 7), w.styles.Dim.Render(msg))
}

// Code prints an indented block between blank lines.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// label renders name in style, padded to a fixed-width column. Padding is
// added after rendering so escape codes do not count toward the width.
func label(style lipgloss.Style, name string) string {
	return style.Render(name) + strings.Repeat(" ", max(1, 7-len(name)))
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor reports whether NO_COLOR is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
