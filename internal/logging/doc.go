// Package logging builds the process slog.Logger. Records go to stderr, and
// with --debug or logging.file they are also written as JSON to a
// size-rotated file under ~/.nodeguard/logs/.
package logging
