package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolateEnv points user config at a temp dir and clears NODEGUARD_* overrides.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"NODEGUARD_NODE_NAME", "NODEGUARD_DATA_PATH", "NODEGUARD_BIND_HOSTS",
		"NODEGUARD_PUBLISH_HOST", "NODEGUARD_PORT", "NODEGUARD_HTTP_PORT",
		"NODEGUARD_MEMORY_LOCK", "NODEGUARD_MINIMUM_MASTER_NODES",
		"NODEGUARD_HEAP_INITIAL_SIZE", "NODEGUARD_HEAP_MAX_SIZE",
		"NODEGUARD_LOG_LEVEL", "NODEGUARD_LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

// projectDir writes a .nodeguard.yaml with the given body into a temp dir.
func projectDir(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nodeguard.yaml"), []byte(body), 0o644))
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
