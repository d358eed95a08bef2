package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
)

// isolate points the user config at an empty temp dir and clears env overrides.
func isolate(t *testing.T) {
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

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.NotEmpty(t, cfg.Node.Name)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Network.BindHosts)
	assert.Equal(t, 9300, cfg.Network.Port)
	assert.Equal(t, 9200, cfg.Network.HTTPPort)
	assert.False(t, cfg.Bootstrap.MemoryLock)
	assert.Nil(t, cfg.Discovery.MinimumMasterNodes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFiles_ReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, NewConfig().Network, cfg.Network)
	assert.False(t, cfg.Settings().MinimumMasterNodesSet)
}

func TestLoad_ProjectFile(t *testing.T) {
	// Given: a project config enabling memory lock and the quorum setting
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), `
node:
  name: data-1
network:
  bind_hosts: [0.0.0.0]
  port: 9301
bootstrap:
  memory_lock: true
discovery:
  minimum_master_nodes: 2
heap:
  initial_size: 512MiB
  max_size: 1GiB
`)

	// When: loading
	cfg, err := Load(dir)

	// Then: file values win over defaults
	require.NoError(t, err)
	assert.Equal(t, "data-1", cfg.Node.Name)
	assert.Equal(t, []string{"0.0.0.0"}, cfg.Network.BindHosts)
	assert.Equal(t, 9301, cfg.Network.Port)
	assert.Equal(t, 9200, cfg.Network.HTTPPort)
	require.NotNil(t, cfg.Discovery.MinimumMasterNodes)
	assert.Equal(t, 2, *cfg.Discovery.MinimumMasterNodes)
	assert.Equal(t, int64(512<<20), cfg.InitialHeapBytes())
	assert.Equal(t, int64(1<<30), cfg.MaxHeapBytes())

	settings := cfg.Settings()
	assert.True(t, settings.MemoryLock)
	assert.True(t, settings.MinimumMasterNodesSet)
}

func TestLoad_YMLExtension(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".nodeguard.yml"), "node:\n  name: from-yml\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "from-yml", cfg.Node.Name)
}

func TestLoad_Precedence(t *testing.T) {
	// Given: user config, project config and env all set the node name
	isolate(t)
	writeFile(t, GetUserConfigPath(), "node:\n  name: user\nlogging:\n  level: debug\n")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), "node:\n  name: project\n")

	// When: loading without env
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then: project beats user, user beats defaults
	assert.Equal(t, "project", cfg.Node.Name)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// When: env is set
	t.Setenv("NODEGUARD_NODE_NAME", "env")
	cfg, err = Load(dir)
	require.NoError(t, err)

	// Then: env beats everything
	assert.Equal(t, "env", cfg.Node.Name)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("NODEGUARD_BIND_HOSTS", "127.0.0.1, ::1")
	t.Setenv("NODEGUARD_PORT", "9400")
	t.Setenv("NODEGUARD_MEMORY_LOCK", "true")
	t.Setenv("NODEGUARD_MINIMUM_MASTER_NODES", "3")
	t.Setenv("NODEGUARD_HEAP_MAX_SIZE", "2GB")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1", "::1"}, cfg.Network.BindHosts)
	assert.Equal(t, 9400, cfg.Network.Port)
	assert.True(t, cfg.Bootstrap.MemoryLock)
	require.NotNil(t, cfg.Discovery.MinimumMasterNodes)
	assert.Equal(t, 3, *cfg.Discovery.MinimumMasterNodes)
	assert.Equal(t, int64(2_000_000_000), cfg.MaxHeapBytes())
}

func TestLoad_EnvMemoryLockCanDisable(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), "bootstrap:\n  memory_lock: true\n")
	t.Setenv("NODEGUARD_MEMORY_LOCK", "false")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.False(t, cfg.Bootstrap.MemoryLock)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "malformed yaml", file: "node: [", wantErr: "failed to parse"},
		{name: "bad port env", env: map[string]string{"NODEGUARD_PORT": "abc"}, wantErr: "NODEGUARD_PORT"},
		{name: "bad memory lock env", env: map[string]string{"NODEGUARD_MEMORY_LOCK": "maybe"}, wantErr: "NODEGUARD_MEMORY_LOCK"},
		{name: "zero quorum", file: "discovery:\n  minimum_master_nodes: 0\n", wantErr: "minimum_master_nodes"},
		{name: "bad heap", file: "heap:\n  max_size: lots\n", wantErr: "heap.max_size"},
		{name: "bad level", file: "logging:\n  level: chatty\n", wantErr: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, ProjectFile), tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty name", mutate: func(c *Config) { c.Node.Name = "" }, wantErr: "node.name"},
		{name: "no bind hosts", mutate: func(c *Config) { c.Network.BindHosts = nil }, wantErr: "bind_hosts"},
		{name: "bad bind host", mutate: func(c *Config) { c.Network.BindHosts = []string{"a b"} }, wantErr: "bind_hosts"},
		{name: "hostname bind host", mutate: func(c *Config) { c.Network.BindHosts = []string{"localhost"} }},
		{name: "port too large", mutate: func(c *Config) { c.Network.Port = 70000 }, wantErr: "network.port"},
		{name: "negative http port", mutate: func(c *Config) { c.Network.HTTPPort = -1 }, wantErr: "http_port"},
		{name: "same ports", mutate: func(c *Config) { c.Network.HTTPPort = c.Network.Port }, wantErr: "must differ"},
		{name: "both ports ephemeral", mutate: func(c *Config) { c.Network.Port, c.Network.HTTPPort = 0, 0 }},
		{name: "negative quorum", mutate: func(c *Config) { n := -1; c.Discovery.MinimumMasterNodes = &n }, wantErr: "minimum_master_nodes"},
		{name: "bad initial heap", mutate: func(c *Config) { c.Heap.InitialSize = "x" }, wantErr: "heap.initial_size"},
		{name: "uppercase level", mutate: func(c *Config) { c.Logging.Level = "WARN" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReturnsCodedValidationError(t *testing.T) {
	// Given: a config with an unparsable heap size
	cfg := NewConfig()
	cfg.Heap.MaxSize = "lots"

	// When: validating
	err := cfg.Validate()

	// Then: the error carries the validation code and keeps the parse error as cause
	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeInvalidInput, nerrors.GetCode(err))
	assert.Contains(t, err.Error(), "invalid configuration: heap.max_size")
	var ne *nerrors.NodeError
	require.ErrorAs(t, err, &ne)
	assert.NotNil(t, ne.Cause)
}

func TestParseSize(t *testing.T) {
	n, err := ParseSize("")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = ParseSize("1KiB")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), n)

	_, err = ParseSize("-5MB")
	assert.Error(t, err)
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	// Given: a config with the quorum setting
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Node.Name = "written"
	quorum := 2
	cfg.Discovery.MinimumMasterNodes = &quorum

	// When: written and loaded back
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ProjectFile)))
	loaded, err := Load(dir)

	// Then: key presence survives
	require.NoError(t, err)
	assert.Equal(t, "written", loaded.Node.Name)
	assert.True(t, loaded.Settings().MinimumMasterNodesSet)
}

func TestResolveDataPath(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, filepath.Join("/srv", DataDirName, "data"), cfg.ResolveDataPath("/srv"))

	cfg.Node.DataPath = "/var/lib/nodeguard"
	assert.Equal(t, "/var/lib/nodeguard", cfg.ResolveDataPath("/srv"))
}

func TestGetUserConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	assert.Equal(t, "/custom/config/nodeguard/config.yaml", GetUserConfigPath())
}

func TestFindProjectRoot(t *testing.T) {
	// Given: a project root marked by .nodeguard.yaml with a nested dir
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectFile), "version: 1\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	// When: searching from the nested dir
	found, err := FindProjectRoot(nested)

	// Then: the marked root is found
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindProjectRoot_MissingDir(t *testing.T) {
	_, err := FindProjectRoot(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
