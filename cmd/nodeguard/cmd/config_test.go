package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nodeguard/configs"
	"github.com/Aman-CERP/nodeguard/internal/config"
	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
)

func TestConfigInit_WritesUserConfig(t *testing.T) {
	// Given: no user config
	isolateEnv(t)

	// When: running config init
	stdout, _, err := execute(t, "config", "init")

	// Then: the template is written to the user path
	require.NoError(t, err)
	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, configs.ConfigTemplate, string(data))
	assert.Contains(t, stdout, "Created configuration")
}

func TestConfigInit_ExistingWithoutForceKeepsFile(t *testing.T) {
	isolateEnv(t)
	dir := projectDir(t, "node:\n  name: mine\n")

	stdout, _, err := execute(t, "--config-dir", dir, "config", "init", "--project")

	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, err := os.ReadFile(filepath.Join(dir, config.ProjectFile))
	require.NoError(t, err)
	assert.Equal(t, "node:\n  name: mine\n", string(data))
}

func TestConfigInit_ForceBacksUp(t *testing.T) {
	// Given: an existing project config
	isolateEnv(t)
	dir := projectDir(t, "node:\n  name: mine\n")
	path := filepath.Join(dir, config.ProjectFile)

	// When: forcing init
	_, _, err := execute(t, "--config-dir", dir, "config", "init", "--project", "--force")

	// Then: the old file is in a backup and the template replaced it
	require.NoError(t, err)
	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "node:\n  name: mine\n", string(old))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.ConfigTemplate, string(current))
}

func TestConfigRestore_RollsBackForcedInit(t *testing.T) {
	// Given: a project config replaced by a forced init
	isolateEnv(t)
	dir := projectDir(t, "node:\n  name: mine\n")
	path := filepath.Join(dir, config.ProjectFile)
	_, _, err := execute(t, "--config-dir", dir, "config", "init", "--project", "--force")
	require.NoError(t, err)

	// When: restoring without naming a backup
	stdout, _, err := execute(t, "--config-dir", dir, "config", "restore", "--project")

	// Then: the original file is back and the template was backed up first
	require.NoError(t, err)
	assert.Contains(t, stdout, "Restored")
	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "node:\n  name: mine\n", string(current))

	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	require.NotEmpty(t, backups)
	newest, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, configs.ConfigTemplate, string(newest))
}

func TestConfigRestore_List(t *testing.T) {
	isolateEnv(t)
	dir := projectDir(t, "node:\n  name: mine\n")
	path := filepath.Join(dir, config.ProjectFile)
	backup, err := config.Backup(path)
	require.NoError(t, err)

	stdout, _, err := execute(t, "--config-dir", dir, "config", "restore", "--project", "--list")

	require.NoError(t, err)
	assert.Contains(t, stdout, backup)
}

func TestConfigRestore_NoBackupsIsIOError(t *testing.T) {
	// Given: a user config with no backups
	isolateEnv(t)

	// When: restoring
	_, _, err := execute(t, "config", "restore")

	// Then: a coded error with a hint
	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeFileNotFound, nerrors.GetCode(err))
	assert.Contains(t, err.Error(), "no backups to restore")
}

func TestConfigInit_EffectiveWritesLoadedConfig(t *testing.T) {
	// Given: an env override on top of the defaults
	isolateEnv(t)
	dir := t.TempDir()
	t.Setenv("NODEGUARD_NODE_NAME", "from-env")

	// When: writing the effective config as the project file
	stdout, _, err := execute(t, "--config-dir", dir, "config", "init", "--project", "--effective")

	// Then: the written file carries the override and loads back cleanly
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote effective configuration")
	t.Setenv("NODEGUARD_NODE_NAME", "")
	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", loaded.Node.Name)
}

func TestConfigShow_JSONReflectsProjectFile(t *testing.T) {
	isolateEnv(t)
	dir := projectDir(t, "node:\n  name: shown\ndiscovery:\n  minimum_master_nodes: 3\n")

	stdout, _, err := execute(t, "--config-dir", dir, "config", "show", "--json")

	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "shown", cfg.Node.Name)
	require.NotNil(t, cfg.Discovery.MinimumMasterNodes)
	assert.Equal(t, 3, *cfg.Discovery.MinimumMasterNodes)
}

func TestConfigShow_YAML(t *testing.T) {
	isolateEnv(t)
	dir := projectDir(t, "node:\n  name: yaml-node\n")

	stdout, _, err := execute(t, "--config-dir", dir, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "name: yaml-node")
	assert.Contains(t, stdout, "bind_hosts:")
}

func TestConfigTemplate_LoadsCleanly(t *testing.T) {
	// Given: a project config written by init
	isolateEnv(t)
	dir := t.TempDir()
	_, _, err := execute(t, "--config-dir", dir, "config", "init", "--project")
	require.NoError(t, err)

	// Then: it loads with defaults
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Network.Port)
	assert.False(t, cfg.Settings().MinimumMasterNodesSet)
}

func TestConfigPath(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath()+"\n", stdout)
}
