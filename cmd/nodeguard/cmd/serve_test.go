package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nodeguard/internal/config"
	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
	"github.com/Aman-CERP/nodeguard/internal/node"
	"github.com/Aman-CERP/nodeguard/internal/probe"
)

func TestServe_EnforcedFailurePrintsEveryViolation(t *testing.T) {
	// Given: a node that publishes a public address without the quorum setting
	isolateEnv(t)
	dataPath := filepath.Join(t.TempDir(), "data")
	dir := projectDir(t, `
node:
  name: serve-node
  data_path: `+dataPath+`
network:
  bind_hosts: [127.0.0.1]
  publish_host: 192.0.2.10
  port: 0
  http_port: 0
`)
	pidPath := filepath.Join(t.TempDir(), "nodeguard.pid")

	// When: serving through Execute's error path
	root := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs([]string{"--config-dir", dir, "serve", "--pidfile", pidPath})
	err := root.ExecuteContext(context.Background())

	// Then: the aggregate fatal error lists the quorum violation and nothing was written
	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeBootstrapFailed, nerrors.GetCode(err))
	assert.True(t, nerrors.IsFatal(err))
	assert.Contains(t, nerrors.CauseMessages(err),
		"please set [discovery.zen.minimum_master_nodes] to a majority of the number of master eligible nodes in your cluster")
	assert.NoFileExists(t, pidPath)
	assert.Contains(t, stderr.String(), "node failed to start")

	cli := nerrors.FormatForCLI(err)
	assert.Contains(t, cli, "Error: bootstrap checks failed")
	assert.Contains(t, cli, "[1] ")
}

func TestRunNode_ErrorAfterServingIsLoggedAsStop(t *testing.T) {
	// Given: a loopback node with a satisfied catalog
	cfg := config.NewConfig()
	cfg.Node.Name = "stop-node"
	cfg.Node.DataPath = filepath.Join(t.TempDir(), "data")
	cfg.Network.BindHosts = []string{"127.0.0.1"}
	cfg.Network.Port, cfg.Network.HTTPPort = 0, 0
	quorum := 2
	cfg.Discovery.MinimumMasterNodes = &quorum

	n := node.New(cfg, t.TempDir(),
		node.WithProbe(probe.NewStatic()),
		node.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	logs := &bytes.Buffer{}
	errCh := make(chan error, 1)
	go func() {
		errCh <- runNode(context.Background(), slog.New(slog.NewTextHandler(logs, nil)), n)
	}()

	select {
	case <-n.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("node never became ready")
	}

	// When: the listeners are closed underneath the serving node
	n.Close()

	// Then: the error is reported as a stop, not a failed start
	var err error
	select {
	case err = <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("node did not stop")
	}
	require.Error(t, err)
	assert.Contains(t, logs.String(), "node stopped with error")
	assert.NotContains(t, logs.String(), "node failed to start")
}
