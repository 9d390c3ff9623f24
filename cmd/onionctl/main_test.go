package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusConfigCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
relays:
  - id: 0
    host: localhost
    port: 4000
    prometheus_port: 9200
`), 0644))
	out := filepath.Join(dir, "prometheus.yml")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"prometheus-config", "--config", cfgPath, "--log-level", "error", "-o", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "relay-0")
	assert.Contains(t, string(data), "localhost:9200")
}

func TestStatusRequiresTarget(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("circuit_length: 3\n"), 0644))

	cmd := newRootCommand()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"status", "--config", cfgPath, "--log-level", "error"})
	assert.Error(t, cmd.Execute())
}

func TestSendRequiresMessage(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"send", "--log-level", "error"})
	assert.Error(t, cmd.Execute())
}
