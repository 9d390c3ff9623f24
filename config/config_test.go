package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testConfig = `
circuit_length: 2
scheme: x25519
base_user_port: 5000
directory:
  host: dir.local
  port: 8181
  store:
    kind: badger
relays:
  - id: 1
    host: r1.local
    port: 4001
    prometheus_port: 9201
users:
  - id: 0
    host: u0.local
    port: 3000
    prometheus_port: 9300
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.CircuitLength)
	assert.Equal(t, "x25519", cfg.Scheme)
	assert.Equal(t, "http://dir.local:8181", cfg.Directory.Address)
	assert.Equal(t, "badger", cfg.Directory.Store.Kind)
	assert.Equal(t, "onion_nodes", cfg.Directory.Store.Table)
	assert.Equal(t, "memory", cfg.Mailbox.Kind)
	assert.Equal(t, 4000, cfg.BaseRelayPort)
	assert.Equal(t, "http://r1.local:4001", cfg.Relays[0].Address)
}

func TestLoadConfigRejectsBadCircuitLength(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "circuit_length: -1\n"))
	assert.Error(t, err)
}

func TestUserAndRelayAddress(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://u0.local:3000", cfg.UserAddress(0))
	assert.Equal(t, "http://localhost:5002", cfg.UserAddress(2))
	assert.Equal(t, "http://r1.local:4001", cfg.RelayAddress(1))
	assert.Equal(t, "http://localhost:4007", cfg.RelayAddress(7))

	_, ok := cfg.GetUser(0)
	assert.True(t, ok)
	_, ok = cfg.GetRelay(3)
	assert.False(t, ok)
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CircuitLength)
	assert.Equal(t, "rsa-oaep", cfg.Scheme)
	assert.Equal(t, 8080, cfg.Directory.Port)
}

func TestWritePrometheusConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "prometheus.yml")
	require.NoError(t, cfg.WritePrometheusConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var promCfg PromConfig
	require.NoError(t, yaml.Unmarshal(data, &promCfg))

	require.Len(t, promCfg.ScrapeConfigs, 2)
	assert.Equal(t, "relay-1", promCfg.ScrapeConfigs[0].JobName)
	assert.Equal(t, []string{"r1.local:9201"}, promCfg.ScrapeConfigs[0].StaticConfigs[0].Targets)
	assert.Equal(t, "user-0", promCfg.ScrapeConfigs[1].JobName)
	assert.Equal(t, "5s", promCfg.ScrapeConfigs[1].ScrapeInterval)
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := LoadConfig("config.yml")
	require.NoError(t, err)
	assert.Len(t, cfg.Relays, 10)
	assert.Len(t, cfg.Users, 2)
}
