package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beacon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults_SetsExpectedValues(t *testing.T) {
	t.Parallel()

	cfg := Defaults()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(65536), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 100, cfg.Hub.Capacity)
	assert.Equal(t, 64, cfg.Hub.BufferSize)
	assert.Zero(t, cfg.Hub.MaxSubscribers)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 7, cfg.Journal.RetentionDays)
	assert.True(t, cfg.MCP.Enabled)
	assert.False(t, cfg.Tunnel.Enabled)
}

func TestLoadFromFile_ParsesYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "0.0.0.0"
  port: 9000
  public_url: "https://beacon.test.com"
  log_level: "debug"
  allowed_origins:
    - "https://app.example.com"
  write_timeout: 30s

hub:
  capacity: 250
  buffer_size: 16
  max_subscribers: 500

journal:
  enabled: true
  path: "/tmp/beacon-journal.db"
  retention_days: 30

mcp:
  enabled: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://beacon.test.com", cfg.Server.PublicURL)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 250, cfg.Hub.Capacity)
	assert.Equal(t, 16, cfg.Hub.BufferSize)
	assert.Equal(t, 500, cfg.Hub.MaxSubscribers)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "/tmp/beacon-journal.db", cfg.Journal.Path)
	assert.Equal(t, 30, cfg.Journal.RetentionDays)
	assert.False(t, cfg.MCP.Enabled)
}

func TestLoadFromFile_ExpandsEnvVars(t *testing.T) {
	t.Setenv("BEACON_TEST_TOKEN", "super-secret-value")

	path := writeConfig(t, `
tunnel:
  enabled: true
  authtoken: "${BEACON_TEST_TOKEN}"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "super-secret-value", cfg.Tunnel.AuthToken)
}

func TestLoadFromFile_EnvOverridesPort(t *testing.T) {
	t.Setenv("BEACON_PORT", "7070")

	path := writeConfig(t, `
server:
  port: 9000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadFromFile_RejectsBadEnvPort(t *testing.T) {
	t.Setenv("BEACON_PORT", "not-a-port")

	_, err := LoadFromFile(writeConfig(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BEACON_PORT")
}

func TestLoadFromFile_EnvProvidesTunnelToken(t *testing.T) {
	t.Setenv("BEACON_NGROK_AUTHTOKEN", "from-env")

	path := writeConfig(t, `
tunnel:
  enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Tunnel.AuthToken)
}

func TestLoadFromFile_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"port too high", "server:\n  port: 99999\n", "port"},
		{"port zero", "server:\n  port: 0\n", "port"},
		{"unknown log level", "server:\n  log_level: verbose\n", "log_level"},
		{"zero capacity", "hub:\n  capacity: 0\n", "hub.capacity"},
		{"zero buffer", "hub:\n  buffer_size: 0\n", "hub.buffer_size"},
		{"negative max subscribers", "hub:\n  max_subscribers: -1\n", "max_subscribers"},
		{"zero body limit", "server:\n  max_body_bytes: 0\n", "max_body_bytes"},
		{"journal without path", "journal:\n  enabled: true\n  path: \"\"\n", "journal.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile_NonexistentFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestLoadFromFile_InvalidYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(writeConfig(t, "{{invalid yaml:::"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing YAML")
}

func TestLoadFromFile_PartialOverride_KeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(writeConfig(t, "hub:\n  capacity: 10\n"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Hub.Capacity)
	assert.Equal(t, 64, cfg.Hub.BufferSize, "default buffer_size should be preserved")
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "default host should be preserved")
}

func TestLoadFromFile_ExpandsJournalPath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := LoadFromFile(writeConfig(t, "journal:\n  path: \"~/data/journal.db\"\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data/journal.db"), cfg.Journal.Path)
}

func TestExpandHome_ReplacesLeadingTilde(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "some/path"), ExpandHome("~/some/path"))
}

func TestExpandHome_LeavesAbsolutePathsUnchanged(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/absolute/path", ExpandHome("/absolute/path"))
}
