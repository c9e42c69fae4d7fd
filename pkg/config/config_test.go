package config_test

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/flowbridge/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	filePath := path.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))

	return filePath
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	assert.False(t, cfg.LocalMode)
	assert.Equal(t, config.DefaultAdminEmail, cfg.AdminEmail)
	assert.Equal(t, "gochannel", cfg.Bridge.Channel)
	assert.Equal(t, 500, cfg.Bridge.DebounceMS)
	assert.Equal(t, 300, cfg.Watcher.DebounceMS)
	assert.Equal(t, "@every 5m", cfg.Watcher.ResyncSchedule)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	filePath := writeConfig(t, `
local_mode: true
admin_email: ops@example.com
bridge:
  enabled: true
  channel: kafka
  debounce_ms: 250
watcher:
  path: /var/lib/flowbridge/workflows
  debounce_ms: 100
  resync_schedule: "@every 1m"
`)

	cfg, err := config.Load(filePath)
	require.NoError(t, err)

	assert.True(t, cfg.LocalMode)
	assert.Equal(t, "ops@example.com", cfg.AdminEmail)
	assert.True(t, cfg.Bridge.Enabled)
	assert.Equal(t, "kafka", cfg.Bridge.Channel)
	assert.Equal(t, 250, cfg.Bridge.DebounceMS)
	assert.Equal(t, "/var/lib/flowbridge/workflows", cfg.Watcher.Path)
	assert.Equal(t, 100, cfg.Watcher.DebounceMS)
	assert.Equal(t, "@every 1m", cfg.Watcher.ResyncSchedule)
}

func TestLoad_BackfillsDefaults(t *testing.T) {
	t.Parallel()

	filePath := writeConfig(t, `
local_mode: true
`)

	cfg, err := config.Load(filePath)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAdminEmail, cfg.AdminEmail)
	assert.Equal(t, "gochannel", cfg.Bridge.Channel)
	assert.Equal(t, "@every 5m", cfg.Watcher.ResyncSchedule)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(path.Join(t.TempDir(), "absent.yaml"))

	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	filePath := writeConfig(t, "local_mode: [broken")

	_, err := config.Load(filePath)

	assert.ErrorContains(t, err, "failed to parse YAML config")
}
