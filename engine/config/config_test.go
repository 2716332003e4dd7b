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
	path := filepath.Join(t.TempDir(), "albedo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app_name = "demo"
log_level = "debug"

[renderer]
debug = true
validation_layers = true
max_bind_slots = 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.AppName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Renderer.Debug)
	assert.True(t, cfg.Renderer.ValidationLayers)
	assert.Equal(t, uint32(4), cfg.Renderer.MaxBindSlots)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `app_name = "partial"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "partial", cfg.AppName)
	assert.Equal(t, Default().LogLevel, cfg.LogLevel)
	assert.Equal(t, Default().Renderer, cfg.Renderer)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, `app_name = `)

	cfg, err := Load(path)

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, `log_level = "info"`)

	reloaded := make(chan *Config, 1)
	w, err := Watch(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`log_level = "warn"`), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "warn", cfg.LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
