package recorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "mouse_trace.txt", cfg.TracePath)
	assert.Equal(t, 5*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 1024, cfg.QueueSize)
	assert.Equal(t, 1920, cfg.ScreenWidth)
	assert.Equal(t, 1080, cfg.ScreenHeight)
}

func TestConfigValidateRejectsNegative(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"interval", Config{PollInterval: -time.Millisecond}},
		{"queue", Config{QueueSize: -1}},
		{"screen", Config{ScreenWidth: -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Millisecond, cfg.PollInterval)
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "mouse_trace.txt", cfg.TracePath)
	})

	t.Run("values from yaml", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		content := "trace: /tmp/session.txt\npoll_interval: 10ms\nscreen_width: 2560\nscreen_height: 1440\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/session.txt", cfg.TracePath)
		assert.Equal(t, 10*time.Millisecond, cfg.PollInterval)
		assert.Equal(t, 2560, cfg.ScreenWidth)
		assert.Equal(t, 1440, cfg.ScreenHeight)
		assert.Equal(t, 1024, cfg.QueueSize)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("poll_interval: [\n"), 0o644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "negative.yaml")
		require.NoError(t, os.WriteFile(path, []byte("queue_size: -4\n"), 0o644))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "invalid config")
	})
}
