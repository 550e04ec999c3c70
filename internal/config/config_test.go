package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:7777", cfg.Server.Address())
	assert.Equal(t, 5*time.Second, cfg.Heartbeat.Interval)
	assert.Equal(t, 15*time.Second, cfg.Heartbeat.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Cleanup.Interval)
	assert.Equal(t, 300*time.Second, cfg.Cleanup.MaxAge)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.False(t, cfg.TLS.Enabled())
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8000
heartbeat:
  interval: 2s
  timeout: 6s
storage:
  driver: memory
logging:
  format: json
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8000, cfg.Server.Port)
		assert.Equal(t, 2*time.Second, cfg.Heartbeat.Interval)
		assert.Equal(t, DriverMemory, cfg.Storage.Driver)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, 300*time.Second, cfg.Cleanup.MaxAge, "unset keys keep defaults")
	})

	t.Run("env wins", func(t *testing.T) {
		t.Setenv("BERSERK_SERVER_PORT", "9100")
		t.Setenv("BERSERK_LOGGING_LEVEL", "debug")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"half tls":       "tls:\n  cert_file: a.pem\n",
		"slow heartbeat": "heartbeat:\n  interval: 10s\n  timeout: 5s\n",
		"bad driver":     "storage:\n  driver: mongo\n",
		"postgres url":   "storage:\n  driver: postgres\n",
		"bad port":       "server:\n  port: 70000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	t.Run("broken yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [\n"))
		assert.Error(t, err)
	})
}
