package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 1, cfg.Ratings.Retries)
	assert.Contains(t, cfg.Ratings.Circuits.WTA, "wta_elo_ratings")
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
ratings:
  retries: 3
  retry_delay: 250ms
  circuits:
    atp: "http://localhost/atp.html"
logging:
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("TENNISELO_SERVER_PORT", "9100")
	t.Setenv("TENNISELO_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Ratings.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Ratings.RetryDelay)
	assert.Equal(t, "http://localhost/atp.html", cfg.Ratings.Circuits.ATP)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("TENNISELO_LOGGING_FORMAT", "xml")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Server:  ServerConfig{Port: 0, ReadHeaderTimeout: time.Second},
		Logging: LoggingConfig{Format: "json"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 8080
	assert.NoError(t, cfg.Validate())

	cfg.Ratings.Retries = -1
	assert.Error(t, cfg.Validate())
}
