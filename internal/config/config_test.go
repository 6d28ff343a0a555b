package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	content := `
server:
  port: 8080
  host: 0.0.0.0
database:
  host: localhost
  port: 5432
  user: app
  password: secret
  dbname: gamereview
  sslmode: disable
jwt:
  secret: test-secret
log:
  level: debug
checker:
  enabled: true
  interval_seconds: 300
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Checker.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Checker.Interval())
	assert.Equal(t,
		"host=localhost port=5432 user=app password=secret dbname=gamereview sslmode=disable",
		cfg.Database.DSN())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
