package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, 5*time.Minute, cfg.PromotionCacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	content := "JWT_SECRET=file-secret-file-secret-file-secret\nSERVER_PORT=9090\nDB_ENABLED=false\nLOG_FORMAT=console\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SERVER_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.ServerPort)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.Brokers())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load("")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidatePorts(t *testing.T) {
	cfg := &Config{JWTSecret: "x", ServerPort: 70000, DBEnabled: true, DBHost: "db", DBPort: 0}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "SERVER_PORT")
	assert.ErrorContains(t, err, "DB_PORT")
}
