package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("NOTIFY_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "log", cfg.Notify.Backend)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Len(t, cfg.JWTSecret, 64, "random secret is generated when unset")
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "gosshub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
db_name: fromfile
notify:
  backend: redis
  queue_key: q
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_NAME", "fromenv")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TTL_MINUTES", "15")
	t.Setenv("CORS_ORIGINS", "http://a,http://b")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "fromenv", cfg.DBName)
	assert.Equal(t, "redis", cfg.Notify.Backend)
	assert.Equal(t, "q", cfg.Notify.QueueKey)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.DSN(), "dbname=fromenv")
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("NOTIFY_BACKEND", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}
