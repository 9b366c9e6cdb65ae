package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: sqlite
  url: "file::memory:"
jwt:
  secret: s3cret
upload:
  max_pending: 5
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "pgx", cfg.Database.Listener)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 5, cfg.Upload.MaxPending)
	assert.Equal(t, 30*time.Minute, cfg.PendingTTL())
	assert.Equal(t, ":9000", cfg.Addr())
}

func TestLoadFile_RejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: mysql
jwt:
  secret: x
`), 0o600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/art")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_LISTENER", "pq")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "pq", cfg.Database.Listener)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadEnv_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadEnv()
	assert.Error(t, err)
}
