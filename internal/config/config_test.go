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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default("/tmp/c")
	assert.Equal(t, "/tmp/c/canteiro.db", cfg.DB.Path)
	assert.Equal(t, 200, cfg.Bulk.UnitBatchSize)
	assert.Equal(t, 500, cfg.Bulk.StageBatchSize)
	assert.Equal(t, 50, cfg.Bulk.MaxUnitsPerFloor)
	assert.Equal(t, time.Hour, cfg.Storage.SignedURLTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "unit-stage-photos", cfg.Storage.PhotosBucket)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
db:
  path: /data/obra.db
storage:
  signed_url_ttl: 15m
bulk:
  unit_batch_size: 50
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/obra.db", cfg.DB.Path)
	assert.Equal(t, 15*time.Minute, cfg.Storage.SignedURLTTL)
	assert.Equal(t, 50, cfg.Bulk.UnitBatchSize)
	assert.Equal(t, 500, cfg.Bulk.StageBatchSize, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "db:\n  path: /from/file.db\n")
	t.Setenv("CANTEIRO_DB_PATH", "/from/env.db")
	t.Setenv("CANTEIRO_BULK_MAX_UNITS_PER_FLOOR", "80")
	t.Setenv("CANTEIRO_BULK_STAGE_BATCH_SIZE", "not-a-number")
	t.Setenv("CANTEIRO_AUTH_TOKEN_TTL", "2h")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.DB.Path)
	assert.Equal(t, 80, cfg.Bulk.MaxUnitsPerFloor)
	assert.Equal(t, 500, cfg.Bulk.StageBatchSize)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "db: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default("/tmp/c")
	cfg.Auth.Secret = " "
	cfg.Log.Format = "xml"
	cfg.Bulk.UnitBatchSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret")
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "bulk sizes")
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv("CANTEIRO_CONFIG", "/etc/canteiro.yaml")
	assert.Equal(t, "/etc/canteiro.yaml", Path())
}
