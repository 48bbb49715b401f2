package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
environment: development
server:
  host: 127.0.0.1
  port: 8080
database:
  host: localhost
  port: 5432
  user: app
  password: secret
  dbname: gallery
  sslmode: disable
auth:
  secret: 0123456789abcdef0123456789abcdef
log:
  level: info
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.S3Configured())
	assert.Equal(t, 1920, cfg.Upload.WebMaxDimension)
	assert.Equal(t, 88, cfg.Upload.WebQuality)
	assert.Equal(t, 600, cfg.Upload.ThumbMaxDimension)
	assert.Equal(t, 82, cfg.Upload.ThumbQuality)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxFileSize)
}

func TestLoad_ShortSecretFails(t *testing.T) {
	_, err := Load(writeConfig(t, `
auth:
  secret: short
`))
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresS3(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: production
auth:
  secret: 0123456789abcdef0123456789abcdef
`))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.Equal(t,
		"host=localhost port=5432 user=app password=secret dbname=gallery sslmode=disable",
		cfg.Database.DSN(),
	)
}
