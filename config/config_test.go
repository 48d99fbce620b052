package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8000", c.AppPort)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "admin1234", c.AdminSecret)
	assert.Equal(t, "local", c.StorageDriver)
	assert.Equal(t, "/static", c.StaticPrefix)
	assert.Equal(t, 50, c.MaxUploadMB)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, c.AllowedOrigins)
	assert.False(t, c.RedisEnabled)
	assert.Empty(t, c.SessionSecret)
}

func TestParseFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := `{
  "app": {"port": "9000"},
  "db": {"driver": "MySQL", "host": "db.internal"},
  "admin": {"secret": "from-file"},
  "redis": {"enabled": true, "port": 6380},
  "cors": {"allowed_origins": ["https://tracker.example.com"]}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(file), 0o644))

	t.Setenv("ADMIN_SECRET", "from-env")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	c, err := Parse(dir)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "db.internal", c.DBHost)
	assert.Equal(t, "from-env", c.AdminSecret)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, 6380, c.RedisPort)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, c.AllowedOrigins)
}

func TestParseRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Parse(t.TempDir())
	assert.Error(t, err)
}

func TestParseS3RequiresBucket(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "s3")
	_, err := Parse(t.TempDir())
	assert.Error(t, err)

	t.Setenv("S3_BUCKET", "uploads")
	c, err := Parse(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "s3", c.StorageDriver)
	assert.Equal(t, "uploads", c.S3Bucket)
}
