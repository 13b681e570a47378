package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // без .env
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.AppPort)
	assert.Equal(t, BackendFS, cfg.StorageBackend)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Equal(t, "video/webm", cfg.MediaContentType)
	assert.EqualValues(t, 512<<20, cfg.UploadMaxBytes)
	assert.Equal(t, 256<<10, cfg.StreamChunkBytes)
	assert.False(t, cfg.ManifestEnabled())
	assert.False(t, cfg.CacheEnabled())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", ":8080")
	t.Setenv("UPLOAD_DIR", "/data/videos")
	t.Setenv("STREAM_CHUNK_BYTES", "4096")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "media")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_NAME", "media")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "/data/videos", cfg.UploadDir)
	assert.Equal(t, 4096, cfg.StreamChunkBytes)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.ManifestEnabled())
	assert.Equal(t, "postgres://media:p%40ss@db:5432/media?sslmode=disable&search_path=public", cfg.GetDSN())
}

func TestLoadFromEnvRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BACKEND", "tape")
	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "tape")
}

func TestValidateS3RequiresBucket(t *testing.T) {
	cfg := Config{StorageBackend: BackendS3, S3Endpoint: "minio:9000", UploadMaxBytes: 1, StreamChunkBytes: 1, MediaContentType: "video/webm"}
	assert.Error(t, cfg.Validate())
	cfg.S3Bucket = "videos"
	assert.NoError(t, cfg.Validate())
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := Config{DBPassword: "secret1", S3SecretKey: "secret2", RedisPassword: "secret3"}
	s := cfg.String()
	assert.NotContains(t, s, "secret1")
	assert.NotContains(t, s, "secret2")
	assert.NotContains(t, s, "secret3")
	assert.Contains(t, s, "********")
	assert.Contains(t, s, "S3AccessKey: (empty)")
}
