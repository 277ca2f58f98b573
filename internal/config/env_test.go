package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "local", env.Env)
	assert.Equal(t, ":3200", env.Addr())
	assert.Equal(t, "http://localhost:5000", env.SocketBaseURL())
	assert.Equal(t, 15*time.Second, env.RequestTimeout)
	assert.Equal(t, 12, env.PageSize)
	assert.Equal(t, "Biasa", env.DefaultPriority)
	assert.False(t, env.VAPIDEnv.Configured())
	assert.Equal(t, slog.LevelInfo, env.SlogLevel())
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("TUGASBOARD_API_BASE_URL", "https://tugas.example.com")
	t.Setenv("TUGASBOARD_SOCKET_URL", "https://push.example.com")
	t.Setenv("TUGASBOARD_LOG_LEVEL", "debug")
	t.Setenv("TUGASBOARD_STORAGE_TYPE", "s3")
	t.Setenv("TUGASBOARD_S3_BUCKET", "bucket")
	t.Setenv("TUGASBOARD_PAGE_SIZE", "20")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://push.example.com", env.SocketBaseURL())
	assert.Equal(t, slog.LevelDebug, env.SlogLevel())
	assert.Equal(t, 20, env.PageSize)
	opts := env.StorageEnv.Options()
	assert.Equal(t, "s3", opts.Type)
	assert.Equal(t, "bucket", opts.S3Bucket)
}

func TestLoadEnv_RejectsBadPageSize(t *testing.T) {
	t.Setenv("TUGASBOARD_PAGE_SIZE", "0")
	_, err := LoadEnv()
	assert.Error(t, err)
}
