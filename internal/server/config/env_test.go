package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	clearEnv(t)

	t.Setenv("SERVER_ADDRESS", "127.0.0.1:8081")
	t.Setenv("DATABASE_DSN", "dsn")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("ASSET_BACKEND", "s3")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "127.0.0.1:8081", cfg.EndpointAddrHTTP)
	assert.Equal(t, "dsn", cfg.DatabaseDSN)
	assert.Equal(t, "s3cr3t", cfg.SecretKey)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, AssetBackendS3, cfg.AssetBackend)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "uploads", cfg.AssetDir, "unset variables keep defaults")
}

func Test_parseEnv_DotenvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	clearEnv(t)
	// godotenv never overrides variables that are already present, so
	// drop the emptied ones before loading the file.
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	require.NoError(t, os.Unsetenv("ASSET_DIR"))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=dotenv-secret\nASSET_DIR=/srv/assets\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("JWT_SECRET")
		_ = os.Unsetenv("ASSET_DIR")
	})

	os.Args = []string{"testbin", "-env", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "dotenv-secret", cfg.SecretKey)
	assert.Equal(t, "/srv/assets", cfg.AssetDir)
}

func Test_parseEnv_Invalid(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	clearEnv(t)

	t.Run("bad size", func(t *testing.T) {
		t.Setenv("MAX_UPLOAD_BYTES", "lots")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("missing env file", func(t *testing.T) {
		os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "nope.env")}
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}
