package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"BIND_HOST", "BIND_PORT", "DEST_HOST", "DEST_PORT", "LOG_LEVEL", "LOG_FORMAT", "REDIS_URL", "ADMIN_PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3198", cfg.BindAddr())
	assert.Equal(t, "127.0.0.1:42069", cfg.DestAddr())
	assert.False(t, cfg.MirrorEnabled())
	assert.False(t, cfg.AdminEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("BIND_HOST", "127.0.0.1")
	t.Setenv("BIND_PORT", "4000")
	t.Setenv("DEST_HOST", "10.0.0.2")
	t.Setenv("DEST_PORT", "5000")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MIRROR_RATE", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:4000", cfg.BindAddr())
	assert.Equal(t, "10.0.0.2:5000", cfg.DestAddr())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2.5, cfg.MirrorRate)
	assert.True(t, cfg.MirrorEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidInteger(t *testing.T) {
	t.Setenv("BIND_PORT", "not-a-port")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BIND_PORT")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.DestPort = 0
	cfg.LogLevel = "verbose"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEST_PORT")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestValidate_MirrorSettingsOnlyCheckedWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.MirrorRate = 0
	assert.NoError(t, cfg.Validate())

	cfg.RedisURL = "redis://localhost:6379"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIRROR_RATE")
}

func TestBindAddr_IPv6(t *testing.T) {
	cfg := Default()
	cfg.BindHost = "::1"
	assert.Equal(t, "[::1]:3198", cfg.BindAddr())
}
