package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdngo/taskdeck/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TASKDECK_API_BASE_URL", "https://tasks.example.com")
	t.Setenv("TASKDECK_API_TIMEOUT", "30s")
	t.Setenv("TASKDECK_LOG_LEVEL", "debug")
	t.Setenv("TASKDECK_LOG_FILE", "/tmp/taskdeck-test.log")

	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/taskdeck-test.log", cfg.Log.File)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			API: config.APIConfig{BaseURL: "http://localhost:8000", Timeout: time.Second},
			Log: config.LogConfig{Level: "info"},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.API.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.API.BaseURL = "/just/a/path"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.API.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestInvalidEnvValueRejected(t *testing.T) {
	t.Setenv("TASKDECK_LOG_LEVEL", "shout")

	_, err := config.New()
	require.Error(t, err)
}
