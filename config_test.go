package hecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWorldConfigDefaults(t *testing.T) {
	cfg, err := loadWorldConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 1024, cfg.InitialCapacity)
	assert.Equal(t, "", cfg.StatsdAddress)
}

func TestLoadWorldConfigFromEnv(t *testing.T) {
	t.Setenv("HECS_LOG_LEVEL", "debug")
	t.Setenv("HECS_LOG_PRETTY", "true")
	t.Setenv("HECS_INITIAL_CAPACITY", "64")
	t.Setenv("HECS_STATSD_TAGS", "env:test,service:hecs")

	cfg, err := loadWorldConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 64, cfg.InitialCapacity)
	assert.Equal(t, "env:test,service:hecs", cfg.StatsdTags)
}

func TestOptionsOverrideEnvironment(t *testing.T) {
	t.Setenv("HECS_LOG_LEVEL", "warn")

	w, err := NewWorld(WithLogLevel("disabled"), WithInitialCapacity(16))
	require.NoError(t, err)
	assert.Equal(t, "disabled", w.cfg.LogLevel)
	assert.Equal(t, 16, w.cfg.InitialCapacity)
}
