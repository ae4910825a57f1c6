package hecs

import (
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// WorldConfig tunes a World. Every field can be set through the environment;
// options passed to NewWorld take precedence over the environment.
type WorldConfig struct {
	// LogLevel is a zerolog level name ("debug", "info", "warn", ...).
	LogLevel string `config:"HECS_LOG_LEVEL"`
	// LogPretty enables the human-readable console writer.
	LogPretty bool `config:"HECS_LOG_PRETTY"`
	// InitialCapacity pre-allocates entity bookkeeping for this many entities.
	InitialCapacity int `config:"HECS_INITIAL_CAPACITY"`
	// StatsdAddress enables statsd telemetry when non-empty.
	StatsdAddress string `config:"HECS_STATSD_ADDRESS"`
	// StatsdTags is a comma-separated list of tags attached to every metric.
	StatsdTags string `config:"HECS_STATSD_TAGS"`
}

func defaultWorldConfig() WorldConfig {
	return WorldConfig{
		LogLevel:        "info",
		InitialCapacity: 1024,
	}
}

// loadWorldConfig loads the world config from the environment. A fallback
// value is used for anything that is not set.
func loadWorldConfig() (WorldConfig, error) {
	cfg := defaultWorldConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return WorldConfig{}, eris.Wrap(err, "failed to load world config")
	}
	return cfg, nil
}
