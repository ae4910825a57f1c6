package hecs

import (
	"github.com/rs/zerolog"
)

// WorldOption represents an option that can be used to augment how the World
// will be run.
type WorldOption func(*World)

// WithLogger sets the logger the World and its storage layer write to. The
// default logs to stderr at the configured level.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
		w.loggerOverridden = true
	}
}

// WithLogLevel overrides the HECS_LOG_LEVEL environment setting.
func WithLogLevel(level string) WorldOption {
	return func(w *World) {
		w.cfg.LogLevel = level
	}
}

// WithInitialCapacity pre-allocates entity bookkeeping for the given number
// of entities. The default is 1024. Choosing a suitable capacity can prevent
// re-allocations during runtime.
func WithInitialCapacity(capacity int) WorldOption {
	return func(w *World) {
		w.cfg.InitialCapacity = capacity
	}
}

// WithStatsdAddress enables statsd telemetry, overriding HECS_STATSD_ADDRESS.
func WithStatsdAddress(address string) WorldOption {
	return func(w *World) {
		w.cfg.StatsdAddress = address
	}
}
