// Package telemetry is a helper package that wraps some common statsd
// methods. It hides the datadog dependency so a future move to another statsd
// client only needs to touch this single file.
package telemetry

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// Init replaces the no-op client with a real statsd client. Worlds run with
// the no-op client unless an address is configured.
func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics.
		ddstatsd.WithNamespace("hecs"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrap(err, "failed to create statsd client")
	}
	client = newClient
	return nil
}

// EmitOpStat reports the duration of one world operation, e.g. "spawn" or
// "migrate".
func EmitOpStat(start time.Time, op string) {
	duration := time.Since(start)
	err := Client().Timing("op", duration, []string{op}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit op stat: %v", err)
	}
}

// EmitCount bumps a counter, e.g. live entities spawned or despawned.
func EmitCount(name string, value int64) {
	err := Client().Count(name, value, nil, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit count stat: %v", err)
	}
}
