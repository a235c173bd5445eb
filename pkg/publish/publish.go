// Package publish broadcasts refreshed insight bundles to downstream
// consumers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
)

// Publisher sends a bundle to subscribers.
type Publisher interface {
	Publish(ctx context.Context, bundle types.Bundle) error
	Close() error
}

// Configured sets up the Publisher based on flags.
func Configured() Publisher {
	provider := lflag.String("publish-provider", "none", "Publish provider to use (available: none, kafka, mqtt)")

	var p struct{ Publisher }

	k := configuredKafka()
	m := configuredMQTT()

	lflag.Do(func() {
		switch *provider {
		case "none", "":
			p.Publisher = None{}
		case "kafka":
			if err := k.Validate(); err != nil {
				panic(fmt.Sprintf("kafka validation failed: %v", err))
			}
			k.Init()
			p.Publisher = k
		case "mqtt":
			if err := m.Validate(); err != nil {
				panic(fmt.Sprintf("mqtt validation failed: %v", err))
			}
			if err := m.Init(); err != nil {
				panic(fmt.Sprintf("mqtt init failed: %v", err))
			}
			p.Publisher = m
		default:
			panic(fmt.Sprintf("unknown publish provider: %s", *provider))
		}
	})

	return &p
}

// None discards every bundle.
type None struct{}

// Publish implements Publisher.
func (None) Publish(ctx context.Context, bundle types.Bundle) error {
	return nil
}

// Close implements Publisher.
func (None) Close() error {
	return nil
}

func encodeBundle(bundle types.Bundle) ([]byte, error) {
	b, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle: %w", err)
	}
	return b, nil
}
