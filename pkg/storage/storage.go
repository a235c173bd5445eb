package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
)

var (
	ErrBundleNotFound = errors.New("bundle not found")
)

// Database persists insight bundles.
type Database interface {
	// PutBundle stores a bundle keyed by its GeneratedAt time. Storing a
	// bundle with the same GeneratedAt replaces the earlier one.
	PutBundle(ctx context.Context, bundle types.Bundle) error

	// GetLatestBundle returns the most recently generated bundle or
	// ErrBundleNotFound.
	GetLatestBundle(ctx context.Context) (types.Bundle, error)

	// GetBundleHistory returns bundles generated in [start, end), oldest
	// first.
	GetBundleHistory(ctx context.Context, start, end time.Time) ([]types.Bundle, error)

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "memory", "Storage provider to use (available: memory, firestore)")

	var p struct{ Database }

	mem := configuredMemory()
	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "memory":
			p.Database = mem
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
