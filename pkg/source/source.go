// Package source fetches the dashboard, appliance and forecast snapshots
// that insights are derived from.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
)

var ErrUnknownProvider = errors.New("unknown source provider")

// Provider returns the current snapshots.
type Provider interface {
	Dashboard(ctx context.Context) (*types.DashboardSnapshot, error)
	Appliances(ctx context.Context) (*types.AppliancesSnapshot, error)
	Forecast(ctx context.Context) (*types.ForecastSnapshot, error)
}

// Configured registers the available providers and returns the one selected
// by the source-provider flag.
func Configured() Provider {
	name := lflag.String("source-provider", "backend", "Source provider to use (available: backend, mock)")

	m := NewMap()
	b := configuredBackend()
	m.SetProvider("backend", b)
	m.SetProvider("mock", NewMock(nil))

	var p struct{ Provider }
	lflag.Do(func() {
		if *name == "backend" {
			if err := b.Validate(); err != nil {
				panic(fmt.Sprintf("backend validation failed: %v", err))
			}
		}
		prov, err := m.Provider(*name)
		if err != nil {
			panic(err.Error())
		}
		p.Provider = prov
	})
	return &p
}

// Map manages multiple source providers.
type Map struct {
	mu        sync.Mutex
	providers map[string]Provider
}

// NewMap creates a new source Map.
func NewMap() *Map {
	return &Map{
		providers: make(map[string]Provider),
	}
}

// Provider returns the provider for the given name.
func (m *Map) Provider(name string) (Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prov, ok := m.providers[name]; ok {
		return prov, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// SetProvider sets the provider for the given name. This is primarily used for testing.
func (m *Map) SetProvider(name string, provider Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = provider
}

// Names returns the registered provider names in sorted order.
func (m *Map) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String implements fmt.Stringer.
func (m *Map) String() string {
	return strings.Join(m.Names(), ",")
}
