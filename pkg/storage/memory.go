package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/influxenergy/influx/pkg/types"
)

// defaultMemoryCapacity holds a day of bundles at the default 5 minute
// refresh interval.
const defaultMemoryCapacity = 288

// MemoryProvider keeps the most recent bundles in process memory. Once full
// the oldest bundle is dropped.
type MemoryProvider struct {
	mu       sync.RWMutex
	capacity int
	bundles  []types.Bundle // sorted by GeneratedAt
}

// NewMemory returns a MemoryProvider holding at most capacity bundles.
func NewMemory(capacity int) *MemoryProvider {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryProvider{capacity: capacity}
}

func configuredMemory() *MemoryProvider {
	return NewMemory(defaultMemoryCapacity)
}

// PutBundle implements Database.
func (m *MemoryProvider) PutBundle(ctx context.Context, bundle types.Bundle) error {
	if bundle.GeneratedAt.IsZero() {
		return fmt.Errorf("bundle missing generatedAt")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := sort.Search(len(m.bundles), func(i int) bool {
		return !m.bundles[i].GeneratedAt.Before(bundle.GeneratedAt)
	})
	if i < len(m.bundles) && m.bundles[i].GeneratedAt.Equal(bundle.GeneratedAt) {
		m.bundles[i] = bundle
		return nil
	}
	m.bundles = append(m.bundles, types.Bundle{})
	copy(m.bundles[i+1:], m.bundles[i:])
	m.bundles[i] = bundle

	if over := len(m.bundles) - m.capacity; over > 0 {
		m.bundles = append([]types.Bundle(nil), m.bundles[over:]...)
	}
	return nil
}

// GetLatestBundle implements Database.
func (m *MemoryProvider) GetLatestBundle(ctx context.Context) (types.Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.bundles) == 0 {
		return types.Bundle{}, ErrBundleNotFound
	}
	return m.bundles[len(m.bundles)-1], nil
}

// GetBundleHistory implements Database.
func (m *MemoryProvider) GetBundleHistory(ctx context.Context, start, end time.Time) ([]types.Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Bundle
	for _, b := range m.bundles {
		if b.GeneratedAt.Before(start) || !b.GeneratedAt.Before(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Close implements Database.
func (m *MemoryProvider) Close() error {
	return nil
}
