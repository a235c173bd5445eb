package storagemock

import (
	"context"
	"time"

	"github.com/influxenergy/influx/pkg/storage"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/stretchr/testify/mock"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) PutBundle(ctx context.Context, bundle types.Bundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockDatabase) GetLatestBundle(ctx context.Context) (types.Bundle, error) {
	args := m.Called(ctx)
	// return empty if not specified, or checks args
	if len(args) > 0 {
		return args.Get(0).(types.Bundle), args.Error(1)
	}
	return types.Bundle{}, storage.ErrBundleNotFound
}

func (m *MockDatabase) GetBundleHistory(ctx context.Context, start, end time.Time) ([]types.Bundle, error) {
	args := m.Called(ctx, start, end)
	if b := args.Get(0); b != nil {
		return b.([]types.Bundle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
