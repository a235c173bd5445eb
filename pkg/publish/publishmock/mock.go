package publishmock

import (
	"context"

	"github.com/influxenergy/influx/pkg/publish"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

var _ publish.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, bundle types.Bundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
