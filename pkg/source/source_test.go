package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxenergy/influx/pkg/common"
	"github.com/influxenergy/influx/pkg/insights"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	m := NewMap()
	mock := NewMock(nil)
	m.SetProvider("mock", mock)
	m.SetProvider("backend", NewBackend("http://localhost:8000", time.Second))

	p, err := m.Provider("mock")
	require.NoError(t, err)
	assert.Equal(t, mock, p)

	_, err = m.Provider("nope")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.ErrorContains(t, err, "nope")

	assert.Equal(t, []string{"backend", "mock"}, m.Names())
	assert.Equal(t, "backend,mock", m.String())
}

func TestBackend(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, common.UserAgent(), r.Header.Get("User-Agent"))
		w.Write([]byte(`{
			"metrics": {
				"todayConsumption": {"value": 12.4, "changePercent": 15.2, "trend": "up"},
				"predicted24hUsage": {"value": 20.1, "model": "GradientBoosting", "confidence": 92},
				"energySaved": {"value": 0, "period": "Today"}
			},
			"energyUsageForecast": [{"timestamp": "2025-01-06T18:00:00", "forecast": 2.75, "confidence": {"lower": 2.48, "upper": 3.03}}],
			"applianceBreakdown": [{"appliance": "HVAC", "percentage": 40.0, "consumption": 8.25, "color": "#22c55e"}]
		}`))
	})
	mux.HandleFunc("GET /api/appliances", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"devices": [{"device_id": "ev_1", "name": "ev 1", "current_consumption": 3.1, "avg_consumption": "2.5", "flexibility": "medium"}], "total_devices": 1}`))
	})
	mux.HandleFunc("GET /api/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "Data not loaded"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := NewBackend(srv.URL+"/", 5*time.Second)
	require.NoError(t, b.Validate())

	t.Run("Dashboard", func(t *testing.T) {
		s, err := b.Dashboard(ctx)
		require.NoError(t, err)
		require.NotNil(t, s.Metrics)
		assert.Equal(t, types.Number(12.4), s.Metrics.TodayConsumption.Value)
		assert.Equal(t, types.TrendUp, s.Metrics.TodayConsumption.Trend)
		require.Len(t, s.EnergyUsageForecast, 1)
		assert.Equal(t, types.Number(2.75), s.EnergyUsageForecast[0].Forecast)
		require.Len(t, s.ApplianceBreakdown, 1)
		assert.Equal(t, "HVAC", s.ApplianceBreakdown[0].Appliance)
	})

	t.Run("Appliances", func(t *testing.T) {
		s, err := b.Appliances(ctx)
		require.NoError(t, err)
		require.Len(t, s.Devices, 1)
		assert.Equal(t, types.Number(2.5), s.Devices[0].AvgConsumption)
		assert.Equal(t, "ev 1", s.Devices[0].DisplayName())
	})

	t.Run("Status Error", func(t *testing.T) {
		_, err := b.Forecast(ctx)
		require.Error(t, err)
		var serr *StatusError
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, http.StatusInternalServerError, serr.Code)
		assert.Equal(t, "Data not loaded", serr.Detail)
		assert.Equal(t, "backend /api/forecast returned status 500: Data not loaded", err.Error())
	})

	t.Run("Canceled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := b.Dashboard(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBackendBadResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard":
			w.Write([]byte(`<html>oops</html>`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`bad gateway`))
		}
	}))
	defer srv.Close()
	b := NewBackend(srv.URL, time.Second)

	_, err := b.Dashboard(context.Background())
	assert.ErrorContains(t, err, "failed to decode /api/dashboard response")

	_, err = b.Appliances(context.Background())
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusBadGateway, serr.Code)
	assert.Empty(t, serr.Detail)
}

func TestBackendValidate(t *testing.T) {
	assert.Error(t, NewBackend("", time.Second).Validate())
	assert.Error(t, NewBackend("ftp://example.com", time.Second).Validate())
	assert.Error(t, NewBackend("://bad", time.Second).Validate())
	assert.NoError(t, NewBackend("https://api.example.com", time.Second).Validate())
}

func TestMock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC) // Monday
	m := NewMock(func() time.Time { return now })

	t.Run("Dashboard", func(t *testing.T) {
		s, err := m.Dashboard(ctx)
		require.NoError(t, err)
		require.NotNil(t, s.Metrics)
		require.Len(t, s.EnergyUsageForecast, 24)
		assert.Equal(t, "2025-01-06T10:00:00", s.EnergyUsageForecast[0].Timestamp)
		assert.Equal(t, types.Number(1.0), s.EnergyUsageForecast[0].Forecast)
		assert.Equal(t, types.Number(36), s.Metrics.Predicted24hUsage.Value)
		assert.Len(t, s.ApplianceBreakdown, 4)
		assert.True(t, strings.HasPrefix(string(s.EnergyUsageForecast[0].Confidence), `{"lower":`))

		again, err := m.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	})

	t.Run("Dashboard Schedule Follows Curve", func(t *testing.T) {
		s, err := m.Dashboard(ctx)
		require.NoError(t, err)
		blocks := insights.New(time.UTC).GenerateOptimizationSchedule(s)
		require.Len(t, blocks, 2)
		assert.Equal(t, 3, blocks[0].Start)
		assert.Equal(t, 8, blocks[0].End)
		assert.Equal(t, 17, blocks[1].Start)
		assert.Equal(t, 20, blocks[1].End)
	})

	t.Run("Appliances", func(t *testing.T) {
		s, err := m.Appliances(ctx)
		require.NoError(t, err)
		require.Len(t, s.Devices, len(mockDevices))
		assert.Equal(t, len(mockDevices), s.TotalDevices)
		for _, d := range s.Devices {
			assert.NotEmpty(t, d.DeviceID)
			assert.Positive(t, d.AvgConsumption.Float())
		}
	})

	t.Run("Forecast", func(t *testing.T) {
		s, err := m.Forecast(ctx)
		require.NoError(t, err)
		require.Len(t, s.Forecast7Days, 7)
		assert.Equal(t, "2025-01-07", s.Forecast7Days[0].Date)
		require.Len(t, s.PeakPeriods, 3)
		assert.Equal(t, "18:00 - 19:00", s.PeakPeriods[0].Time)
		assert.Equal(t, types.Number(2.5), s.PeakValue)
		assert.Len(t, s.HourlyForecast, 24)

		got := insights.New(time.UTC).GenerateForecastInsights(s)
		assert.Contains(t, got, "Higher consumption expected on Sat, Sun. Plan heavy tasks for other days.")
	})
}
