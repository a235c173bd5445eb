package insights

import (
	"fmt"
	"testing"
	"time"

	"github.com/influxenergy/influx/pkg/types"
	"github.com/stretchr/testify/assert"
)

func hourlyDashboard(values map[int]float64, order ...int) *types.DashboardSnapshot {
	s := &types.DashboardSnapshot{}
	for _, h := range order {
		s.EnergyUsageForecast = append(s.EnergyUsageForecast, types.HourlyForecast{
			Timestamp: fmt.Sprintf("2025-01-06T%02d:00:00", h),
			Forecast:  types.Number(values[h]),
		})
	}
	return s
}

func TestGenerateOptimizationSchedule(t *testing.T) {
	e := New(time.UTC)

	t.Run("Off Peak And Peak Blocks", func(t *testing.T) {
		s := hourlyDashboard(map[int]float64{2: 0.5, 3: 0.4, 20: 3.0, 21: 3.2}, 2, 3, 20, 21)
		assert.Equal(t, []types.ScheduleBlock{
			{Start: 2, End: 3, Type: types.ScheduleKindOptimal, Label: "Best time for heavy loads: 2:00-3:00 (avg 0.45 kWh/h)"},
			{Start: 20, End: 21, Type: types.ScheduleKindWarning, Label: "High demand: 20:00-21:00 - avoid heavy loads (avg 3.10 kWh/h)"},
		}, e.GenerateOptimizationSchedule(s))
	})

	t.Run("Empty Forecast Returns Default", func(t *testing.T) {
		assert.Equal(t, DefaultSchedule(), e.GenerateOptimizationSchedule(&types.DashboardSnapshot{}))
		assert.Equal(t, DefaultSchedule(), e.GenerateOptimizationSchedule(nil))
		assert.Equal(t, []types.ScheduleBlock{
			{Start: 2, End: 6, Type: types.ScheduleKindOptimal, Label: "Best time for heavy loads"},
			{Start: 17, End: 21, Type: types.ScheduleKindWarning, Label: "High demand period - avoid heavy loads"},
		}, DefaultSchedule())
	})

	t.Run("Single Hour Returns Default", func(t *testing.T) {
		s := hourlyDashboard(map[int]float64{9: 1.0}, 9)
		assert.Equal(t, DefaultSchedule(), e.GenerateOptimizationSchedule(s))
	})

	t.Run("Unparseable Timestamps Are Dropped", func(t *testing.T) {
		s := &types.DashboardSnapshot{EnergyUsageForecast: []types.HourlyForecast{
			{Timestamp: "", Forecast: 1},
			{Timestamp: "yesterday", Forecast: 2},
		}}
		assert.Equal(t, DefaultSchedule(), e.GenerateOptimizationSchedule(s))
	})

	t.Run("Gap Of One Hour Is Merged", func(t *testing.T) {
		s := hourlyDashboard(
			map[int]float64{1: 0.25, 2: 0.25, 4: 0.5, 5: 0.5, 9: 0.75, 10: 0.75, 18: 2, 19: 2.5},
			1, 2, 4, 5, 9, 10, 18, 19,
		)
		assert.Equal(t, []types.ScheduleBlock{
			{Start: 1, End: 5, Type: types.ScheduleKindOptimal, Label: "Best time for heavy loads: 1:00-5:00 (avg 0.38 kWh/h)"},
			{Start: 9, End: 19, Type: types.ScheduleKindWarning, Label: "High demand: 9:00-19:00 - avoid heavy loads (avg 1.50 kWh/h)"},
		}, e.GenerateOptimizationSchedule(s))
	})

	t.Run("Midnight Is Not Merged", func(t *testing.T) {
		s := hourlyDashboard(
			map[int]float64{22: 0.1, 23: 0.1, 0: 0.1, 1: 0.1, 10: 3, 11: 4, 12: 5, 13: 6, 14: 7, 15: 8},
			22, 23, 0, 1, 10, 11, 12, 13, 14, 15,
		)
		assert.Equal(t, []types.ScheduleBlock{
			{Start: 0, End: 1, Type: types.ScheduleKindOptimal, Label: "Best time for heavy loads: 0:00-1:00 (avg 0.10 kWh/h)"},
			{Start: 12, End: 15, Type: types.ScheduleKindWarning, Label: "High demand: 12:00-15:00 - avoid heavy loads (avg 6.50 kWh/h)"},
		}, e.GenerateOptimizationSchedule(s))
	})

	t.Run("Two Hours Only Yields Optimal", func(t *testing.T) {
		s := hourlyDashboard(map[int]float64{6: 1, 7: 2}, 6, 7)
		assert.Equal(t, []types.ScheduleBlock{
			{Start: 6, End: 7, Type: types.ScheduleKindOptimal, Label: "Best time for heavy loads: 6:00-7:00 (avg 1.50 kWh/h)"},
		}, e.GenerateOptimizationSchedule(s))
	})

	t.Run("Ties Prefer Lower Hour", func(t *testing.T) {
		// all equal so the lowest six hours are 0-5 regardless of input order
		values := map[int]float64{}
		var order []int
		for h := 23; h >= 0; h-- {
			values[h] = 1
			order = append(order, h)
		}
		got := e.GenerateOptimizationSchedule(hourlyDashboard(values, order...))
		assert.Equal(t, []types.ScheduleBlock{
			{Start: 0, End: 5, Type: types.ScheduleKindOptimal, Label: "Best time for heavy loads: 0:00-5:00 (avg 1.00 kWh/h)"},
			{Start: 20, End: 23, Type: types.ScheduleKindWarning, Label: "High demand: 20:00-23:00 - avoid heavy loads (avg 1.00 kWh/h)"},
		}, got)
	})

	t.Run("Idempotent", func(t *testing.T) {
		s := hourlyDashboard(map[int]float64{2: 0.5, 3: 0.4, 20: 3.0, 21: 3.2}, 21, 2, 20, 3)
		assert.Equal(t, e.GenerateOptimizationSchedule(s), e.GenerateOptimizationSchedule(s))
	})
}
