package insights

import (
	"testing"
	"time"

	"github.com/influxenergy/influx/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullDashboard() *types.DashboardSnapshot {
	return &types.DashboardSnapshot{
		Metrics: &types.DashboardMetrics{
			TodayConsumption:  types.ConsumptionMetric{Value: 12.4, ChangePercent: 15.2, Trend: types.TrendUp},
			Predicted24hUsage: types.PredictionMetric{Value: 20.1, Confidence: 92},
			EnergySaved:       types.SavingsMetric{Value: 2.0, Period: "Today"},
		},
		ApplianceBreakdown: []types.ApplianceShare{
			{Appliance: "HVAC", Percentage: 40, Consumption: 8.25},
			{Appliance: "Water Heater", Percentage: 20, Consumption: 4},
		},
		EnergyUsageForecast: []types.HourlyForecast{
			{Timestamp: "2025-01-06T14:00:00", Forecast: 1.5},
			{Timestamp: "2025-01-06T18:00:00", Forecast: 2.75},
			{Timestamp: "2025-01-06T19:00:00", Forecast: 2.75},
		},
		OptimizationSchedule: &types.OptimizationSchedule{
			OptimalPeriods: []types.SchedulePeriod{{Start: 2, End: 3, Type: types.ScheduleKindOptimal}},
			Savings:        &types.ScheduleSavings{Cost: 4.5},
		},
	}
}

func TestGenerateKeyInsights(t *testing.T) {
	e := New(time.UTC)

	t.Run("Metrics Absent Returns Defaults", func(t *testing.T) {
		s := fullDashboard()
		s.Metrics = nil
		assert.Equal(t, DefaultKeyInsights(), e.GenerateKeyInsights(s))
		assert.Equal(t, DefaultKeyInsights(), e.GenerateKeyInsights(nil))
		assert.Len(t, DefaultKeyInsights(), 3)
	})

	t.Run("Empty Metrics Produces Nothing", func(t *testing.T) {
		got := e.GenerateKeyInsights(&types.DashboardSnapshot{Metrics: &types.DashboardMetrics{}})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Priority Order And Cap", func(t *testing.T) {
		got := e.GenerateKeyInsights(fullDashboard())
		assert.Equal(t, []types.Insight{
			{Text: "Usage 15% higher than yesterday", Value: "12.4 kWh used so far"},
			{Text: "7.7 kWh remaining today (92% confidence)", Value: "Total forecast: 20.1 kWh"},
			{Text: "Peak usage expected at 18:00", Value: "2.75 kWh/h"},
			{Text: "2.0 kWh saved Today", Value: "$0.30 • 1.8 lbs CO₂"},
		}, got)
	})

	t.Run("Lower Than Yesterday", func(t *testing.T) {
		s := fullDashboard()
		s.Metrics.TodayConsumption.ChangePercent = -15.2
		got := e.GenerateKeyInsights(s)
		require.NotEmpty(t, got)
		assert.Equal(t, "Great! Usage 15% lower than yesterday", got[0].Text)
	})

	t.Run("Small Change Or No Usage Skips Trend", func(t *testing.T) {
		s := fullDashboard()
		s.Metrics.TodayConsumption.ChangePercent = 10
		got := e.GenerateKeyInsights(s)
		require.NotEmpty(t, got)
		assert.Equal(t, "7.7 kWh remaining today (92% confidence)", got[0].Text)

		s = fullDashboard()
		s.Metrics.TodayConsumption.Value = 0
		assert.False(t, func() bool {
			_, ok := consumptionTrendInsight(e, s, 0)
			return ok
		}())
	})

	t.Run("Filler Optimization Opportunity", func(t *testing.T) {
		s := &types.DashboardSnapshot{
			Metrics: &types.DashboardMetrics{
				TodayConsumption: types.ConsumptionMetric{Value: 5},
			},
			ApplianceBreakdown: []types.ApplianceShare{{Appliance: "HVAC", Percentage: 30, Consumption: 2.5}},
			OptimizationSchedule: &types.OptimizationSchedule{
				OptimalPeriods: []types.SchedulePeriod{
					{Start: 17, End: 18, Type: types.ScheduleKindWarning},
					{Start: 2, End: 3, Type: types.ScheduleKindOptimal},
				},
				Savings: &types.ScheduleSavings{Cost: 4.5},
			},
		}
		assert.Equal(t, []types.Insight{
			{Text: "HVAC is your top consumer", Value: "30% (2.5 kWh)"},
			{Text: "Shift heavy loads to 2:00-3:00", Value: "Save up to $4.50"},
		}, e.GenerateKeyInsights(s))
	})

	t.Run("Opportunity Needs Savings", func(t *testing.T) {
		s := fullDashboard()
		s.OptimizationSchedule.Savings = nil
		_, ok := optimizationOpportunityInsight(e, s, 0)
		assert.False(t, ok)
	})

	t.Run("Opportunity Only Fills", func(t *testing.T) {
		_, ok := optimizationOpportunityInsight(e, fullDashboard(), MaxKeyInsights)
		assert.False(t, ok)
	})

	t.Run("Top Consumer Threshold", func(t *testing.T) {
		s := fullDashboard()
		s.ApplianceBreakdown[0].Percentage = 25
		_, ok := topConsumerInsight(e, s, 0)
		assert.False(t, ok)

		in, ok := topConsumerInsight(e, fullDashboard(), 0)
		require.True(t, ok)
		assert.Equal(t, types.Insight{Text: "HVAC is your top consumer", Value: "40% (8.3 kWh)"}, in)
	})

	t.Run("Peak Hour First Occurrence Wins", func(t *testing.T) {
		in, ok := peakHourInsight(e, fullDashboard(), 0)
		require.True(t, ok)
		assert.Equal(t, "Peak usage expected at 18:00", in.Text)
	})

	t.Run("Peak Hour Skips Bad Timestamps", func(t *testing.T) {
		s := &types.DashboardSnapshot{
			Metrics: &types.DashboardMetrics{},
			EnergyUsageForecast: []types.HourlyForecast{
				{Timestamp: "not a time", Forecast: 9},
				{Timestamp: "2025-01-06T07:00:00", Forecast: 1},
			},
		}
		in, ok := peakHourInsight(e, s, 0)
		require.True(t, ok)
		assert.Equal(t, types.Insight{Text: "Peak usage expected at 7:00", Value: "1.00 kWh/h"}, in)

		s.EnergyUsageForecast = s.EnergyUsageForecast[:1]
		_, ok = peakHourInsight(e, s, 0)
		assert.False(t, ok)
	})

	t.Run("Peak Hour Uses Engine Location", func(t *testing.T) {
		chicago, err := time.LoadLocation("America/Chicago")
		require.NoError(t, err)
		s := &types.DashboardSnapshot{
			Metrics:             &types.DashboardMetrics{},
			EnergyUsageForecast: []types.HourlyForecast{{Timestamp: "2025-01-06T08:00:00Z", Forecast: 1}},
		}
		in, ok := peakHourInsight(New(chicago), s, 0)
		require.True(t, ok)
		assert.Equal(t, "Peak usage expected at 2:00", in.Text)
	})

	t.Run("Savings Default Period", func(t *testing.T) {
		s := fullDashboard()
		s.Metrics.EnergySaved.Period = ""
		in, ok := savingsInsight(e, s, 0)
		require.True(t, ok)
		assert.Equal(t, "2.0 kWh saved today", in.Text)
	})

	t.Run("Truncated Output Is Prefix", func(t *testing.T) {
		s := fullDashboard()
		var all []types.Insight
		for _, r := range keyRules {
			if in, ok := r.eval(e, s, len(all)); ok {
				all = append(all, in)
			}
		}
		require.Greater(t, len(all), MaxKeyInsights)
		assert.Equal(t, all[:MaxKeyInsights], e.GenerateKeyInsights(s))
	})

	t.Run("Idempotent", func(t *testing.T) {
		s := fullDashboard()
		assert.Equal(t, e.GenerateKeyInsights(s), e.GenerateKeyInsights(s))
	})
}
