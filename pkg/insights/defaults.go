package insights

import "github.com/influxenergy/influx/pkg/types"

// The default sets are returned when the essential top-level field of a
// snapshot is absent. Each call returns a fresh slice so callers may modify
// the result.

// DefaultKeyInsights is returned when a dashboard snapshot has no metrics.
func DefaultKeyInsights() []types.Insight {
	return []types.Insight{
		{Text: "Peak consumption expected 6-9 PM", Value: "4.3 kWh"},
		{Text: "Running washing machine off-peak could save", Value: "0.7 kWh"},
		{Text: "Your energy efficiency is improving", Value: "+8% vs last week"},
	}
}

// DefaultSchedule is returned when no schedule block could be derived.
func DefaultSchedule() []types.ScheduleBlock {
	return []types.ScheduleBlock{
		{Start: 2, End: 6, Type: types.ScheduleKindOptimal, Label: "Best time for heavy loads"},
		{Start: 17, End: 21, Type: types.ScheduleKindWarning, Label: "High demand period - avoid heavy loads"},
	}
}

// DefaultRecommendations is returned when an appliances snapshot has no
// device list.
func DefaultRecommendations() []string {
	return []string{
		"Schedule high-power appliances during off-peak hours (2-6 AM) for maximum savings.",
		"Water heater and washing machine are best candidates for time-shifting.",
		"Consider reducing AC usage during peak hours (6-9 PM) by 2°C for 15% savings.",
		"Enable smart scheduling for flexible devices to optimize automatically.",
		"Your energy pattern shows room for 12-18% optimization with better scheduling.",
	}
}

// LoadingForecastInsights is returned when a forecast snapshot has no daily
// forecast.
func LoadingForecastInsights() []string {
	return []string{
		"Loading 7-day forecast predictions...",
		"ML models analyzing consumption patterns...",
	}
}
