package types

import "encoding/json"

// Trend is the direction of today's consumption compared to yesterday.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// DashboardSnapshot is the payload of the backend's /api/dashboard endpoint.
// Metrics is nil when the backend omitted it entirely.
type DashboardSnapshot struct {
	Metrics              *DashboardMetrics     `json:"metrics"`
	ApplianceBreakdown   []ApplianceShare      `json:"applianceBreakdown,omitempty"`
	EnergyUsageForecast  []HourlyForecast      `json:"energyUsageForecast,omitempty"`
	OptimizationSchedule *OptimizationSchedule `json:"optimizationSchedule,omitempty"`
}

// DashboardMetrics holds the headline numbers for the current day.
type DashboardMetrics struct {
	TodayConsumption  ConsumptionMetric `json:"todayConsumption"`
	Predicted24hUsage PredictionMetric  `json:"predicted24hUsage"`
	EnergySaved       SavingsMetric     `json:"energySaved"`
	KeyInsights       []string          `json:"keyInsights,omitempty"`
}

// ConsumptionMetric is the cumulative consumption so far today.
type ConsumptionMetric struct {
	Value         Number `json:"value"`
	Trend         Trend  `json:"trend,omitempty"`
	ChangePercent Number `json:"changePercent"`
}

// PredictionMetric is the model's prediction for the full 24 hours.
// Confidence is a percentage (e.g. 92).
type PredictionMetric struct {
	Value      Number `json:"value"`
	Model      string `json:"model,omitempty"`
	Confidence Number `json:"confidence"`
}

// SavingsMetric is the energy saved over Period (e.g. "Today").
type SavingsMetric struct {
	Value  Number `json:"value"`
	Period string `json:"period,omitempty"`
}

// ApplianceShare is one appliance's share of the total load. The backend
// sorts these descending by percentage.
type ApplianceShare struct {
	Appliance   string `json:"appliance"`
	Consumption Number `json:"consumption"`
	Percentage  Number `json:"percentage"`
	Color       string `json:"color,omitempty"`
}

// HourlyForecast is a single hour of the 24 hour forecast. Confidence is kept
// raw because the backend sends a {lower, upper} band.
type HourlyForecast struct {
	Timestamp  string          `json:"timestamp"`
	Forecast   Number          `json:"forecast"`
	Confidence json.RawMessage `json:"confidence,omitempty"`
}

// OptimizationSchedule is the backend's precomputed tariff schedule.
type OptimizationSchedule struct {
	OptimalPeriods []SchedulePeriod `json:"optimalPeriods,omitempty"`
	Savings        *ScheduleSavings `json:"savings,omitempty"`
}

// SchedulePeriod is a tariff period. Type is "optimal" or "warning".
type SchedulePeriod struct {
	Start           Number       `json:"start"`
	End             Number       `json:"end"`
	Type            ScheduleKind `json:"type"`
	Label           string       `json:"label,omitempty"`
	CarbonIntensity Number       `json:"carbonIntensity,omitempty"`
}

// ScheduleSavings is the estimated monthly savings from following the schedule.
type ScheduleSavings struct {
	Cost     Number `json:"cost"`
	CarbonKg Number `json:"carbonKg,omitempty"`
}
