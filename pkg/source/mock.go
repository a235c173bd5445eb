package source

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/influxenergy/influx/pkg/types"
)

// mockDevice is a fixed appliance in the mock household.
type mockDevice struct {
	id          string
	name        string
	location    string
	avg         float64
	flexibility types.Flexibility
}

var mockDevices = []mockDevice{
	{"hvac_1", "HVAC", "Living Room", 2.4, types.FlexibilityMedium},
	{"water_heater_1", "Water Heater", "Garage", 1.6, types.FlexibilityMedium},
	{"ev_charger_1", "EV Charger", "Garage", 3.2, types.FlexibilityHigh},
	{"dishwasher_1", "Dishwasher", "Kitchen", 0.9, types.FlexibilityHigh},
	{"fridge_1", "Refrigerator", "Kitchen", 0.4, types.FlexibilityLow},
	{"washer_1", "Washing Machine", "Bathroom", 0.7, types.FlexibilityHigh},
}

var mockColors = []string{"#22c55e", "#3b82f6", "#8b5cf6", "#6b7280"}

// Mock implements Provider with deterministic data derived from the clock.
// The household load follows a daily cosine curve with its trough at 6:00
// and its peak at 18:00.
type Mock struct {
	now func() time.Time
}

// NewMock returns a Mock using now as its clock. A nil now means time.Now.
func NewMock(now func() time.Time) *Mock {
	if now == nil {
		now = time.Now
	}
	return &Mock{now: now}
}

// mockHourlyLoad returns the household load in kWh for the hour of day.
func mockHourlyLoad(hour int) float64 {
	return round2(1.5 - math.Cos(2*math.Pi*float64(hour-6)/24))
}

// weekday load multiplier, weekends run higher
func mockDayFactor(d time.Weekday) float64 {
	if d == time.Saturday || d == time.Sunday {
		return 1.25
	}
	return 1.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Dashboard implements Provider.
func (m *Mock) Dashboard(ctx context.Context) (*types.DashboardSnapshot, error) {
	now := m.now().Truncate(time.Hour)

	var today, total float64
	forecast := make([]types.HourlyForecast, 0, 24)
	for i := 0; i < 24; i++ {
		ts := now.Add(time.Duration(i) * time.Hour)
		v := mockHourlyLoad(ts.Hour())
		total += v
		forecast = append(forecast, types.HourlyForecast{
			Timestamp:  ts.Format("2006-01-02T15:04:05"),
			Forecast:   types.Number(v),
			Confidence: []byte(fmt.Sprintf(`{"lower":%g,"upper":%g}`, round2(v*0.9), round2(v*1.1))),
		})
	}
	for h := 0; h <= now.Hour(); h++ {
		today += mockHourlyLoad(h)
	}

	var avgTotal float64
	for _, d := range mockDevices[:4] {
		avgTotal += d.avg
	}
	breakdown := make([]types.ApplianceShare, 0, 4)
	for i, d := range mockDevices[:4] {
		breakdown = append(breakdown, types.ApplianceShare{
			Appliance:   d.name,
			Consumption: types.Number(round2(d.avg * 24)),
			Percentage:  types.Number(math.Round(d.avg/avgTotal*1000) / 10),
			Color:       mockColors[i%len(mockColors)],
		})
	}

	return &types.DashboardSnapshot{
		Metrics: &types.DashboardMetrics{
			TodayConsumption:  types.ConsumptionMetric{Value: types.Number(round2(today)), Trend: types.TrendUp, ChangePercent: 12.5},
			Predicted24hUsage: types.PredictionMetric{Value: types.Number(round2(total)), Model: "Mock", Confidence: 85},
			EnergySaved:       types.SavingsMetric{Value: 1.2, Period: "Today"},
		},
		ApplianceBreakdown:  breakdown,
		EnergyUsageForecast: forecast,
		OptimizationSchedule: &types.OptimizationSchedule{
			OptimalPeriods: []types.SchedulePeriod{
				{Start: 2, End: 6, Type: types.ScheduleKindOptimal, Label: "Low tariff period", CarbonIntensity: 150},
				{Start: 17, End: 21, Type: types.ScheduleKindWarning, Label: "High tariff period", CarbonIntensity: 450},
			},
			Savings: &types.ScheduleSavings{Cost: 18.4, CarbonKg: 9.2},
		},
	}, nil
}

// Appliances implements Provider.
func (m *Mock) Appliances(ctx context.Context) (*types.AppliancesSnapshot, error) {
	// scale each device by how far the current hour is from the daily mean
	scale := mockHourlyLoad(m.now().Hour()) / 1.5

	s := &types.AppliancesSnapshot{Devices: make([]types.Device, 0, len(mockDevices))}
	var total float64
	for _, d := range mockDevices {
		current := round2(d.avg * scale)
		total += current
		s.Devices = append(s.Devices, types.Device{
			DeviceID:           d.id,
			Name:               d.name,
			Location:           d.location,
			CurrentConsumption: types.Number(current),
			AvgConsumption:     types.Number(d.avg),
			Status:             "flexible",
			Flexibility:        d.flexibility,
		})
	}
	s.TotalDevices = len(s.Devices)
	s.TotalConsumption = types.Number(round2(total))
	return s, nil
}

// Forecast implements Provider.
func (m *Mock) Forecast(ctx context.Context) (*types.ForecastSnapshot, error) {
	now := m.now()
	start := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	var daily float64
	for h := 0; h < 24; h++ {
		daily += mockHourlyLoad(h)
	}

	s := &types.ForecastSnapshot{Forecast7Days: make([]types.ForecastDay, 0, 7)}
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		s.Forecast7Days = append(s.Forecast7Days, types.ForecastDay{
			Date:                 day.Format("2006-01-02"),
			Day:                  fmt.Sprint(i + 1),
			PredictedConsumption: types.Number(round2(daily * mockDayFactor(day.Weekday()))),
			Confidence:           0.9,
		})
	}

	type hourLoad struct {
		hour int
		load float64
	}
	hours := make([]hourLoad, 0, 24)
	for h := 0; h < 24; h++ {
		hours = append(hours, hourLoad{h, mockHourlyLoad(h)})
		ts := start.Add(time.Duration(h) * time.Hour)
		s.HourlyForecast = append(s.HourlyForecast, types.HourlyPoint{
			Day:       1,
			Hour:      types.Number(h),
			Value:     types.Number(mockHourlyLoad(h)),
			Timestamp: ts.Format("2006-01-02T15:04:05"),
		})
	}
	sort.SliceStable(hours, func(i, j int) bool {
		return hours[i].load > hours[j].load
	})
	for i, h := range hours[:3] {
		s.PeakPeriods = append(s.PeakPeriods, types.PeakPeriod{
			Time:           fmt.Sprintf("%02d:00 - %02d:00", h.hour, (h.hour+1)%24),
			Date:           fmt.Sprintf("Day %d", i+1),
			PredictedUsage: types.Number(h.load),
		})
	}
	s.PeakValue = types.Number(hours[0].load)
	return s, nil
}
