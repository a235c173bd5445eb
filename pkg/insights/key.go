package insights

import (
	"fmt"
	"math"

	"github.com/influxenergy/influx/pkg/types"
)

// keyRule is a single candidate insight. It is given the number of insights
// produced by earlier rules and returns false if it does not fire.
type keyRule struct {
	name string
	eval func(e *Engine, s *types.DashboardSnapshot, produced int) (types.Insight, bool)
}

// keyRules are evaluated in priority order and the first MaxKeyInsights
// that fire win.
var keyRules = []keyRule{
	{"consumptionTrend", consumptionTrendInsight},
	{"remainingForecast", remainingForecastInsight},
	{"peakHour", peakHourInsight},
	{"savings", savingsInsight},
	{"topConsumer", topConsumerInsight},
	{"optimizationOpportunity", optimizationOpportunityInsight},
}

// GenerateKeyInsights returns at most MaxKeyInsights insights about the
// dashboard snapshot. If the snapshot has no metrics the default set is
// returned.
func (e *Engine) GenerateKeyInsights(s *types.DashboardSnapshot) []types.Insight {
	if s == nil || s.Metrics == nil {
		return DefaultKeyInsights()
	}

	insights := []types.Insight{}
	for _, r := range keyRules {
		if len(insights) == MaxKeyInsights {
			break
		}
		if in, ok := r.eval(e, s, len(insights)); ok {
			insights = append(insights, in)
		}
	}
	return insights
}

func consumptionTrendInsight(_ *Engine, s *types.DashboardSnapshot, _ int) (types.Insight, bool) {
	current := s.Metrics.TodayConsumption.Value.Float()
	change := s.Metrics.TodayConsumption.ChangePercent.Float()
	if current <= 0 || math.Abs(change) <= 10 {
		return types.Insight{}, false
	}
	text := fmt.Sprintf("Usage %s%% higher than yesterday", formatFixed(change, 0))
	if change < 0 {
		text = fmt.Sprintf("Great! Usage %s%% lower than yesterday", formatFixed(math.Abs(change), 0))
	}
	return types.Insight{
		Text:  text,
		Value: fmt.Sprintf("%s kWh used so far", formatFixed(current, 1)),
	}, true
}

func remainingForecastInsight(_ *Engine, s *types.DashboardSnapshot, _ int) (types.Insight, bool) {
	current := s.Metrics.TodayConsumption.Value.Float()
	predicted := s.Metrics.Predicted24hUsage.Value.Float()
	if predicted <= current {
		return types.Insight{}, false
	}
	return types.Insight{
		Text: fmt.Sprintf(
			"%s kWh remaining today (%s%% confidence)",
			formatFixed(predicted-current, 1),
			formatNumber(s.Metrics.Predicted24hUsage.Confidence.Float()),
		),
		Value: fmt.Sprintf("Total forecast: %s kWh", formatFixed(predicted, 1)),
	}, true
}

// peakHourInsight picks the forecast hour with the highest value. Ties go to
// the earliest entry in input order.
func peakHourInsight(e *Engine, s *types.DashboardSnapshot, _ int) (types.Insight, bool) {
	var (
		found    bool
		peakHour int
		peakVal  float64
	)
	for _, f := range s.EnergyUsageForecast {
		ts, ok := e.parseTime(f.Timestamp)
		if !ok {
			continue
		}
		if !found || f.Forecast.Float() > peakVal {
			found = true
			peakHour = ts.Hour()
			peakVal = f.Forecast.Float()
		}
	}
	if !found {
		return types.Insight{}, false
	}
	return types.Insight{
		Text:  fmt.Sprintf("Peak usage expected at %d:00", peakHour),
		Value: fmt.Sprintf("%s kWh/h", formatFixed(peakVal, 2)),
	}, true
}

func savingsInsight(_ *Engine, s *types.DashboardSnapshot, _ int) (types.Insight, bool) {
	saved := s.Metrics.EnergySaved.Value.Float()
	if saved <= 0 {
		return types.Insight{}, false
	}
	period := s.Metrics.EnergySaved.Period
	if period == "" {
		period = "today"
	}
	return types.Insight{
		Text: fmt.Sprintf("%s kWh saved %s", formatFixed(saved, 1), period),
		Value: fmt.Sprintf(
			"$%s • %s lbs CO₂",
			formatFixed(saved*DollarsPerKWH, 2),
			formatFixed(saved*CO2LbsPerKWH, 1),
		),
	}, true
}

// topConsumerInsight assumes the breakdown is sorted descending by
// percentage, as the backend sends it.
func topConsumerInsight(_ *Engine, s *types.DashboardSnapshot, _ int) (types.Insight, bool) {
	if len(s.ApplianceBreakdown) == 0 {
		return types.Insight{}, false
	}
	top := s.ApplianceBreakdown[0]
	if top.Percentage.Float() <= 25 {
		return types.Insight{}, false
	}
	return types.Insight{
		Text: fmt.Sprintf("%s is your top consumer", top.Appliance),
		Value: fmt.Sprintf(
			"%s%% (%s kWh)",
			formatFixed(top.Percentage.Float(), 0),
			formatFixed(top.Consumption.Float(), 1),
		),
	}, true
}

// optimizationOpportunityInsight only fills in when fewer than
// MaxKeyInsights insights were produced by the other rules.
func optimizationOpportunityInsight(_ *Engine, s *types.DashboardSnapshot, produced int) (types.Insight, bool) {
	if produced >= MaxKeyInsights || s.OptimizationSchedule == nil || s.OptimizationSchedule.Savings == nil {
		return types.Insight{}, false
	}
	for _, p := range s.OptimizationSchedule.OptimalPeriods {
		if p.Type != types.ScheduleKindOptimal {
			continue
		}
		return types.Insight{
			Text:  fmt.Sprintf("Shift heavy loads to %s:00-%s:00", formatNumber(p.Start.Float()), formatNumber(p.End.Float())),
			Value: fmt.Sprintf("Save up to $%s", formatFixed(s.OptimizationSchedule.Savings.Cost.Float(), 2)),
		}, true
	}
	return types.Insight{}, false
}
