package insights

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/influxenergy/influx/pkg/types"
)

const (
	minWeekDays         = 7
	highDayMultiple     = 1.1
	highConfidenceFloor = 0.85
)

// GenerateForecastInsights returns up to three sentences about the 7 day
// forecast. If the snapshot has no daily forecast a loading placeholder is
// returned.
func (e *Engine) GenerateForecastInsights(s *types.ForecastSnapshot) []string {
	if s == nil || s.Forecast7Days == nil {
		return LoadingForecastInsights()
	}

	out := []string{}
	days := s.Forecast7Days

	if len(days) >= minWeekDays {
		var sum float64
		for _, d := range days {
			sum += d.Predicted()
		}
		mean := sum / float64(len(days))

		var names []string
		for i, d := range days {
			if d.Predicted() > mean*highDayMultiple {
				names = append(names, e.dayLabel(i, d))
			}
		}
		if len(names) > 0 {
			out = append(out, fmt.Sprintf(
				"Higher consumption expected on %s. Plan heavy tasks for other days.",
				strings.Join(names, ", "),
			))
		}
	}

	if len(s.PeakPeriods) > 0 {
		var sum float64
		for _, p := range s.PeakPeriods {
			sum += p.Usage()
		}
		out = append(out, fmt.Sprintf(
			"Average peak usage: %s kWh. Shift 20%% of load to save $%d/week.",
			formatFixed(sum/float64(len(s.PeakPeriods)), 1),
			WeeklyShiftSavingsDollars,
		))
	}

	if len(days) > 0 {
		var sum float64
		for _, d := range days {
			sum += d.Confidence.Float()
		}
		if avg := sum / float64(len(days)); avg > highConfidenceFloor {
			out = append(out, fmt.Sprintf(
				"Forecast confidence: %s%%. High accuracy for planning.",
				formatFixed(avg*100, 0),
			))
		}
	}

	return out
}

// dayLabel returns the short weekday name of the day's date. Days without a
// parseable date fall back to their day number.
func (e *Engine) dayLabel(i int, d types.ForecastDay) string {
	if ts, ok := e.parseTime(d.Date); ok {
		return ts.Weekday().String()[:3]
	}
	if d.Date != "" {
		return d.Date
	}
	if d.Day != "" {
		return "Day " + d.Day
	}
	return "Day " + strconv.Itoa(i+1)
}
