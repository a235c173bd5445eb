package insights

import (
	"fmt"
	"sort"

	"github.com/influxenergy/influx/pkg/types"
)

const (
	// offPeakHours is the number of lowest-usage hours considered for the
	// optimal block.
	offPeakHours = 6
	// peakHours is the number of highest-usage hours considered for the
	// warning block.
	peakHours = 4
	// maxRunGap is the largest difference between consecutive off-peak hours
	// that still counts as one block, so a single missing hour is tolerated.
	maxRunGap = 2
)

type hourValue struct {
	hour  int
	value float64
	index int
}

// GenerateOptimizationSchedule derives an optimal block from the lowest
// forecast hours and a warning block from the highest ones. If the forecast
// is empty, or neither block can be formed, the default schedule is returned.
//
// Hours are compared numerically within [0,23]. A run of low-usage hours
// that crosses midnight is not merged into one block.
func (e *Engine) GenerateOptimizationSchedule(s *types.DashboardSnapshot) []types.ScheduleBlock {
	if s == nil {
		return DefaultSchedule()
	}

	hours := make([]hourValue, 0, len(s.EnergyUsageForecast))
	for i, f := range s.EnergyUsageForecast {
		ts, ok := e.parseTime(f.Timestamp)
		if !ok {
			continue
		}
		hours = append(hours, hourValue{hour: ts.Hour(), value: f.Forecast.Float(), index: i})
	}
	if len(hours) == 0 {
		return DefaultSchedule()
	}

	// ascending by value, ties broken by the lower hour and then input order
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].value != hours[j].value {
			return hours[i].value < hours[j].value
		}
		if hours[i].hour != hours[j].hour {
			return hours[i].hour < hours[j].hour
		}
		return hours[i].index < hours[j].index
	})

	var blocks []types.ScheduleBlock

	optimal, hasOptimal := offPeakBlock(hours)
	if hasOptimal {
		blocks = append(blocks, optimal)
	}

	// hours already inside the optimal block can't also be a warning
	candidates := hours
	if hasOptimal {
		candidates = make([]hourValue, 0, len(hours))
		for _, h := range hours {
			if h.hour < optimal.Start || h.hour > optimal.End {
				candidates = append(candidates, h)
			}
		}
	}
	if warning, ok := peakBlock(candidates); ok {
		blocks = append(blocks, warning)
	}

	if len(blocks) == 0 {
		return DefaultSchedule()
	}
	return blocks
}

// offPeakBlock finds the widest near-contiguous run among the lowest
// offPeakHours entries of sorted. Ties go to the earliest run.
func offPeakBlock(sorted []hourValue) (types.ScheduleBlock, bool) {
	chosen := sortedByHour(sorted[:min(offPeakHours, len(sorted))])
	if len(chosen) < 2 {
		return types.ScheduleBlock{}, false
	}

	span := func(lo, hi int) int {
		return chosen[hi].hour - chosen[lo].hour
	}
	bestLo, bestHi, curLo := 0, 0, 0
	for i := 1; i < len(chosen); i++ {
		if chosen[i].hour <= chosen[i-1].hour+maxRunGap {
			continue
		}
		if span(curLo, i-1) > span(bestLo, bestHi) {
			bestLo, bestHi = curLo, i-1
		}
		curLo = i
	}
	if last := len(chosen) - 1; span(curLo, last) > span(bestLo, bestHi) {
		bestLo, bestHi = curLo, last
	}

	start, end := chosen[bestLo].hour, chosen[bestHi].hour
	return types.ScheduleBlock{
		Start: start,
		End:   end,
		Type:  types.ScheduleKindOptimal,
		Label: fmt.Sprintf(
			"Best time for heavy loads: %d:00-%d:00 (avg %s kWh/h)",
			start,
			end,
			formatFixed(averageValue(chosen[bestLo:bestHi+1]), 2),
		),
	}, true
}

// peakBlock spans the highest peakHours entries of sorted.
func peakBlock(sorted []hourValue) (types.ScheduleBlock, bool) {
	chosen := sortedByHour(sorted[len(sorted)-min(peakHours, len(sorted)):])
	if len(chosen) < 2 {
		return types.ScheduleBlock{}, false
	}
	start, end := chosen[0].hour, chosen[len(chosen)-1].hour
	return types.ScheduleBlock{
		Start: start,
		End:   end,
		Type:  types.ScheduleKindWarning,
		Label: fmt.Sprintf(
			"High demand: %d:00-%d:00 - avoid heavy loads (avg %s kWh/h)",
			start,
			end,
			formatFixed(averageValue(chosen), 2),
		),
	}, true
}

// sortedByHour returns a copy of hours sorted by hour and then input order.
func sortedByHour(hours []hourValue) []hourValue {
	out := append([]hourValue(nil), hours...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].hour != out[j].hour {
			return out[i].hour < out[j].hour
		}
		return out[i].index < out[j].index
	})
	return out
}

func averageValue(hours []hourValue) float64 {
	if len(hours) == 0 {
		return 0
	}
	var sum float64
	for _, h := range hours {
		sum += h.value
	}
	return sum / float64(len(hours))
}
