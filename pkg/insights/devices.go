package insights

import (
	"fmt"

	"github.com/influxenergy/influx/pkg/types"
)

const (
	highPowerAvgKWH     = 2.0
	anomalyMultiple     = 1.2
	smartPlugFleetSize  = 8
	staggerTotalLoadKWH = 5.0
)

// GenerateDeviceRecommendations returns at most MaxRecommendations
// recommendations. Per-device rules are applied in device order and the
// fleet-level rules follow. If the snapshot has no device list the default
// set is returned.
func (e *Engine) GenerateDeviceRecommendations(s *types.AppliancesSnapshot) []string {
	if s == nil || s.Devices == nil {
		return DefaultRecommendations()
	}

	recs := []string{}
	var totalCurrent float64
	for _, d := range s.Devices {
		name := d.DisplayName()
		avg := d.AvgConsumption.Float()
		current := d.CurrentConsumption.Float()
		totalCurrent += current

		if avg > highPowerAvgKWH {
			recs = append(recs, fmt.Sprintf(
				"%s is a high-power device. Schedule during off-peak hours for %d%% savings.",
				name,
				OffPeakSavingsPercent,
			))
		}
		// a device with no average has nothing to compare against
		if avg > 0 && current > avg*anomalyMultiple {
			recs = append(recs, fmt.Sprintf(
				"%s is using %s%% more than usual. Check for issues.",
				name,
				formatFixed((current/avg-1)*100, 0),
			))
		}
		if d.Flexibility == types.FlexibilityHigh {
			recs = append(recs, fmt.Sprintf("%s can be scheduled flexibly. Move to 2-6 AM for optimal savings.", name))
		}
	}

	if len(s.Devices) >= smartPlugFleetSize {
		recs = append(recs, "With 10+ devices, consider smart plugs to automate energy optimization.")
	}
	if totalCurrent > staggerTotalLoadKWH {
		recs = append(recs, fmt.Sprintf(
			"Current total load is %s kWh. Stagger device usage to reduce peak demand.",
			formatFixed(totalCurrent, 1),
		))
	}

	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}
