// Package insights turns dashboard, appliance and forecast snapshots into
// human-readable insights, an optimization schedule and device
// recommendations.
//
// Every function in this package is pure: the output depends only on the
// snapshot and the Engine's location, and no input (including nil) causes a
// panic or an error. Absent fields are treated as zero or empty and absent
// top-level data yields a fixed default set.
package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
)

// Display heuristics. These are approximations baked into the formatted
// strings, not metered values.
const (
	// DollarsPerKWH converts saved energy into an approximate cost saving.
	DollarsPerKWH = 0.15
	// CO2LbsPerKWH converts saved energy into approximate CO2 avoided.
	CO2LbsPerKWH = 0.92
	// OffPeakSavingsPercent is quoted for shifting high-power devices.
	OffPeakSavingsPercent = 12
	// WeeklyShiftSavingsDollars is quoted for shifting peak load.
	WeeklyShiftSavingsDollars = 12
)

// Output caps.
const (
	MaxKeyInsights     = 4
	MaxRecommendations = 6
)

// Engine derives insights from snapshots. The zero value is not usable, use
// New or Configured.
type Engine struct {
	location *time.Location
}

// New returns an Engine that reads hours and weekdays in loc. A nil loc
// means time.Local.
func New(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{location: loc}
}

// Configured returns an Engine whose location is set by the
// insights-timezone flag.
func Configured() *Engine {
	tz := lflag.String("insights-timezone", "", "IANA timezone used to derive hours and weekdays from forecast timestamps (defaults to the local timezone)")

	e := New(nil)
	lflag.Do(func() {
		if *tz == "" {
			return
		}
		loc, err := time.LoadLocation(*tz)
		if err != nil {
			panic(fmt.Sprintf("invalid insights-timezone (%s): %v", *tz, err))
		}
		e.location = loc
	})
	return e
}

// Location returns the location the Engine reads timestamps in.
func (e *Engine) Location() *time.Location {
	return e.location
}

var defaultEngine = New(nil)

// GenerateKeyInsights calls Engine.GenerateKeyInsights on an Engine in the
// local timezone.
func GenerateKeyInsights(s *types.DashboardSnapshot) []types.Insight {
	return defaultEngine.GenerateKeyInsights(s)
}

// GenerateOptimizationSchedule calls Engine.GenerateOptimizationSchedule on
// an Engine in the local timezone.
func GenerateOptimizationSchedule(s *types.DashboardSnapshot) []types.ScheduleBlock {
	return defaultEngine.GenerateOptimizationSchedule(s)
}

// GenerateDeviceRecommendations calls Engine.GenerateDeviceRecommendations on
// an Engine in the local timezone.
func GenerateDeviceRecommendations(s *types.AppliancesSnapshot) []string {
	return defaultEngine.GenerateDeviceRecommendations(s)
}

// GenerateForecastInsights calls Engine.GenerateForecastInsights on an Engine
// in the local timezone.
func GenerateForecastInsights(s *types.ForecastSnapshot) []string {
	return defaultEngine.GenerateForecastInsights(s)
}

// naive layouts are interpreted in the Engine's location. Fractional seconds
// are accepted after the seconds field even though the layouts omit them.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime parses an RFC3339 or naive ISO 8601 timestamp and returns it in
// the Engine's location.
func (e *Engine) parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(e.location), true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, e.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
