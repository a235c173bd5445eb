package types

import "time"

// Insight is a short observation along with its supporting value.
type Insight struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// ScheduleKind classifies a schedule block.
type ScheduleKind string

const (
	ScheduleKindOptimal ScheduleKind = "optimal"
	ScheduleKindWarning ScheduleKind = "warning"
)

// ScheduleBlock is a labeled range of hours in [0,23]. End is inclusive.
type ScheduleBlock struct {
	Start int          `json:"start"`
	End   int          `json:"end"`
	Type  ScheduleKind `json:"type"`
	Label string       `json:"label"`
}

// SourceStatus records the outcome of the last fetch of a snapshot.
// FetchedAt is the time of the last successful fetch.
type SourceStatus struct {
	OK        bool      `json:"ok"`
	FetchedAt time.Time `json:"fetchedAt,omitzero"`
	Error     string    `json:"error,omitempty"`
}

// BundleSources holds the status of each snapshot used to build a Bundle.
type BundleSources struct {
	Dashboard  SourceStatus `json:"dashboard"`
	Appliances SourceStatus `json:"appliances"`
	Forecast   SourceStatus `json:"forecast"`
}

// Bundle is the full set of derived outputs from a single refresh.
type Bundle struct {
	ID               string          `json:"id"`
	GeneratedAt      time.Time       `json:"generatedAt"`
	KeyInsights      []Insight       `json:"keyInsights"`
	Schedule         []ScheduleBlock `json:"schedule"`
	Recommendations  []string        `json:"recommendations"`
	ForecastInsights []string        `json:"forecastInsights"`
	Sources          BundleSources   `json:"sources"`
}
