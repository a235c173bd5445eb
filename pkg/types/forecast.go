package types

// ForecastSnapshot is the payload of the backend's /api/forecast endpoint.
// Forecast7Days is nil when the backend omitted it.
type ForecastSnapshot struct {
	Forecast7Days  []ForecastDay `json:"forecast_7_days"`
	PeakPeriods    []PeakPeriod  `json:"peak_periods,omitempty"`
	PeakValue      Number        `json:"peak_value,omitempty"`
	HourlyForecast []HourlyPoint `json:"hourly_forecast,omitempty"`
}

// ForecastDay is the prediction for a single day. Confidence is in [0,1].
//
// The backend sends the prediction as "value" along with a 1-based "day"
// index instead of "predicted_consumption" and "date", so both are accepted.
type ForecastDay struct {
	Date                 string `json:"date,omitempty"`
	Day                  string `json:"day,omitempty"`
	PredictedConsumption Number `json:"predicted_consumption,omitempty"`
	Value                Number `json:"value,omitempty"`
	Confidence           Number `json:"confidence"`
}

// Predicted returns the predicted consumption in kWh.
func (d ForecastDay) Predicted() float64 {
	if d.PredictedConsumption != 0 {
		return d.PredictedConsumption.Float()
	}
	return d.Value.Float()
}

// PeakPeriod is a predicted peak hour. Value may be a display string such
// as "3.21 kW/h".
type PeakPeriod struct {
	Time           string `json:"time,omitempty"`
	Date           string `json:"date,omitempty"`
	PredictedUsage Number `json:"predicted_usage,omitempty"`
	Value          Number `json:"value,omitempty"`
}

// Usage returns the predicted usage in kWh.
func (p PeakPeriod) Usage() float64 {
	if p.PredictedUsage != 0 {
		return p.PredictedUsage.Float()
	}
	return p.Value.Float()
}

// HourlyPoint is one hour of the 7 day hourly forecast.
type HourlyPoint struct {
	Day       Number `json:"day"`
	Hour      Number `json:"hour"`
	Value     Number `json:"value"`
	Timestamp string `json:"timestamp"`
}
