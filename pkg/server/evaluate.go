package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/influxenergy/influx/pkg/types"
)

const maxEvaluateBody = 1 << 20

// decodeSnapshot decodes the request body into v and reports a 400 on
// failure.
func decodeSnapshot(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEvaluateBody))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		writeJSONError(w, "invalid snapshot: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// handleEvaluate runs the engine on a posted snapshot without touching the
// stored bundles.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	switch kind := r.PathValue("kind"); kind {
	case "key":
		var snap types.DashboardSnapshot
		if !decodeSnapshot(w, r, &snap) {
			return
		}
		writeJSON(w, s.engine.GenerateKeyInsights(&snap))
	case "schedule":
		var snap types.DashboardSnapshot
		if !decodeSnapshot(w, r, &snap) {
			return
		}
		writeJSON(w, s.engine.GenerateOptimizationSchedule(&snap))
	case "recommendations":
		var snap types.AppliancesSnapshot
		if !decodeSnapshot(w, r, &snap) {
			return
		}
		writeJSON(w, s.engine.GenerateDeviceRecommendations(&snap))
	case "forecast":
		var snap types.ForecastSnapshot
		if !decodeSnapshot(w, r, &snap) {
			return
		}
		writeJSON(w, s.engine.GenerateForecastInsights(&snap))
	default:
		writeJSONError(w, "unknown evaluation kind: "+kind, http.StatusNotFound)
	}
}
