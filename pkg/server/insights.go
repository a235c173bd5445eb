package server

import (
	"log/slog"
	"net/http"

	"github.com/influxenergy/influx/pkg/log"
	"github.com/influxenergy/influx/pkg/types"
)

const errNoInsights = "insights are not available yet"

func (s *Server) latestBundle(w http.ResponseWriter) (types.Bundle, bool) {
	b, ok := s.refresher.Latest()
	if !ok {
		w.Header().Set("Retry-After", "30")
		writeJSONError(w, errNoInsights, http.StatusServiceUnavailable)
		return types.Bundle{}, false
	}
	return b, true
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	b, ok := s.latestBundle(w)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, b)
}

// handleInsightsPart serves one field of the latest bundle.
func (s *Server) handleInsightsPart(part func(types.Bundle) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := s.latestBundle(w)
		if !ok {
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		writeJSON(w, part(b))
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, err := s.refresher.Refresh(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to refresh insights", slog.Any("error", err))
		writeJSONError(w, "failed to refresh insights", http.StatusInternalServerError)
		return
	}
	writeJSON(w, b)
}
