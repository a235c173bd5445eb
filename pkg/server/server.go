package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/handlers"
	"github.com/influxenergy/influx/pkg/insights"
	"github.com/influxenergy/influx/pkg/log"
	"github.com/influxenergy/influx/pkg/storage"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresher produces insight bundles.
type Refresher interface {
	Latest() (types.Bundle, bool)
	Refresh(ctx context.Context) (types.Bundle, error)
}

// Server handles the HTTP API for the InFlux insights service.
type Server struct {
	refresher Refresher
	storage   storage.Database
	engine    *insights.Engine

	listenAddr     string
	corsOrigins    []string
	serverName     string
	metricsHandler http.Handler
	httpServer     *http.Server
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(r Refresher, s storage.Database, e *insights.Engine) *Server {
	srv := &Server{
		refresher:      r,
		storage:        s,
		engine:         e,
		serverName:     "influx",
		metricsHandler: promhttp.Handler(),
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	corsOrigins := lflag.String("cors-origins", "*", "comma-delimited list of origins allowed to call the API")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		for _, o := range strings.Split(*corsOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				srv.corsOrigins = append(srv.corsOrigins, o)
			}
		}
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/insights", s.handleInsights)
	apiMux.HandleFunc("GET /api/insights/key", s.handleInsightsPart(func(b types.Bundle) any { return b.KeyInsights }))
	apiMux.HandleFunc("GET /api/insights/schedule", s.handleInsightsPart(func(b types.Bundle) any { return b.Schedule }))
	apiMux.HandleFunc("GET /api/insights/recommendations", s.handleInsightsPart(func(b types.Bundle) any { return b.Recommendations }))
	apiMux.HandleFunc("GET /api/insights/forecast", s.handleInsightsPart(func(b types.Bundle) any { return b.ForecastInsights }))
	apiMux.HandleFunc("GET /api/insights/history", s.handleHistory)
	apiMux.HandleFunc("POST /api/refresh", s.handleRefresh)
	apiMux.HandleFunc("POST /api/evaluate/{kind}", s.handleEvaluate)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	mux := http.NewServeMux()
	mux.Handle("/api/", cors(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.metricsHandler)
	return s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(mux)))
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}
