// Package refresher periodically fetches snapshots, derives a new insight
// bundle from them and hands it to storage and publishing.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/influxenergy/influx/pkg/insights"
	"github.com/influxenergy/influx/pkg/log"
	"github.com/influxenergy/influx/pkg/publish"
	"github.com/influxenergy/influx/pkg/source"
	"github.com/influxenergy/influx/pkg/storage"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	sourceDashboard  = "dashboard"
	sourceAppliances = "appliances"
	sourceForecast   = "forecast"
)

// Refresher owns the refresh cycle and the latest bundle.
type Refresher struct {
	source   source.Provider
	engine   *insights.Engine
	db       storage.Database
	pub      publish.Publisher
	metrics  *Metrics
	interval time.Duration
	timeout  time.Duration

	now   func() time.Time
	newID func() string

	// refreshMu serializes refresh cycles
	refreshMu sync.Mutex

	mu     sync.RWMutex
	latest *types.Bundle
}

// New returns a Refresher. Metrics are registered with reg.
func New(src source.Provider, engine *insights.Engine, db storage.Database, pub publish.Publisher, reg prometheus.Registerer) *Refresher {
	return &Refresher{
		source:   src,
		engine:   engine,
		db:       db,
		pub:      pub,
		metrics:  NewMetrics(reg),
		interval: 5 * time.Minute,
		timeout:  time.Minute,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Configured returns a Refresher whose timing is set by flags.
func Configured(src source.Provider, engine *insights.Engine, db storage.Database, pub publish.Publisher) *Refresher {
	interval := lflag.Duration("refresh-interval", 5*time.Minute, "How often insights are refreshed from the backend")
	timeout := lflag.Duration("refresh-timeout", 60*time.Second, "Timeout for a single refresh cycle")

	r := New(src, engine, db, pub, prometheus.DefaultRegisterer)
	lflag.Do(func() {
		if *interval <= 0 {
			panic(fmt.Sprintf("refresh-interval must be positive: %s", *interval))
		}
		if *timeout <= 0 {
			panic(fmt.Sprintf("refresh-timeout must be positive: %s", *timeout))
		}
		r.interval = *interval
		r.timeout = *timeout
	})
	return r
}

// Latest returns the most recent bundle, if any.
func (r *Refresher) Latest() (types.Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return types.Bundle{}, false
	}
	return *r.latest, true
}

func (r *Refresher) setLatest(b types.Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = &b
}

// Seed loads the latest stored bundle so it is served before the first
// refresh completes.
func (r *Refresher) Seed(ctx context.Context) error {
	b, err := r.db.GetLatestBundle(ctx)
	if errors.Is(err, storage.ErrBundleNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load latest bundle: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		r.latest = &b
	}
	return nil
}

// Run seeds from storage, refreshes immediately and then on every interval
// until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Seed(ctx); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to seed from storage", slog.Any("error", err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.refreshWithTimeout(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Refresher) refreshWithTimeout(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if _, err := r.Refresh(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "refresh failed", slog.Any("error", err))
	}
}

type fetchResult[T any] struct {
	snapshot *T
	err      error
}

func fetch[T any](ctx context.Context, wg *sync.WaitGroup, out *fetchResult[T], fn func(context.Context) (*T, error)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		out.snapshot, out.err = fn(ctx)
	}()
}

// Refresh runs one cycle now and returns the new bundle. A source that fails
// keeps the previous bundle's outputs for that source. The bundle is
// returned and served even if storing it fails.
func (r *Refresher) Refresh(ctx context.Context) (types.Bundle, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	var (
		wg         sync.WaitGroup
		dashboard  fetchResult[types.DashboardSnapshot]
		appliances fetchResult[types.AppliancesSnapshot]
		forecast   fetchResult[types.ForecastSnapshot]
	)
	fetch(ctx, &wg, &dashboard, r.source.Dashboard)
	fetch(ctx, &wg, &appliances, r.source.Appliances)
	fetch(ctx, &wg, &forecast, r.source.Forecast)
	wg.Wait()

	now := r.now().UTC()
	prev, hasPrev := r.Latest()
	b := types.Bundle{
		ID:          r.newID(),
		GeneratedAt: now,
	}
	ctx = log.WithAttrs(ctx, slog.String("bundleID", b.ID))

	if dashboard.err == nil {
		b.KeyInsights = r.engine.GenerateKeyInsights(dashboard.snapshot)
		b.Schedule = r.engine.GenerateOptimizationSchedule(dashboard.snapshot)
	} else if hasPrev {
		b.KeyInsights = prev.KeyInsights
		b.Schedule = prev.Schedule
	} else {
		b.KeyInsights = r.engine.GenerateKeyInsights(nil)
		b.Schedule = r.engine.GenerateOptimizationSchedule(nil)
	}
	b.Sources.Dashboard = r.status(ctx, sourceDashboard, dashboard.err, now, prev.Sources.Dashboard)

	if appliances.err == nil {
		b.Recommendations = r.engine.GenerateDeviceRecommendations(appliances.snapshot)
	} else if hasPrev {
		b.Recommendations = prev.Recommendations
	} else {
		b.Recommendations = r.engine.GenerateDeviceRecommendations(nil)
	}
	b.Sources.Appliances = r.status(ctx, sourceAppliances, appliances.err, now, prev.Sources.Appliances)

	if forecast.err == nil {
		b.ForecastInsights = r.engine.GenerateForecastInsights(forecast.snapshot)
	} else if hasPrev {
		b.ForecastInsights = prev.ForecastInsights
	} else {
		b.ForecastInsights = r.engine.GenerateForecastInsights(nil)
	}
	b.Sources.Forecast = r.status(ctx, sourceForecast, forecast.err, now, prev.Sources.Forecast)

	r.setLatest(b)
	r.metrics.lastRefresh.Set(float64(now.Unix()))

	result := "ok"
	if dashboard.err != nil || appliances.err != nil || forecast.err != nil {
		result = "partial"
	}

	if err := r.db.PutBundle(ctx, b); err != nil {
		r.metrics.refreshTotal.WithLabelValues("error").Inc()
		return b, fmt.Errorf("failed to store bundle: %w", err)
	}

	// a publish failure doesn't fail the cycle since the bundle is stored
	err := r.pub.Publish(ctx, b)
	r.metrics.publishTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to publish bundle", slog.Any("error", err))
	}

	r.metrics.refreshTotal.WithLabelValues(result).Inc()
	log.Ctx(ctx).InfoContext(
		ctx,
		"refreshed insights",
		slog.String("result", result),
		slog.Bool("dashboardOK", b.Sources.Dashboard.OK),
		slog.Bool("appliancesOK", b.Sources.Appliances.OK),
		slog.Bool("forecastOK", b.Sources.Forecast.OK),
	)
	return b, nil
}

// status records the fetch outcome of one source. A failed fetch keeps the
// time of the last successful one.
func (r *Refresher) status(ctx context.Context, name string, err error, now time.Time, prev types.SourceStatus) types.SourceStatus {
	r.metrics.sourceFetchTotal.WithLabelValues(name, resultLabel(err)).Inc()
	if err == nil {
		return types.SourceStatus{OK: true, FetchedAt: now}
	}
	log.Ctx(ctx).WarnContext(ctx, "failed to fetch snapshot", slog.String("source", name), slog.Any("error", err))
	return types.SourceStatus{OK: false, FetchedAt: prev.FetchedAt, Error: err.Error()}
}
