package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/influxenergy/influx/pkg/common"
	"github.com/influxenergy/influx/pkg/log"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
)

const (
	dashboardPath  = "/api/dashboard"
	appliancesPath = "/api/appliances"
	forecastPath   = "/api/forecast"
)

// StatusError is returned when the backend answers with a non-200 status.
// Detail is the backend's "detail" message when it sent one.
type StatusError struct {
	Path   string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s returned status %d: %s", e.Path, e.Code, e.Detail)
	}
	return fmt.Sprintf("backend %s returned status %d", e.Path, e.Code)
}

// Backend implements Provider against the ML backend's HTTP API.
type Backend struct {
	apiURL string
	client *http.Client
}

// NewBackend returns a Backend for the API at apiURL.
func NewBackend(apiURL string, timeout time.Duration) *Backend {
	return &Backend{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: common.HTTPClient(timeout),
	}
}

// configuredBackend sets up flags for the backend and returns the instance.
func configuredBackend() *Backend {
	apiURL := lflag.String("backend-api-url", "http://localhost:8000", "Base URL of the ML backend API")
	timeout := lflag.Duration("backend-timeout", 30*time.Second, "Timeout for each request to the ML backend")

	b := &Backend{}
	lflag.Do(func() {
		*b = *NewBackend(*apiURL, *timeout)
	})
	return b
}

// Validate ensures the configuration is valid.
func (b *Backend) Validate() error {
	if b.apiURL == "" {
		return fmt.Errorf("backend-api-url is required")
	}
	u, err := url.Parse(b.apiURL)
	if err != nil {
		return fmt.Errorf("failed to parse backend url (%s): %w", b.apiURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend url must be http or https: %s", b.apiURL)
	}
	return nil
}

// Dashboard implements Provider.
func (b *Backend) Dashboard(ctx context.Context) (*types.DashboardSnapshot, error) {
	var s types.DashboardSnapshot
	if err := b.get(ctx, dashboardPath, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Appliances implements Provider.
func (b *Backend) Appliances(ctx context.Context) (*types.AppliancesSnapshot, error) {
	var s types.AppliancesSnapshot
	if err := b.get(ctx, appliancesPath, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Forecast implements Provider.
func (b *Backend) Forecast(ctx context.Context) (*types.ForecastSnapshot, error) {
	var s types.ForecastSnapshot
	if err := b.get(ctx, forecastPath, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *Backend) get(ctx context.Context, path string, out any) error {
	u := b.apiURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	log.Ctx(ctx).DebugContext(ctx, "fetching from backend", slog.String("url", u))

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{Path: path, Code: resp.StatusCode}
		var body struct {
			Detail string `json:"detail"`
		}
		// the backend reports failures as {"detail": "..."}
		if raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil {
			if json.Unmarshal(raw, &body) == nil {
				serr.Detail = body.Detail
			}
		}
		return serr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to decode backend response", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
