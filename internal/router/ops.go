package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dukerupert/skuengine/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthTimeout bounds a single health check.
const HealthTimeout = 2 * time.Second

// Checker reports whether a dependency is usable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to the Checker interface.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// OpsConfig configures the operational endpoints.
type OpsConfig struct {
	Gatherer prometheus.Gatherer // nil serves the default registry
	Checks   map[string]Checker
	Logger   *slog.Logger

	// HTTP records request metrics when set.
	HTTP *telemetry.HTTPMetrics
}

// NewOps returns a router serving GET /metrics and GET /healthz.
func NewOps(cfg OpsConfig) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := New(Recovery(cfg.Logger), RequestID, cfg.HTTP.Middleware, Logger(cfg.Logger))
	r.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", Health(cfg.Checks))
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health runs every check and answers 200 when all pass, 503 otherwise.
func Health(checks map[string]Checker) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		code := http.StatusOK

		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), HealthTimeout)
			err := checks[name].Check(ctx)
			cancel()

			if err != nil {
				resp.Status = "unavailable"
				resp.Checks[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
