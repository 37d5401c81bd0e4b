package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SkuMetrics holds Prometheus metrics for the SKU engine.
// All methods are safe to call on a nil *SkuMetrics.
type SkuMetrics struct {
	// Generation
	SkusGenerated   *prometheus.CounterVec
	CollisionSuffix prometheus.Histogram

	// Variant selection
	Selections *prometheus.CounterVec

	// Lookups
	CacheLookups   *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	LookupErrors   *prometheus.CounterVec

	// Writes
	SkuWrites *prometheus.CounterVec
}

// NewSkuMetrics creates the SKU metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewSkuMetrics(namespace string, reg prometheus.Registerer) *SkuMetrics {
	if namespace == "" {
		namespace = "skuengine"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	subsystem := "sku"
	factory := promauto.With(reg)

	return &SkuMetrics{
		// =======================================================================
		// Generation
		// =======================================================================
		SkusGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "generated_total",
				Help:      "Total SKUs generated from patterns",
			},
			[]string{"collided"}, // collided: true, false
		),
		CollisionSuffix: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "collision_suffix",
				Help:      "Numeric suffix needed to make a colliding SKU unique",
				Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
			},
		),

		// =======================================================================
		// Variant selection
		// =======================================================================
		Selections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "selections_total",
				Help:      "Variant selections resolved, by outcome",
			},
			[]string{"outcome"}, // outcome: base, unavailable, not_matched, out_of_stock, matched
		),

		// =======================================================================
		// Lookups
		// =======================================================================
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_lookups_total",
				Help:      "SKU lookup cache hits and misses",
			},
			[]string{"cache", "result"}, // cache: list, count; result: hit, miss
		),
		LookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lookup_duration_seconds",
				Help:      "SKU storage query duration",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query"}, // query: exists, list, count, product
		),
		LookupErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lookup_errors_total",
				Help:      "SKU storage query failures",
			},
			[]string{"query"},
		),

		// =======================================================================
		// Writes
		// =======================================================================
		SkuWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "writes_total",
				Help:      "SKU rows written",
			},
			[]string{"operation"}, // operation: add, delete
		),
	}
}

// RecordGenerated records a generated SKU and the collision suffix it needed.
func (m *SkuMetrics) RecordGenerated(suffix int) {
	if m == nil {
		return
	}
	m.SkusGenerated.WithLabelValues(strconv.FormatBool(suffix > 0)).Inc()
	if suffix > 0 {
		m.CollisionSuffix.Observe(float64(suffix))
	}
}

// RecordSelection records a resolved selection outcome.
func (m *SkuMetrics) RecordSelection(outcome string) {
	if m == nil {
		return
	}
	m.Selections.WithLabelValues(outcome).Inc()
}

// RecordCache records a cache hit or miss.
func (m *SkuMetrics) RecordCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

// ObserveLookup records the duration of a storage query started at start.
func (m *SkuMetrics) ObserveLookup(query string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.LookupDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	if err != nil {
		m.LookupErrors.WithLabelValues(query).Inc()
	}
}

// RecordWrite records rows written by operation.
func (m *SkuMetrics) RecordWrite(operation string, rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.SkuWrites.WithLabelValues(operation).Add(float64(rows))
}
