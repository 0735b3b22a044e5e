package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ValidationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillcompass_validation_duration_seconds",
			Help:    "Validation processing duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"track"},
	)

	ValidationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillcompass_validation_total",
			Help: "Total number of validations processed",
		},
		[]string{"track", "status"},
	)

	GapsPerValidation = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skillcompass_gaps_per_validation",
			Help:    "Number of skill gaps found per validation",
			Buckets: []float64{0, 1, 2, 5, 8, 12, 20},
		},
	)

	CoveragePercent = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillcompass_coverage_percent",
			Help:    "Coverage percentages returned to callers",
			Buckets: []float64{0, 10, 25, 50, 75, 90, 100},
		},
		[]string{"track"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillcompass_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillcompass_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillcompass_provider_requests_total",
			Help: "Total demand provider lookups",
		},
		[]string{"provider", "status"},
	)

	DemandCategory = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillcompass_demand_category_total",
			Help: "Demand categories assigned to gaps",
		},
		[]string{"category"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "skillcompass_breaker_state",
			Help: "Provider circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)

	TrendRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skillcompass_trend_requests_total",
			Help: "Total skill trend lookups",
		},
	)
)

func Init() {
	prometheus.MustRegister(ValidationDuration)
	prometheus.MustRegister(ValidationTotal)
	prometheus.MustRegister(GapsPerValidation)
	prometheus.MustRegister(CoveragePercent)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ProviderRequests)
	prometheus.MustRegister(DemandCategory)
	prometheus.MustRegister(BreakerState)
	prometheus.MustRegister(TrendRequests)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
