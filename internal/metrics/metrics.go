// Package metrics provides Prometheus metrics for the sizing service
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sizing metrics
	SizingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorsize_sizing_runs_total",
			Help: "Total number of motor sizing runs",
		},
		[]string{"topology", "status"},
	)

	DiagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorsize_diagnostics_total",
			Help: "Advisory sizing flags raised",
		},
		[]string{"topology", "flag"},
	)

	MotorMass = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "motorsize_motor_mass_kg",
			Help:    "Total BOM mass of sized motors",
			Buckets: []float64{5, 10, 20, 40, 80, 160, 320},
		},
		[]string{"topology"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "motorsize_batch_items",
			Help:    "Number of motors per batch or spreadsheet import",
			Buckets: []float64{1, 5, 10, 50, 100, 500},
		},
	)

	// HTTP metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "motorsize_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
)

// RecordSizing counts one sizing run and the flags it raised.
func RecordSizing(topology string, err error, flags []string, massKg float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SizingRunsTotal.WithLabelValues(topology, status).Inc()
	if err != nil {
		return
	}
	for _, f := range flags {
		DiagnosticsTotal.WithLabelValues(topology, f).Inc()
	}
	MotorMass.WithLabelValues(topology).Observe(massKg)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware observes request latency by method and status code.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		RequestDuration.WithLabelValues(r.Method, strconv.Itoa(rec.code)).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
