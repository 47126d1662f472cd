package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alucardeht/home-display-agent/internal/logger"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry        *prometheus.Registry
	invocations     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	backendRequests *prometheus.CounterVec
}

func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "home_display_tool_invocations_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "outcome"}, // outcome: success or an error kind
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "home_display_tool_duration_seconds",
				Help:    "Tool invocation duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"tool"},
		),
		backendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "home_display_backend_requests_total",
				Help: "Outbound backend requests by response code (0 when no response)",
			},
			[]string{"backend", "method", "code"},
		),
	}

	reg.MustRegister(m.invocations, m.duration, m.backendRequests)
	return m
}

func (m *Metrics) ObserveInvocation(tool, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(tool, outcome).Inc()
	m.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRequest(backend, method string, code int) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(backend, method, strconv.Itoa(code)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.ForComponent("metrics").Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
