package metrics

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder records request metrics into its own registry.
type PrometheusRecorder struct {
	registry *prom.Registry
	total    *prom.CounterVec
	seconds  *prom.HistogramVec
}

// NewPrometheusRecorder creates a recorder with a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prom.NewRegistry(),
		total: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "graphcommons",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		}, []string{"op", "success"}),
		seconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "graphcommons",
			Name:      "request_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prom.DefBuckets,
		}, []string{"op", "success"}),
	}
	p.registry.MustRegister(p.total, p.seconds)
	return p
}

func (p *PrometheusRecorder) IncRequestTotal(op string, success bool) {
	p.total.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

func (p *PrometheusRecorder) ObserveRequestSeconds(op string, success bool, seconds float64) {
	p.seconds.WithLabelValues(op, strconv.FormatBool(success)).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve binds addr and exposes a Prometheus recorder on it at /metrics,
// with /healthz answering 200. The recorder becomes the default only once
// the listener is bound. The server runs until the process exits.
func Serve(addr string) (*PrometheusRecorder, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for metrics on %s: %w", addr, err)
	}

	p := NewPrometheusRecorder()
	SetRecorder(p)

	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() { _ = http.Serve(ln, mux) }()
	return p, nil
}
