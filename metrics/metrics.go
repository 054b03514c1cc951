// Package metrics provides Prometheus metrics for the projectprefs server.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CreativeUnicorns/projectprefs"
)

// Store operation results.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultQuota    = "quota_exceeded"
	ResultError    = "error"
)

// Metrics holds all Prometheus metrics of the server, registered on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StoreOperations     *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projectprefs_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projectprefs_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projectprefs_store_operations_total",
			Help: "Total number of preference store operations by result",
		},
		[]string{"op", "result"},
	)

	m.Registry.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.StoreOperations)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// InstrumentStore wraps store so every operation is counted by result.
// Failures the preference facade discards stay visible this way.
func (m *Metrics) InstrumentStore(store projectprefs.Store) projectprefs.Store {
	return &instrumentedStore{next: store, ops: m.StoreOperations}
}

type instrumentedStore struct {
	next projectprefs.Store
	ops  *prometheus.CounterVec
}

func (s *instrumentedStore) GetItem(ctx context.Context, key string) (string, error) {
	v, err := s.next.GetItem(ctx, key)
	s.ops.WithLabelValues("get", result(err)).Inc()
	return v, err
}

func (s *instrumentedStore) SetItem(ctx context.Context, key, value string) error {
	err := s.next.SetItem(ctx, key, value)
	s.ops.WithLabelValues("set", result(err)).Inc()
	return err
}

func (s *instrumentedStore) RemoveItem(ctx context.Context, key string) error {
	err := s.next.RemoveItem(ctx, key)
	s.ops.WithLabelValues("remove", result(err)).Inc()
	return err
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, projectprefs.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, projectprefs.ErrQuotaExceeded):
		return ResultQuota
	default:
		return ResultError
	}
}
