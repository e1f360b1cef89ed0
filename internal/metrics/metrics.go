// Package metrics exposes client events as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"strconv"

	"github.com/hanpama/gitminer/internal/eventbus"
	"github.com/hanpama/gitminer/internal/events"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelStatus = "status"
	labelProbe  = "probe"
	labelResult = "result"
)

// Metrics holds the collectors fed by the client events.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	timeouts        *prometheus.CounterVec
	executions      *prometheus.CounterVec
	throttleSeconds prometheus.Counter
	throttles       prometheus.Counter
	remaining       prometheus.Gauge
	lastCost        prometheus.Gauge
	pages           prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	var m Metrics

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gitminer_github_requests_total",
		Help: "Number of HTTP attempts against the GraphQL endpoint, by status code.",
	}, []string{labelStatus, labelProbe})
	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gitminer_github_request_duration_seconds",
		Help:    "Duration of HTTP attempts against the GraphQL endpoint.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{labelProbe})
	m.timeouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gitminer_github_request_timeouts_total",
		Help: "Number of HTTP attempts that hit the per-attempt timeout.",
	}, []string{labelProbe})
	m.executions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gitminer_github_executions_total",
		Help: "Number of document executions, by result.",
	}, []string{labelResult})
	m.throttles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gitminer_github_throttles_total",
		Help: "Number of times the client waited for the rate limit to reset.",
	})
	m.throttleSeconds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gitminer_github_throttle_seconds_total",
		Help: "Time spent waiting for the rate limit to reset.",
	})
	m.remaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gitminer_github_rate_limit_remaining",
		Help: "Remaining rate limit points reported by the last cost probe.",
	})
	m.lastCost = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gitminer_github_query_cost",
		Help: "Cost of the last probed query.",
	})
	m.pages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gitminer_github_pages_total",
		Help: "Number of pages fetched for paginated documents.",
	})

	if reg != nil {
		m.requests = mustRegisterOrGet(reg, m.requests).(*prometheus.CounterVec)
		m.requestDuration = mustRegisterOrGet(reg, m.requestDuration).(*prometheus.HistogramVec)
		m.timeouts = mustRegisterOrGet(reg, m.timeouts).(*prometheus.CounterVec)
		m.executions = mustRegisterOrGet(reg, m.executions).(*prometheus.CounterVec)
		m.throttles = mustRegisterOrGet(reg, m.throttles).(prometheus.Counter)
		m.throttleSeconds = mustRegisterOrGet(reg, m.throttleSeconds).(prometheus.Counter)
		m.remaining = mustRegisterOrGet(reg, m.remaining).(prometheus.Gauge)
		m.lastCost = mustRegisterOrGet(reg, m.lastCost).(prometheus.Gauge)
		m.pages = mustRegisterOrGet(reg, m.pages).(prometheus.Counter)
	}
	return &m
}

func mustRegisterOrGet(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// Subscribe feeds m from the events on bus.
func (m *Metrics) Subscribe(bus *eventbus.Bus) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(bus, func(_ context.Context, e events.RequestFinish) {
			probe := strconv.FormatBool(e.Probe)
			status := "error"
			if e.Status != 0 {
				status = strconv.Itoa(e.Status)
			}
			m.requests.WithLabelValues(status, probe).Inc()
			m.requestDuration.WithLabelValues(probe).Observe(e.Duration.Seconds())
			if e.Timeout {
				m.timeouts.WithLabelValues(probe).Inc()
			}
		}),
		eventbus.Subscribe(bus, func(_ context.Context, e events.ExecuteFinish) {
			result := "success"
			if e.Err != nil {
				result = "failure"
			}
			m.executions.WithLabelValues(result).Inc()
		}),
		eventbus.Subscribe(bus, func(_ context.Context, e events.RateLimit) {
			m.remaining.Set(float64(e.Remaining))
			m.lastCost.Set(float64(e.Cost))
		}),
		eventbus.Subscribe(bus, func(_ context.Context, e events.ThrottleStart) {
			m.throttles.Inc()
		}),
		eventbus.Subscribe(bus, func(_ context.Context, e events.ThrottleFinish) {
			m.throttleSeconds.Add(e.Slept.Seconds())
		}),
		eventbus.Subscribe(bus, func(_ context.Context, e events.PageFetched) {
			m.pages.Inc()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
