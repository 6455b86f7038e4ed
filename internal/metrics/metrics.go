// Package metrics exposes the service counters to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "election"

// Collector implements election.Metrics and records HTTP traffic.
type Collector struct {
	votesAccepted prometheus.Counter
	votesRejected *prometheus.CounterVec
	results       *prometheus.CounterVec
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// NewCollector registers the service metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		votesAccepted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "votes",
			Name:      "accepted_total",
			Help:      "number of votes committed",
		}),
		votesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "votes",
			Name:      "rejected_total",
			Help:      "number of vote attempts rejected, by reason",
		}, []string{"reason"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "results",
			Name:      "served_total",
			Help:      "number of result queries answered, by kind and cache use",
		}, []string{"kind", "cached"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "tracks the number of HTTP requests",
		}, []string{"method", "route", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "tracks the latencies for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (c *Collector) VoteAccepted() { c.votesAccepted.Inc() }

func (c *Collector) VoteRejected(reason string) { c.votesRejected.WithLabelValues(reason).Inc() }

func (c *Collector) ResultServed(kind string, cached bool) {
	c.results.WithLabelValues(kind, strconv.FormatBool(cached)).Inc()
}

// ObserveRequest records one HTTP request.  route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) ObserveRequest(method, route string, code int, took time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.latency.WithLabelValues(method, route).Observe(took.Seconds())
}

// NoopCollector discards everything.
type NoopCollector struct{}

func NewNoopCollector() *NoopCollector { return &NoopCollector{} }

func (*NoopCollector) VoteAccepted()                                     {}
func (*NoopCollector) VoteRejected(string)                               {}
func (*NoopCollector) ResultServed(string, bool)                         {}
func (*NoopCollector) ObserveRequest(string, string, int, time.Duration) {}
