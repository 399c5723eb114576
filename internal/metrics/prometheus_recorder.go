package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	marks         *prom.CounterVec
	queries       *prom.CounterVec
	storageErrors *prom.CounterVec
	opDuration    *prom.HistogramVec
	knownUsers    prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.marks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "multazim",
			Name:      "marks_total",
			Help:      "Task completion marks by task and outcome",
		}, []string{"task", "result"})
		pr.queries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "multazim",
			Name:      "queries_total",
			Help:      "Read queries by kind",
		}, []string{"kind"})
		pr.storageErrors = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "multazim",
			Name:      "storage_errors_total",
			Help:      "Storage failures by operation",
		}, []string{"op"})
		pr.opDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "multazim",
			Name:      "operation_duration_seconds",
			Help:      "Duration of tracker operations including storage I/O",
			Buckets:   prom.DefBuckets,
		}, []string{"op"})
		pr.knownUsers = prom.NewGauge(prom.GaugeOpts{
			Namespace: "multazim",
			Name:      "known_users",
			Help:      "Number of users with persisted state",
		})
		reg.MustRegister(pr.marks, pr.queries, pr.storageErrors, pr.opDuration, pr.knownUsers)
	})
	return pr
}

func (p *PrometheusRecorder) IncMark(task string, result MarkResult) {
	if p == nil || p.marks == nil {
		return
	}
	p.marks.WithLabelValues(task, string(result)).Inc()
}

func (p *PrometheusRecorder) IncQuery(kind string) {
	if p == nil || p.queries == nil {
		return
	}
	p.queries.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncStorageError(op string) {
	if p == nil || p.storageErrors == nil {
		return
	}
	p.storageErrors.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) ObserveOpDuration(op string, d time.Duration) {
	if p == nil || p.opDuration == nil {
		return
	}
	p.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetKnownUsers(n int) {
	if p == nil || p.knownUsers == nil {
		return
	}
	p.knownUsers.Set(float64(n))
}
