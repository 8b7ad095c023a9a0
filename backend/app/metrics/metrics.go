package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder interface {
	IncReportsReceived()
	IncReportsRejected(reason string)
	ObserveBatch(size int, ok bool)
	SetStaleAgents(n int)
	IncCommands(ok bool)
	IncRequests(endpoint string, status int)
	ObserveRequestDuration(endpoint string, d time.Duration)
}

type Provider struct {
	reportsReceived prometheus.Counter
	reportsRejected *prometheus.CounterVec
	batches         *prometheus.CounterVec
	batchSize       prometheus.Histogram
	staleAgents     prometheus.Gauge
	commands        *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

// New registers the hub collectors on reg. queueDepth backs the queue gauge.
// When disabled a no-op recorder is returned and nothing is registered.
func New(enabled bool, reg *prometheus.Registry, queueDepth func() int) Recorder {
	if !enabled {
		return Noop()
	}
	f := promauto.With(reg)
	p := &Provider{
		reportsReceived: f.NewCounter(prometheus.CounterOpts{
			Name: "diarelay_reports_received_total",
			Help: "Telemetry reports accepted by the ingestion listener",
		}),
		reportsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diarelay_reports_rejected_total",
			Help: "Telemetry reports dropped before enqueue",
		}, []string{"reason"}),
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diarelay_batches_total",
			Help: "Batch flushes by outcome",
		}, []string{"result"}),
		batchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diarelay_batch_size",
			Help:    "Records per flushed batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		staleAgents: f.NewGauge(prometheus.GaugeOpts{
			Name: "diarelay_stale_agents",
			Help: "Agents silent beyond the alert threshold at the last watchdog scan",
		}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diarelay_commands_relayed_total",
			Help: "Commands pushed to agents by outcome",
		}, []string{"result"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diarelay_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diarelay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		gatherer: reg,
	}
	if queueDepth != nil {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "diarelay_queue_depth",
			Help: "Records waiting for the batch persister",
		}, func() float64 { return float64(queueDepth()) })
	}
	return p
}

// Handler exposes the registry for scraping.
func Handler(rec Recorder) http.Handler {
	if p, ok := rec.(*Provider); ok {
		return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
	}
	return http.NotFoundHandler()
}

func (p *Provider) IncReportsReceived() { p.reportsReceived.Inc() }

func (p *Provider) IncReportsRejected(reason string) { p.reportsRejected.WithLabelValues(reason).Inc() }

func (p *Provider) ObserveBatch(size int, ok bool) {
	p.batches.WithLabelValues(result(ok)).Inc()
	p.batchSize.Observe(float64(size))
}

func (p *Provider) SetStaleAgents(n int) { p.staleAgents.Set(float64(n)) }

func (p *Provider) IncCommands(ok bool) { p.commands.WithLabelValues(result(ok)).Inc() }

func (p *Provider) IncRequests(endpoint string, status int) {
	p.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (p *Provider) ObserveRequestDuration(endpoint string, d time.Duration) {
	p.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop returns a recorder that discards everything.
func Noop() Recorder { return noopMetrics{} }

type noopMetrics struct{}

func (noopMetrics) IncReportsReceived()                              {}
func (noopMetrics) IncReportsRejected(_ string)                      {}
func (noopMetrics) ObserveBatch(_ int, _ bool)                       {}
func (noopMetrics) SetStaleAgents(_ int)                             {}
func (noopMetrics) IncCommands(_ bool)                               {}
func (noopMetrics) IncRequests(_ string, _ int)                      {}
func (noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
