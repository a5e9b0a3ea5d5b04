package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors. Methods are nil-safe so
// components can run without metrics wired (unit tests, offline replays).
type Metrics struct {
	messagesProcessed prometheus.Counter
	eventsProcessed   prometheus.Counter
	itemsSkipped      prometheus.Counter
	recordsSaved      *prometheus.CounterVec
	errorsTotal       prometheus.Counter
	lastHeight        prometheus.Gauge
}

var (
	once    sync.Once
	metrics *Metrics
)

// Init initializes and registers the global metrics (idempotent).
func Init() *Metrics {
	once.Do(func() {
		metrics = &Metrics{
			messagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "votascan_messages_processed_total",
				Help: "Total number of decoded messages processed",
			}),
			eventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "votascan_events_processed_total",
				Help: "Total number of contract events processed",
			}),
			itemsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "votascan_items_skipped_total",
				Help: "Total number of items skipped (untracked contract or code id)",
			}),
			recordsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "votascan_records_saved_total",
				Help: "Total number of entity records written to the store",
			}, []string{"entity"}),
			errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "votascan_errors_total",
				Help: "Total number of processing errors",
			}),
			lastHeight: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "votascan_last_height",
				Help: "Block height of the most recently processed item",
			}),
		}
		prometheus.MustRegister(
			metrics.messagesProcessed,
			metrics.eventsProcessed,
			metrics.itemsSkipped,
			metrics.recordsSaved,
			metrics.errorsTotal,
			metrics.lastHeight,
		)
	})
	return metrics
}

// Handler returns the HTTP handler serving /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// MessageProcessed increments the processed-message counter.
func (m *Metrics) MessageProcessed() {
	if m != nil {
		m.messagesProcessed.Inc()
	}
}

// EventProcessed increments the processed-event counter.
func (m *Metrics) EventProcessed() {
	if m != nil {
		m.eventsProcessed.Inc()
	}
}

// ItemSkipped increments the skipped-item counter.
func (m *Metrics) ItemSkipped() {
	if m != nil {
		m.itemsSkipped.Inc()
	}
}

// RecordSaved increments the saved-record counter for an entity kind.
func (m *Metrics) RecordSaved(entity string) {
	if m != nil {
		m.recordsSaved.WithLabelValues(entity).Inc()
	}
}

// Error increments the error counter.
func (m *Metrics) Error() {
	if m != nil {
		m.errorsTotal.Inc()
	}
}

// Height records the block height of the latest processed item.
func (m *Metrics) Height(h uint64) {
	if m != nil {
		m.lastHeight.Set(float64(h))
	}
}
