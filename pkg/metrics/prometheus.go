package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	samplesIngested *prometheus.CounterVec
	signalsTotal    *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	sentiment       *prometheus.GaugeVec
	lastPrice       *prometheus.GaugeVec
	realizedPnL     prometheus.Gauge
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		samplesIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asdts_samples_ingested_total",
				Help: "Total number of sentiment samples accepted into the store",
			},
			[]string{"source", "symbol"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asdts_signals_total",
				Help: "Total number of signals emitted by direction",
			},
			[]string{"symbol", "direction"},
		),
		rejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asdts_gate_rejections_total",
				Help: "Total number of risk gate rejections by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asdts_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		sentiment: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "asdts_aggregated_sentiment",
				Help: "Last aggregated sentiment value for a symbol",
			},
			[]string{"symbol"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "asdts_last_price",
				Help: "Last observed mark price for a symbol",
			},
			[]string{"symbol"},
		),
		realizedPnL: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "asdts_realized_pnl",
				Help: "Cumulative realized P&L across all symbols",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "asdts_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSampleIngested counts a sample accepted into the store.
func (r *Recorder) RecordSampleIngested(source, symbol string) {
	r.samplesIngested.WithLabelValues(source, symbol).Inc()
}

// RecordSignal counts an emitted signal.
func (r *Recorder) RecordSignal(symbol, direction string) {
	r.signalsTotal.WithLabelValues(symbol, direction).Inc()
}

// RecordRejection counts a risk gate rejection.
func (r *Recorder) RecordRejection(reason string) {
	r.rejections.WithLabelValues(reason).Inc()
}

// RecordSentiment records the last aggregated value for a symbol.
func (r *Recorder) RecordSentiment(symbol string, value float64) {
	r.sentiment.WithLabelValues(symbol).Set(value)
}

// RecordLastPrice records the last mark price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordRealizedPnL records cumulative realized P&L.
func (r *Recorder) RecordRealizedPnL(total float64) {
	r.realizedPnL.Set(total)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
