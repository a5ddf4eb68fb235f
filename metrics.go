package img2pdf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics registered on the default registry. The CLI exposes
// them with --metrics-addr; library consumers get them for free through
// promhttp.
var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "img2pdf_fetch_total",
		Help: "Completed downloads by result.",
	}, []string{"result"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "img2pdf_fetch_duration_seconds",
		Help:    "Wall time per download, gate wait included.",
		Buckets: prometheus.DefBuckets,
	})

	fetchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "img2pdf_fetch_in_flight",
		Help: "Downloads currently holding a concurrency slot.",
	})

	fetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "img2pdf_fetch_retries_total",
		Help: "Retry attempts after transient download failures.",
	})

	payloadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "img2pdf_payload_bytes",
		Help:    "Downloaded payload sizes.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	convertTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "img2pdf_convert_total",
		Help: "Completed conversions by result.",
	}, []string{"result"})

	convertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "img2pdf_convert_duration_seconds",
		Help:    "Wall time per conversion, decode through artifact commit.",
		Buckets: prometheus.DefBuckets,
	})

	pagesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "img2pdf_pages_written_total",
		Help: "PDF pages committed to the output destination.",
	})
)

// resultLabel collapses an outcome error into a metric label value.
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return string(KindOf(err))
}
