package metrics

import "github.com/prometheus/client_golang/prometheus"

// Download outcomes recorded on DownloadsTotal.
const (
	OutcomeSuccess         = "success"
	OutcomeClientError     = "client_error"
	OutcomeExtractionError = "extraction_error"
)

var (
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fetchr",
			Name:      "downloads_total",
			Help:      "Download requests by outcome.",
		},
		[]string{"outcome"},
	)

	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fetchr",
			Name:      "extraction_duration_seconds",
			Help:      "Time spent in the extractor per download.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	DownloadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fetchr",
			Name:      "download_bytes_total",
			Help:      "Bytes loaded from extracted artifacts.",
		},
	)

	CleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fetchr",
			Name:      "cleanup_failures_total",
			Help:      "Temporary artifacts that could not be removed.",
		},
	)

	InflightDownloads = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fetchr",
			Name:      "inflight_downloads",
			Help:      "Downloads currently running in the extractor.",
		},
	)
)

// Register registers the fetchr metrics into the default registry.
func Register() {
	prometheus.MustRegister(DownloadsTotal, ExtractionDuration, DownloadBytes, CleanupFailures, InflightDownloads)
}
