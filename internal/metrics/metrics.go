package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_convert",
			Subsystem: "translator",
			Name:      "records_total",
			Help:      "Storage records handled, by outcome",
		},
		[]string{"outcome", "reason"},
	)

	SubmitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "video_convert",
			Subsystem: "mediaconvert",
			Name:      "create_job_duration_seconds",
			Help:      "MediaConvert CreateJob latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"status"},
	)

	VersionMismatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_convert",
			Subsystem: "translator",
			Name:      "event_version_mismatch_total",
			Help:      "Records whose event version differs from the expected one",
		},
		[]string{"version"},
	)
)

func RecordOutcome(outcome, reason string) {
	RecordsTotal.WithLabelValues(outcome, reason).Inc()
}

func RecordSubmit(status string, durationSec float64) {
	SubmitDuration.WithLabelValues(status).Observe(durationSec)
}

func RecordVersionMismatch(version string) {
	VersionMismatchTotal.WithLabelValues(version).Inc()
}
