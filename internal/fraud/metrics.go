package fraud

import "github.com/prometheus/client_golang/prometheus"

var (
	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fraudlens",
		Subsystem: "ingest",
		Name:      "uploads_total",
		Help:      "Total CSV uploads by outcome.",
	}, []string{"status"}) // "ok", "rejected", "error"

	rowsScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fraudlens",
		Subsystem: "ingest",
		Name:      "rows_scored_total",
		Help:      "Total transactions scored by assigned risk label.",
	}, []string{"label"})

	uploadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fraudlens",
		Subsystem: "ingest",
		Name:      "upload_duration_seconds",
		Help:      "End-to-end ingestion time per upload in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})

	snapshotWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fraudlens",
		Subsystem: "ingest",
		Name:      "snapshot_writes_total",
		Help:      "Total snapshot writes by result.",
	}, []string{"result"}) // "ok", "error"
)

func init() {
	prometheus.MustRegister(
		uploadsTotal,
		rowsScoredTotal,
		uploadDuration,
		snapshotWritesTotal,
	)
}
