// Package metrics exposes Prometheus instrumentation for the inspection
// pipeline, following the teacher's promauto Opts{Name,Help,Buckets}
// convention.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InspectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wood_inspector_inspections_total",
		Help: "Total inspections completed, labeled by verdict.",
	}, []string{"verdict"})

	GroupProcessingSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wood_inspector_group_processing_seconds",
		Help:    "Time spent processing one group's assigned images.",
		Buckets: prometheus.DefBuckets,
	}, []string{"group"})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wood_inspector_queue_depth",
		Help: "Current depth of the event handoff queue.",
	}, []string{"queue"})

	QueueDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wood_inspector_queue_dropped_total",
		Help: "Events evicted from a bounded queue for capacity.",
	}, []string{"queue"})

	DBPoolBorrowSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wood_inspector_dbpool_borrow_seconds",
		Help:    "Time spent acquiring a database connection.",
		Buckets: prometheus.DefBuckets,
	})

	WorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wood_inspector_worker_count",
		Help: "Current analysis worker count per group, as adjusted by the resource optimizer.",
	})
)
