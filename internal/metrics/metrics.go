// Package metrics holds the process-wide Prometheus collectors, served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RecordsDropped counts stored records discarded at the storage boundary
// because they failed to parse or validate.
var RecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moneytracker",
	Subsystem: "ledger",
	Name:      "records_dropped_total",
	Help:      "Stored records dropped at read time because they were malformed.",
}, []string{"collection"})

// StorageErrors counts failed reads and writes against the document store.
var StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moneytracker",
	Subsystem: "ledger",
	Name:      "storage_errors_total",
	Help:      "Document store operations that failed.",
}, []string{"op"})

var RecordsPruned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moneytracker",
	Subsystem: "ledger",
	Name:      "records_pruned_total",
	Help:      "Transactions removed by the retention prune.",
}, []string{"collection"})

var ReportsBuilt = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "moneytracker",
	Subsystem: "report",
	Name:      "built_total",
	Help:      "Monthly reports assembled.",
})

var ReportBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "moneytracker",
	Subsystem: "report",
	Name:      "build_duration_seconds",
	Help:      "Time spent building a monthly report, storage read included.",
	Buckets:   prometheus.DefBuckets,
})

// Advisories counts advisory messages by level.
var Advisories = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moneytracker",
	Subsystem: "limits",
	Name:      "advisories_total",
	Help:      "Spending advisories raised, by level.",
}, []string{"level"})

var AlertsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moneytracker",
	Subsystem: "amqp",
	Name:      "alerts_published_total",
	Help:      "Advisory alerts published to the broker, by outcome.",
}, []string{"outcome"})

// RateLimited counts requests rejected by the per-client limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "moneytracker",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Mutating requests rejected by the per-client rate limiter.",
})

var PruneRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moneytracker",
	Subsystem: "scheduler",
	Name:      "prune_runs_total",
	Help:      "Scheduled retention prunes, by outcome.",
}, []string{"outcome"})
