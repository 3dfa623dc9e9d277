// Package metrics holds the importer's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ynab_importer"

// RowsProcessed counts normalized rows by outcome
// (accepted, invalid, duplicate).
var RowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "normalize",
	Name:      "rows_total",
	Help:      "Rows read from order exports, by outcome.",
}, []string{"outcome"})

// Transactions counts ledger transactions by outcome
// (imported, duplicate, zero_amount, api_duplicate).
var Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "import",
	Name:      "transactions_total",
	Help:      "Transactions considered for import, by outcome.",
}, []string{"outcome"})

// ImportRuns counts finished import runs by status (ok, error).
var ImportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "import",
	Name:      "runs_total",
	Help:      "Import runs, by status.",
}, []string{"status"})

// ImportDuration tracks end-to-end import latency.
var ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "import",
	Name:      "duration_seconds",
	Help:      "Time spent on one import run.",
	Buckets:   prometheus.DefBuckets,
})

// ClassifierFallbacks counts classifier failures that fell back to keyword
// rules.
var ClassifierFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "categorize",
	Name:      "classifier_fallbacks_total",
	Help:      "Classifier batches that failed and fell back to keyword rules.",
})

// ObserveNormalize records the outcome counts of one normalize pass.
func ObserveNormalize(accepted, invalid, duplicates int) {
	RowsProcessed.WithLabelValues("accepted").Add(float64(accepted))
	RowsProcessed.WithLabelValues("invalid").Add(float64(invalid))
	RowsProcessed.WithLabelValues("duplicate").Add(float64(duplicates))
}

// ObserveImport records the transaction outcomes of one import run.
func ObserveImport(imported, duplicates, zeroAmount, apiDuplicates int) {
	Transactions.WithLabelValues("imported").Add(float64(imported))
	Transactions.WithLabelValues("duplicate").Add(float64(duplicates))
	Transactions.WithLabelValues("zero_amount").Add(float64(zeroAmount))
	Transactions.WithLabelValues("api_duplicate").Add(float64(apiDuplicates))
}
