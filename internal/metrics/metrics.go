package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatsComputations counts full stats report computations
	StatsComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seenlog_stats_computations_total",
		Help: "Number of full stats report computations.",
	})

	// StatsCacheHits counts stats reads served from the cached report
	StatsCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seenlog_stats_cache_hits_total",
		Help: "Number of stats reads served from the cached report.",
	})

	// CatchUpRuns counts catch-up reconciliation passes
	CatchUpRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seenlog_catchup_reconciliations_total",
		Help: "Number of catch-up reconciliation passes.",
	})

	// CatalogFetchFailures counts per-unit catalog fetch failures that
	// degraded a series or season to excluded
	CatalogFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seenlog_catalog_fetch_failures_total",
		Help: "Number of catalog fetches that failed and excluded a unit.",
	})
)
