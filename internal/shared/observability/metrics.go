package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retrofit_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"dialect"})

	RequirementsPlanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retrofit_requirements_planned_total",
		Help: "Total number of requirements emitted by the planner.",
	}, []string{"kind"})

	RequirementsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrofit_requirements_dropped_total",
		Help: "Total number of duplicate requirements dropped during planning.",
	})

	RequirementsImplemented = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retrofit_requirements_implemented_total",
		Help: "Total number of requirements successfully implemented.",
	}, []string{"kind"})

	RequirementsUnimplemented = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrofit_requirements_unimplemented_total",
		Help: "Total number of requirements recorded as unimplemented.",
	})

	FlushLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "retrofit_project_flush_seconds",
		Help:    "Latency for applying queued edits to the virtual project.",
		Buckets: prometheus.DefBuckets,
	})

	MigrationsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrofit_migrations_recorded_total",
		Help: "Total number of migration records written to the sink.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retrofit_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
