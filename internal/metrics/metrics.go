// Package metrics holds the process-wide prometheus instruments, exposed by
// the health server on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts handled chat commands by name.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commandant_commands_total",
		Help: "Chat commands handled, by command.",
	}, []string{"command"})

	// JobRuns counts scheduled job executions by job and result.
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commandant_job_runs_total",
		Help: "Scheduled job executions, by job and result.",
	}, []string{"job", "result"})

	// PersistFailures counts failed document saves.
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commandant_persist_failures_total",
		Help: "Failed ledger/meta document saves.",
	})
)
