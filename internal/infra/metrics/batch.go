package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		batchJobs,
		batchPolls,
	)
}

var (
	batchJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_batch_jobs_total",
			Help: "Count of batch jobs by terminal status.",
		},
		[]string{"status"},
	)

	batchPolls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "outbound_batch_poll_cycles_total",
			Help: "Count of status poll cycles across all batch jobs.",
		},
	)
)

// IncBatchJob records a batch job reaching a terminal status.
func IncBatchJob(status string) {
	batchJobs.WithLabelValues(norm(status)).Inc()
}

// IncBatchPoll records one status poll cycle.
func IncBatchPoll() {
	batchPolls.Inc()
}
