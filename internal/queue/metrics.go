package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loopreel_jobs_enqueued_total",
		Help: "Jobs accepted by the durable queue, by kind.",
	}, []string{"kind"})

	jobsSucceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loopreel_jobs_succeeded_total",
		Help: "Jobs completed successfully, by kind.",
	}, []string{"kind"})

	jobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loopreel_jobs_failed_total",
		Help: "Job runs that returned an error, by kind.",
	}, []string{"kind"})

	fallbackInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loopreel_fallback_inflight",
		Help: "Inline fallback jobs currently running.",
	})

	fallbackCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loopreel_fallback_completed_total",
		Help: "Inline fallback jobs completed successfully.",
	})

	fallbackFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loopreel_fallback_failed_total",
		Help: "Inline fallback jobs that returned an error.",
	})
)
