package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	simulationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "palletchain",
		Subsystem: "simulation",
		Name:      "runs_total",
		Help:      "Count of simulation runs.",
	}, []string{"status"})

	simulationRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "palletchain",
		Subsystem: "simulation",
		Name:      "run_duration_seconds",
		Help:      "Duration of one simulation run.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	simulationFinalizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "palletchain",
		Subsystem: "simulation",
		Name:      "finalized_blocks_total",
		Help:      "Count of block numbers finalized across simulation runs.",
	})
)

// Simulation tracks simulation runs.
type Simulation struct{}

func NewSimulation() *Simulation {
	return &Simulation{}
}

func (Simulation) ObserveRun(err error, finalized int, started time.Time) {
	status := statusOf(err)
	simulationRunsTotal.WithLabelValues(status).Inc()
	simulationRunDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	simulationFinalizedTotal.Add(float64(finalized))
}
