package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runtimeBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "palletchain",
		Subsystem: "runtime",
		Name:      "blocks_total",
		Help:      "Count of executed blocks.",
	}, []string{"chain", "status"})

	runtimeBlockDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "palletchain",
		Subsystem: "runtime",
		Name:      "block_duration_seconds",
		Help:      "Duration of block execution.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"chain", "status"})

	runtimeBlockExtrinsics = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "palletchain",
		Subsystem: "runtime",
		Name:      "block_extrinsics",
		Help:      "Number of extrinsics per block.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1..512
	}, []string{"chain"})

	runtimeDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "palletchain",
		Subsystem: "runtime",
		Name:      "dispatch_total",
		Help:      "Count of dispatched extrinsics.",
	}, []string{"chain", "pallet", "call", "status"})

	runtimeDispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "palletchain",
		Subsystem: "runtime",
		Name:      "dispatch_duration_seconds",
		Help:      "Duration of a single dispatch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"chain", "pallet", "call", "status"})
)

// Runtime tracks block execution and dispatch outcomes.
type Runtime struct {
	chain string
}

func NewRuntime(chain string) *Runtime {
	if chain == "" {
		chain = "unknown"
	}
	return &Runtime{chain: chain}
}

func (m Runtime) ObserveBlock(err error, extrinsics int, started time.Time) {
	status := statusOf(err)
	runtimeBlocksTotal.WithLabelValues(m.chain, status).Inc()
	runtimeBlockDuration.WithLabelValues(m.chain, status).Observe(time.Since(started).Seconds())
	runtimeBlockExtrinsics.WithLabelValues(m.chain).Observe(float64(extrinsics))
}

func (m Runtime) ObserveDispatch(pallet, call string, err error, started time.Time) {
	if pallet == "" {
		pallet = "unknown"
	}
	if call == "" {
		call = "unknown"
	}
	status := statusOf(err)
	runtimeDispatchTotal.WithLabelValues(m.chain, pallet, call, status).Inc()
	runtimeDispatchDuration.WithLabelValues(m.chain, pallet, call, status).Observe(time.Since(started).Seconds())
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
