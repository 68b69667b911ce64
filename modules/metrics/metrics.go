package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK    = "ok"
	ResultError = "error"

	OutcomeFound     = "found"
	OutcomeExhausted = "exhausted"
	OutcomeAborted   = "aborted"

	OriginLocal  = "local"
	OriginRemote = "remote"
)

var (
	OracleCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oracle_calls_total",
		Help: "Oracle invocations by operation and result",
	}, []string{"op", "result"})

	OracleCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oracle_call_duration_seconds",
		Help:    "Oracle invocation latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"op"})

	SearchPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miner_search_passes_total",
		Help: "Proof search passes by outcome",
	}, []string{"outcome"})

	BlocksAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_blocks_accepted_total",
		Help: "Blocks appended to the chain by origin",
	}, []string{"origin"})
)

// ObserveOracleCall records one oracle invocation started at start.
func ObserveOracleCall(op string, start time.Time, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	OracleCalls.WithLabelValues(op, result).Inc()
	OracleCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func SearchPass(outcome string) {
	SearchPasses.WithLabelValues(outcome).Inc()
}

func BlockAccepted(origin string) {
	BlocksAccepted.WithLabelValues(origin).Inc()
}
