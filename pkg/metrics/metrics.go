// Copyright 2025 Certen Protocol
//
// Prometheus instrumentation for the core engine calls: merges, wire
// encode/decode, and merkle aggregation.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry groups the engine's collectors so callers can wire them into
// either the default Prometheus registry or a scoped one (useful in tests).
type Registry struct {
	MergesTotal       *prometheus.CounterVec
	SerializeSeconds  *prometheus.HistogramVec
	MerkleLeaves      prometheus.Histogram
	MerkleBuildErrors prometheus.Counter
}

// NewRegistry registers and returns the engine's collectors against reg. Pass
// prometheus.DefaultRegisterer for process-wide metrics, or a fresh
// prometheus.NewRegistry() in tests to avoid collector-already-registered
// panics across test runs.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		MergesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tsengine_merges_total",
			Help: "Timestamp merges, partitioned by outcome.",
		}, []string{"outcome"}),
		SerializeSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsengine_serialize_seconds",
			Help:    "Time spent encoding or decoding a timestamp tree.",
			Buckets: prometheus.DefBuckets,
		}, []string{"direction"}),
		MerkleLeaves: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tsengine_merkle_leaves",
			Help:    "Number of leaves folded into a single merkle aggregation call.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		MerkleBuildErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "tsengine_merkle_build_errors_total",
			Help: "Merkle tree aggregations that failed.",
		}),
	}
}

// ObserveMerge records the outcome of a Timestamp.Merge call.
func (r *Registry) ObserveMerge(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.MergesTotal.WithLabelValues(outcome).Inc()
}

// timeSince records elapsed time against a histogram labeled by direction.
func (r *Registry) timeSince(direction string, start time.Time) {
	r.SerializeSeconds.WithLabelValues(direction).Observe(time.Since(start).Seconds())
}

// ObserveEncode records the duration of a Serialize call.
func (r *Registry) ObserveEncode(start time.Time) { r.timeSince("encode", start) }

// ObserveDecode records the duration of a Deserialize call.
func (r *Registry) ObserveDecode(start time.Time) { r.timeSince("decode", start) }

// ObserveMerkleBuild records the leaf count of a MakeMerkleTree call, or
// counts it as an error if err is non-nil.
func (r *Registry) ObserveMerkleBuild(leafCount int, err error) {
	if err != nil {
		r.MerkleBuildErrors.Inc()
		return
	}
	r.MerkleLeaves.Observe(float64(leafCount))
}
