// Package metrics defines the prometheus collectors fxkv exposes. Collectors
// are package-level and registered once; components increment them directly.
// Embedders that scrape the default registry get them for free after calling
// Register.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Transaction metrics
	TransactionsCommittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxkv_transactions_committed_total",
			Help: "Total number of transactions whose commit record became durable",
		},
	)

	TransactionsAbortedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxkv_transactions_aborted_total",
			Help: "Total number of transactions rolled back or dropped without commit",
		},
	)

	CommitFlushDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fxkv_commit_flush_duration_seconds",
			Help:    "Time spent flushing a batch of pending commit records to the transaction log",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Cache metrics
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxkv_value_cache_hits_total",
			Help: "Total number of value reads served from a tree's LRU cache",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxkv_value_cache_misses_total",
			Help: "Total number of value reads that fell through to the payload file",
		},
	)
)

var registerOnce sync.Once

// Register adds every fxkv collector to the default prometheus registry.
// Safe to call from multiple engines; registration happens once per process.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			TransactionsCommittedTotal,
			TransactionsAbortedTotal,
			CommitFlushDuration,
			CacheHitsTotal,
			CacheMissesTotal,
		)
	})
}
