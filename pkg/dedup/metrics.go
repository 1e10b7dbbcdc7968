package dedup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DedupHits tracks store hits by backend (file, redis)
	DedupHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gogetem_dedup_hits_total",
			Help: "Total number of dedup store hits",
		},
		[]string{"backend"}, // "file", "redis"
	)

	// DedupMisses tracks store misses by backend
	DedupMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gogetem_dedup_misses_total",
			Help: "Total number of dedup store misses",
		},
		[]string{"backend"}, // "file", "redis"
	)

	// DedupWrites tracks payloads persisted by backend
	DedupWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gogetem_dedup_writes_total",
			Help: "Total number of payloads persisted to the dedup store",
		},
		[]string{"backend"}, // "file", "redis"
	)

	// DedupErrors tracks store operation errors
	DedupErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gogetem_dedup_errors_total",
			Help: "Total number of dedup store operation errors",
		},
		[]string{"operation"}, // "has", "put"
	)
)
