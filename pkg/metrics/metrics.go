// Package metrics provides centralized Prometheus metrics registry for gogetem.
// All metrics are defined in their respective packages (uniprot, ena, download,
// dedup) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by gogetem.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Knowledge Base Metrics (pkg/uniprot):
//   - gogetem_sparql_requests_total{status} (Counter): SPARQL requests by HTTP status
//   - gogetem_sparql_request_duration_seconds (Histogram): SPARQL request duration
//   - gogetem_sparql_rows_total (Counter): Result rows returned across all queries
//
// Archive Metrics (pkg/ena):
//   - gogetem_ena_requests_total{status} (Counter): Archive requests by HTTP status
//   - gogetem_ena_request_duration_seconds (Histogram): Archive request duration
//   - gogetem_ena_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//   - gogetem_ena_empty_payloads_total (Counter): Successful responses carrying no sequence data
//
// Download Metrics (pkg/download):
//   - gogetem_download_batches_total{outcome} (Counter): Batches by outcome (persisted, skipped, empty)
//   - gogetem_download_rounds_total (Counter): Retry rounds started
//   - gogetem_download_round_failures (Gauge): Batches still outstanding after the last round
//   - gogetem_download_wait_seconds (Histogram): Time spent waiting between rounds
//
// Dedup Metrics (pkg/dedup):
//   - gogetem_dedup_hits_total{backend} (Counter): Store hits by backend (file, redis)
//   - gogetem_dedup_misses_total{backend} (Counter): Store misses by backend
//   - gogetem_dedup_writes_total{backend} (Counter): Payloads persisted by backend
//   - gogetem_dedup_errors_total{operation} (Counter): Store operation errors
//
// Example Prometheus Queries:
//
//   # Dedup Hit Rate
//   sum(rate(gogetem_dedup_hits_total[5m])) /
//   (sum(rate(gogetem_dedup_hits_total[5m])) + sum(rate(gogetem_dedup_misses_total[5m])))
//
//   # Empty Payload Rate
//   rate(gogetem_ena_empty_payloads_total[5m]) / rate(gogetem_ena_requests_total[5m])
//
//   # Archive Error Rate
//   rate(gogetem_ena_errors_total[5m])
//
//   # P95 Archive Latency
//   histogram_quantile(0.95, rate(gogetem_ena_request_duration_seconds_bucket[5m]))
//
//   # Outstanding Batches
//   gogetem_download_round_failures > 0
