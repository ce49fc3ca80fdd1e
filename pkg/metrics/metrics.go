// Package metrics exposes the Prometheus registry used by the Data API client.
// All metrics are defined in their respective packages (client, pagination,
// quota) to keep those packages free of a shared dependency.
//
// This package provides documentation and the /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns an HTTP handler serving all registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - ytdata_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//     ("blocked" for requests refused by the quota guard, "network_error" without response)
//   - ytdata_request_duration_seconds{endpoint} (Histogram): Request duration including retries
//   - ytdata_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - ytdata_retries_total{error_class} (Counter): Retry attempts by error class
//   - ytdata_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - ytdata_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Pagination Metrics (pkg/pagination):
//   - ytdata_pagination_pages_fetched_total{endpoint} (Counter): Pages fetched
//   - ytdata_pagination_records_emitted_total{endpoint} (Counter): Records yielded to callers
//   - ytdata_pagination_traversals_total{endpoint, state} (Counter): Finished traversals by final state
//     (stopped, exhausted, failed, closed)
//   - ytdata_pagination_traversal_duration_seconds{endpoint} (Histogram): Traversal wall time
//
// Quota Metrics (pkg/quota):
//   - ytdata_quota_blocked (Gauge): 1 while a credential or quota block is active
//   - ytdata_quota_blocks_total{reason} (Counter): Requests refused locally by an active block
//   - ytdata_quota_reports_total{reason} (Counter): Rejections reported by the API
//
// Example Prometheus Queries:
//
//   # Quota exhausted
//   ytdata_quota_blocked == 1
//
//   # Request Error Rate
//   rate(ytdata_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(ytdata_request_duration_seconds_bucket[5m]))
//
//   # Records per page
//   rate(ytdata_pagination_records_emitted_total[5m]) /
//   rate(ytdata_pagination_pages_fetched_total[5m])
//
//   # Failed traversals
//   sum by (endpoint) (rate(ytdata_pagination_traversals_total{state="failed"}[15m]))
