// Package metrics provides Prometheus instrumentation for the gallery
// server.
//
// All metrics are registered with the default registry through promauto and
// prefixed with "gallery_". Mount promhttp.Handler() to expose them:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Metric Categories
//
//   - HTTP: request counts, durations and in-flight requests
//   - Database: query counts and latency by operation, open connections
//   - Share links: links created, active links, link opens, cookie checks
//   - Objects: bytes served, object requests by kind, folder listings
//   - Thumbnails: generations by type and status, sweep duration
//   - Filesystem: operation latency and stale-handle retries
//
// # Collector
//
// [Collector] periodically reads a [StatsProvider] and updates the gauges
// that have to be computed from storage, such as active share links:
//
//	collector := metrics.NewCollector(provider, time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Expired-link rate:
//
//	rate(gallery_link_opens_total{result="expired"}[1h])
//
// Rejected media requests:
//
//	sum(rate(gallery_cookie_verifications_total{result!="ok"}[5m])) by (result)
package metrics
