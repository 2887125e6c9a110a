// Gallery Viewer serves private photo and video galleries behind
// share links.
//
// A share link (/open?t=TOKEN) exchanges its token for a set of signed
// policy cookies scoped to one folder of the bucket, then redirects to the
// landing page. Viewers list the folder with /list and fetch originals,
// thumbnails and the folder archive directly by key; each object request is
// authorized by the cookies alone.
//
// # Application Lifecycle
//
//  1. Memory configuration: GOMEMLIMIT from MEMORY_LIMIT/MEMORY_RATIO
//  2. Configuration loading: .env and environment, directory checks
//  3. Database initialization: SQLite share links and metadata
//  4. Background services: thumbnail sweeps paced by the memory monitor,
//     expired link pruning, metrics collection
//  5. HTTP servers: application on PORT, Prometheus on METRICS_PORT
//  6. Graceful shutdown on SIGINT/SIGTERM
//
// # Middleware
//
// Every request passes through, outermost first:
//
//   - Compression: gzip for JSON and HTML responses
//   - Logger: W3C extended access log with share tokens redacted
//   - SecurityHeaders: nosniff, frame denial, no referrer
//   - Metrics: per-route counters labelled by route template
//
// Share links are created with the sharelink command; the terminal viewer
// lives in cmd/gallery-viewer.
package main
