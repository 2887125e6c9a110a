// Package startup handles server initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads an optional .env file (path from ENV_FILE) and then the
// environment. Variables already present in the environment take precedence
// over the file.
//
//   - MEDIA_DIR: bucket root holding gallery/ and thumbs/ (default: /media)
//   - DATABASE_DIR: directory for gallery.db (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - PUBLIC_URL: base URL printed in share links (default: http://localhost:PORT)
//   - SIGNING_KEY: cookie signing key, hex or raw, at least 16 bytes
//   - KEY_PAIR_ID: key id carried in the Gallery-Key-Pair-Id cookie (default: K1)
//   - ALLOWED_FOLDER_PREFIX: folders links may grant (default: gallery/)
//   - LINK_LIFETIME: how long a share link can be reopened (default: cookie TTL)
//   - LINK_CLEANUP_INTERVAL: expired link pruning interval (default: 1h)
//   - COOKIE_DOMAIN, COOKIE_SECURE (true), COOKIE_HTTPONLY (true),
//     COOKIE_SAMESITE (lax), COOKIE_MAX_AGE (false)
//   - THUMBNAILS_ENABLED (true), THUMBNAIL_INTERVAL (6h), THUMB_WORKERS
//   - THUMB_MAX_SIZE (640), JPEG_QUALITY (75)
//   - THUMB_DECIDER_MODE (bytes|pixels), THUMB_DECIDER_MIN_MIB,
//     THUMB_DECIDER_MIN_MAXDIM_PX
//   - SOURCE_PREFIX (gallery/), THUMB_ROOT_PREFIX (thumbs/), THUMB_PREFIX (thumb-of-)
//   - LOG_LEVEL, LOG_STATIC_FILES (false), LOG_HEALTH_CHECKS (true)
//
// Without SIGNING_KEY a random key is generated; issued cookies then stop
// verifying after a restart.
//
// # Build Information
//
// Version, Commit and BuildTime are injected at build time:
//
//	go build -ldflags "-X gallery-viewer/internal/startup.Version=1.0.0"
package startup
