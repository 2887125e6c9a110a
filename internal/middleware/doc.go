// Package middleware provides HTTP middleware for the gallery server.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with share tokens redacted
//   - Prometheus request metrics labelled by route template
//   - Gzip compression of listings and pages
//   - Security headers for cookie-protected responses
package middleware
