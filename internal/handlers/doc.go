// Package handlers provides the HTTP handlers of the gallery server.
//
// It includes handlers for:
//   - Opening share links and issuing signed policy cookies
//   - Folder listings for a share token
//   - Serving objects behind a policy cookie
//   - The landing and error views
//   - Health checks, version and metrics
package handlers
