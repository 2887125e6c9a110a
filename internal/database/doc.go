// Package database provides SQLite storage for the gallery server and the
// terminal viewer.
//
// It stores:
//   - Share links (hashed token, folder, cookie TTL, expiry)
//   - Per-scope session storage backing the viewer's refresh cooldown and
//     resume position
//   - Small metadata values such as the last thumbnail sweep time
//
// The database runs in WAL mode and initializes its schema on open.
package database
