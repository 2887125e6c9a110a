// Package client talks to the gallery server: folder listings, media bytes,
// access probes and credential renewal.
//
// Signed access is carried by cookies, so a Client keeps a cookie jar for
// the lifetime of the viewer process. Renew follows the server's /open
// redirect, which refreshes those cookies, and reports where it landed.
package client
