// Package refresh recovers from expired access by redirecting through the
// credential renewal endpoint, at most once per cool-down window.
//
// Two values outlive a renewal round trip and therefore live in a Store
// rather than in memory: the time of the last recovery redirect and the
// slideshow position to resume at. The resume position is consumed by the
// next session: read once, then deleted.
package refresh
