// Package slideshow implements the modal viewer that walks the grid in
// visual order.
//
// The controller is either closed or open at a position in the current
// layout.VisualOrder. Every render bumps a request id; asynchronous loads
// capture it and are discarded once the modal closed or a newer render
// superseded them, so the displayed item always matches the most recent
// navigation.
package slideshow
