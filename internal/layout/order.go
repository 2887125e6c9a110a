// Package layout computes the visual traversal order of a masonry grid.
//
// A masonry grid does not preserve insertion order visually, so slideshow
// navigation follows the on-screen reading order (top to bottom, then left
// to right) derived from the geometry of the rendered tiles.
package layout

import (
	"slices"
	"sync"
)

// Box is the on-screen bounding box of one rendered tile. Index is the tile's
// position in the listed file set.
type Box struct {
	Index  int
	Top    int
	Left   int
	Width  int
	Height int
}

// GeometryProvider reports the current bounding boxes of rendered tiles.
type GeometryProvider interface {
	Boxes() []Box
}

// ProviderFunc adapts a function to the GeometryProvider interface.
type ProviderFunc func() []Box

// Boxes calls f.
func (f ProviderFunc) Boxes() []Box {
	return f()
}

// VisualOrder is a permutation of file set indices in reading order.
type VisualOrder []int

// Len returns the number of positions.
func (v VisualOrder) Len() int {
	return len(v)
}

// Position returns the visual position of a file index, or -1.
func (v VisualOrder) Position(index int) int {
	return slices.Index(v, index)
}

// Compute sorts boxes by ascending top, then left, then file index, and
// returns the resulting file indices. It does not modify boxes.
func Compute(boxes []Box) VisualOrder {
	sorted := slices.Clone(boxes)
	slices.SortStableFunc(sorted, func(a, b Box) int {
		if a.Top != b.Top {
			return a.Top - b.Top
		}
		if a.Left != b.Left {
			return a.Left - b.Left
		}
		return a.Index - b.Index
	})

	order := make(VisualOrder, len(sorted))
	for i, b := range sorted {
		order[i] = b.Index
	}
	return order
}

// Engine keeps the most recently computed VisualOrder for a geometry provider.
type Engine struct {
	provider GeometryProvider

	mu    sync.RWMutex
	order VisualOrder
	stale bool
}

// NewEngine creates an Engine. No order exists until the first Recompute.
func NewEngine(p GeometryProvider) *Engine {
	return &Engine{provider: p, stale: true}
}

// Recompute reads the current geometry and replaces the stored order.
func (e *Engine) Recompute() VisualOrder {
	order := Compute(e.provider.Boxes())

	e.mu.Lock()
	e.order = order
	e.stale = false
	e.mu.Unlock()

	return slices.Clone(order)
}

// Order returns a copy of the stored order.
func (e *Engine) Order() VisualOrder {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.order)
}

// Invalidate marks the stored order as out of date.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.stale = true
	e.mu.Unlock()
}

// Stale reports whether the order must be recomputed before use.
func (e *Engine) Stale() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stale || len(e.order) == 0
}
