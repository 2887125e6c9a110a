package layout

// Flow selects how Masonry distributes items over its columns.
type Flow int

const (
	// FlowShortest puts each item into the column whose bottom is highest,
	// leftmost on ties. Reading order then tracks insertion order.
	FlowShortest Flow = iota
	// FlowColumns fills the first column top to bottom before moving to the
	// next one, balancing column heights. Reading order then differs from
	// insertion order.
	FlowColumns
)

// Item is a tile waiting to be placed: its file index and measured height.
type Item struct {
	Index  int
	Height int
}

// Masonry places items into fixed-width columns on a row grid. Each item
// spans enough rows to hold its height.
type Masonry struct {
	Columns   int
	Width     int // column width
	Gap       int
	RowHeight int
	Flow      Flow
}

// Span returns the number of grid rows an item of height h occupies.
func (m Masonry) Span(h int) int {
	unit := m.RowHeight + m.Gap
	if unit <= 0 {
		return 1
	}
	span := (h + m.Gap + unit - 1) / unit
	if span < 1 {
		span = 1
	}
	return span
}

func (m Masonry) columns() int {
	if m.Columns < 1 {
		return 1
	}
	return m.Columns
}

func (m Masonry) box(it Item, col, row, span int) Box {
	unit := m.RowHeight + m.Gap
	return Box{
		Index:  it.Index,
		Top:    row * unit,
		Left:   col * (m.Width + m.Gap),
		Width:  m.Width,
		Height: span*unit - m.Gap,
	}
}

// Place computes bounding boxes for items in the given order.
func (m Masonry) Place(items []Item) []Box {
	if m.Flow == FlowColumns {
		return m.placeColumns(items)
	}
	return m.placeShortest(items)
}

func (m Masonry) placeShortest(items []Item) []Box {
	cols := m.columns()
	bottoms := make([]int, cols) // in rows

	boxes := make([]Box, 0, len(items))
	for _, it := range items {
		c := 0
		for i := 1; i < cols; i++ {
			if bottoms[i] < bottoms[c] {
				c = i
			}
		}
		span := m.Span(it.Height)
		boxes = append(boxes, m.box(it, c, bottoms[c], span))
		bottoms[c] += span
	}
	return boxes
}

func (m Masonry) placeColumns(items []Item) []Box {
	cols := m.columns()

	spans := make([]int, len(items))
	total := 0
	for i, it := range items {
		spans[i] = m.Span(it.Height)
		total += spans[i]
	}
	target := (total + cols - 1) / cols

	boxes := make([]Box, 0, len(items))
	col, row := 0, 0
	for i, it := range items {
		if row > 0 && row+spans[i] > target && col < cols-1 {
			col++
			row = 0
		}
		boxes = append(boxes, m.box(it, col, row, spans[i]))
		row += spans[i]
	}
	return boxes
}

// Provider returns a GeometryProvider that places whatever items returns.
func (m Masonry) Provider(items func() []Item) GeometryProvider {
	return ProviderFunc(func() []Box {
		return m.Place(items())
	})
}

// ColumnsFor returns how many columns of the given width fit in total.
func ColumnsFor(total, width, gap int) int {
	if width <= 0 {
		return 1
	}
	n := (total + gap) / (width + gap)
	if n < 1 {
		n = 1
	}
	return n
}
