package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gallery-viewer/internal/layout"
	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/viewer"
)

// Grid geometry. Masonry units are one cell wide and half a text row tall,
// which keeps measured aspect ratios roughly right on a terminal.
const (
	defaultTileWidth = 24
	tileGap          = 2
	unitsPerRow      = 2
)

type direction int

const (
	dirLeft direction = iota
	dirRight
	dirUp
	dirDown
)

func gridMasonry(termWidth, tileWidth int, flow layout.Flow) layout.Masonry {
	return layout.Masonry{
		Columns:   layout.ColumnsFor(termWidth, tileWidth, tileGap),
		Width:     tileWidth,
		Gap:       tileGap,
		RowHeight: tileGap,
		Flow:      flow,
	}
}

// rowSpan converts a box to text rows.
func rowSpan(b layout.Box) (top, height int) {
	top = b.Top / unitsPerRow
	height = b.Height / unitsPerRow
	if height < 1 {
		height = 1
	}
	return top, height
}

// renderGrid draws the tiles column by column at their masonry positions.
func renderGrid(tiles []viewer.Tile, boxes []layout.Box, cursor int, st styles) string {
	if len(boxes) == 0 {
		return ""
	}
	byIndex := make(map[int]viewer.Tile, len(tiles))
	for _, t := range tiles {
		byIndex[t.Index] = t
	}

	columns := map[int][]layout.Box{}
	var lefts []int
	for _, b := range boxes {
		if _, ok := columns[b.Left]; !ok {
			lefts = append(lefts, b.Left)
		}
		columns[b.Left] = append(columns[b.Left], b)
	}
	slices.Sort(lefts)

	gap := strings.Repeat(" ", tileGap)
	blocks := make([]string, 0, 2*len(lefts))
	for i, left := range lefts {
		col := columns[left]
		slices.SortFunc(col, func(a, b layout.Box) int { return a.Top - b.Top })

		var lines []string
		row := 0
		for _, b := range col {
			top, height := rowSpan(b)
			for ; row < top; row++ {
				lines = append(lines, "")
			}
			tile := renderTile(byIndex[b.Index], b.Width, height, b.Index == cursor, st)
			lines = append(lines, strings.Split(tile, "\n")...)
			row = top + height
		}
		if i > 0 {
			blocks = append(blocks, gap)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func tileIcon(t viewer.Tile) string {
	if t.Type == mediatypes.FileTypeVideo {
		return "▶"
	}
	return "▣"
}

func renderTile(t viewer.Tile, width, height int, selected bool, st styles) string {
	name := tileIcon(t) + " " + mediatypes.Basename(t.Key)
	if height < 3 || width < 6 {
		style := st.TileName
		if selected {
			style = style.Foreground(colorAccent)
		}
		return style.Render(truncate(name, width))
	}

	style := st.Tile
	switch {
	case selected:
		style = st.TileCursor
	case t.Broken:
		style = st.TileBroken
	}

	inner := width - 4 // border and padding
	var status string
	switch {
	case t.Broken:
		status = st.Danger.Render(truncate(t.Message, inner))
	case t.Loaded:
		status = st.Ready.Render("●") + st.Muted.Render(" ready")
	default:
		status = st.Muted.Render("○ loading")
	}

	lines := []string{st.TileName.Render(truncate(name, inner))}
	if height-2 >= 2 {
		lines = append(lines, status)
	}
	return style.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

// truncate shortens s to n cells, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func boxFor(boxes []layout.Box, index int) (layout.Box, bool) {
	i := slices.IndexFunc(boxes, func(b layout.Box) bool { return b.Index == index })
	if i < 0 {
		return layout.Box{}, false
	}
	return boxes[i], true
}

// moveCursor returns the file index the cursor lands on. Left and right
// follow the visual order; up and down stay in the cursor's column.
func moveCursor(order layout.VisualOrder, boxes []layout.Box, cursor int, d direction) int {
	if order.Len() == 0 {
		return -1
	}
	pos := order.Position(cursor)
	if pos < 0 {
		return order[0]
	}

	switch d {
	case dirLeft:
		if pos > 0 {
			return order[pos-1]
		}
	case dirRight:
		if pos < order.Len()-1 {
			return order[pos+1]
		}
	case dirUp, dirDown:
		cur, ok := boxFor(boxes, cursor)
		if !ok {
			return cursor
		}
		best, bestTop := -1, 0
		for _, b := range boxes {
			if b.Left != cur.Left || b.Index == cursor {
				continue
			}
			above := d == dirUp && b.Top < cur.Top && (best < 0 || b.Top > bestTop)
			below := d == dirDown && b.Top > cur.Top && (best < 0 || b.Top < bestTop)
			if above || below {
				best, bestTop = b.Index, b.Top
			}
		}
		if best >= 0 {
			return best
		}
	}
	return cursor
}

// hitTest finds the tile under a cell of the grid content.
func hitTest(boxes []layout.Box, x, y int) (int, bool) {
	for _, b := range boxes {
		top, height := rowSpan(b)
		if x >= b.Left && x < b.Left+b.Width && y >= top && y < top+height {
			return b.Index, true
		}
	}
	return -1, false
}

// cursorRows returns the text rows the cursor tile occupies.
func cursorRows(boxes []layout.Box, cursor int) (top, bottom int, ok bool) {
	b, ok := boxFor(boxes, cursor)
	if !ok {
		return 0, 0, false
	}
	top, height := rowSpan(b)
	return top, top + height, true
}
