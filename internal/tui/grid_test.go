package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"gallery-viewer/internal/layout"
	"gallery-viewer/internal/mediatypes"
	"gallery-viewer/internal/viewer"
)

// =============================================================================
// Geometry Tests
// =============================================================================

func TestGridMasonry(t *testing.T) {
	t.Parallel()

	m := gridMasonry(80, 24, layout.FlowColumns)
	if m.Columns != 3 {
		t.Errorf("Columns = %d, want 3", m.Columns)
	}
	if m.Width != 24 || m.Gap != tileGap || m.Flow != layout.FlowColumns {
		t.Errorf("unexpected masonry %+v", m)
	}
	if got := gridMasonry(10, 24, layout.FlowShortest).Columns; got != 1 {
		t.Errorf("narrow terminal Columns = %d, want 1", got)
	}
}

func TestRowSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		box         layout.Box
		top, height int
	}{
		{"first row", layout.Box{Top: 0, Height: 6}, 0, 3},
		{"lower row", layout.Box{Top: 8, Height: 14}, 4, 7},
		{"tiny", layout.Box{Top: 4, Height: 1}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			top, height := rowSpan(tt.box)
			if top != tt.top || height != tt.height {
				t.Errorf("rowSpan = (%d, %d), want (%d, %d)", top, height, tt.top, tt.height)
			}
		})
	}
}

// testBoxes is two columns: 0 and 2 on the left, 1 and 3 on the right.
func testBoxes() []layout.Box {
	return []layout.Box{
		{Index: 0, Top: 0, Left: 0, Width: 24, Height: 6},
		{Index: 1, Top: 0, Left: 26, Width: 24, Height: 14},
		{Index: 2, Top: 8, Left: 0, Width: 24, Height: 6},
		{Index: 3, Top: 16, Left: 26, Width: 24, Height: 6},
	}
}

func TestMoveCursor(t *testing.T) {
	t.Parallel()

	boxes := testBoxes()
	order := layout.Compute(boxes)

	tests := []struct {
		name   string
		cursor int
		dir    direction
		want   int
	}{
		{"right follows reading order", 0, dirRight, 1},
		{"right wraps to next row", 1, dirRight, 2},
		{"left at start stays", 0, dirLeft, 0},
		{"left", 2, dirLeft, 1},
		{"right at end stays", 3, dirRight, 3},
		{"down in column", 0, dirDown, 2},
		{"down in right column", 1, dirDown, 3},
		{"down at bottom stays", 2, dirDown, 2},
		{"up in column", 3, dirUp, 1},
		{"up at top stays", 0, dirUp, 0},
		{"unknown cursor jumps to first", 9, dirDown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := moveCursor(order, boxes, tt.cursor, tt.dir); got != tt.want {
				t.Errorf("moveCursor(%d) = %d, want %d", tt.cursor, got, tt.want)
			}
		})
	}

	if got := moveCursor(nil, nil, 0, dirRight); got != -1 {
		t.Errorf("empty order = %d, want -1", got)
	}
}

func TestHitTest(t *testing.T) {
	t.Parallel()

	boxes := testBoxes()
	tests := []struct {
		name string
		x, y int
		want int
		ok   bool
	}{
		{"top left tile", 3, 1, 0, true},
		{"right column", 30, 6, 1, true},
		{"second row left", 0, 4, 2, true},
		{"gap between columns", 25, 1, -1, false},
		{"gap between rows", 5, 3, -1, false},
		{"below everything", 5, 40, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := hitTest(boxes, tt.x, tt.y)
			if got != tt.want || ok != tt.ok {
				t.Errorf("hitTest(%d, %d) = (%d, %v), want (%d, %v)", tt.x, tt.y, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCursorRows(t *testing.T) {
	t.Parallel()

	top, bottom, ok := cursorRows(testBoxes(), 3)
	if !ok || top != 8 || bottom != 11 {
		t.Errorf("cursorRows = (%d, %d, %v), want (8, 11, true)", top, bottom, ok)
	}
	if _, _, ok := cursorRows(testBoxes(), 7); ok {
		t.Error("expected no rows for an unknown index")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated", 5, "trun…"},
		{"ü-umlaut", 3, "ü-…"},
		{"x", 0, ""},
		{"xyz", 1, "…"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

// =============================================================================
// Rendering Tests
// =============================================================================

func TestRenderGrid(t *testing.T) {
	t.Parallel()

	tiles := []viewer.Tile{
		{Index: 0, Key: "a/one.jpg", Type: mediatypes.FileTypeImage, Loaded: true},
		{Index: 1, Key: "a/two.jpg", Type: mediatypes.FileTypeImage, Broken: true, Message: viewer.MsgTileBroken},
	}
	boxes := []layout.Box{
		{Index: 0, Top: 0, Left: 0, Width: 24, Height: 6},
		{Index: 1, Top: 0, Left: 26, Width: 24, Height: 14},
	}

	out := renderGrid(tiles, boxes, 0, defaultStyles())

	if got := lipgloss.Height(out); got != 7 {
		t.Errorf("height = %d, want 7", got)
	}
	if got := lipgloss.Width(out); got != 50 {
		t.Errorf("width = %d, want 50", got)
	}
	for _, want := range []string{"one.jpg", "two.jpg", "Cannot load."} {
		if !strings.Contains(out, want) {
			t.Errorf("grid missing %q:\n%s", want, out)
		}
	}
}

func TestRenderGridEmpty(t *testing.T) {
	t.Parallel()

	if out := renderGrid(nil, nil, -1, defaultStyles()); out != "" {
		t.Errorf("expected empty grid, got %q", out)
	}
}

func TestRenderTileSingleRow(t *testing.T) {
	t.Parallel()

	tile := viewer.Tile{Key: "a/clip.mp4", Type: mediatypes.FileTypeVideo}
	out := renderTile(tile, 24, 1, false, defaultStyles())
	if lipgloss.Height(out) != 1 {
		t.Errorf("height = %d, want 1", lipgloss.Height(out))
	}
	if !strings.Contains(out, "▶ clip.mp4") {
		t.Errorf("tile = %q", out)
	}
}
