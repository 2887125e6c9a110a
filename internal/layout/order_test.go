package layout

import (
	"reflect"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		boxes []Box
		want  VisualOrder
	}{
		{
			name: "rows then columns",
			boxes: []Box{
				{Index: 0, Top: 0, Left: 0},
				{Index: 1, Top: 120, Left: 0},
				{Index: 2, Top: 0, Left: 200},
				{Index: 3, Top: 60, Left: 400},
			},
			want: VisualOrder{0, 2, 3, 1},
		},
		{
			name: "ties broken by index",
			boxes: []Box{
				{Index: 5, Top: 10, Left: 10},
				{Index: 2, Top: 10, Left: 10},
			},
			want: VisualOrder{2, 5},
		},
		{
			name:  "empty",
			boxes: nil,
			want:  VisualOrder{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Compute(tt.boxes)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompute_IsPermutationAndStable(t *testing.T) {
	t.Parallel()

	m := Masonry{Columns: 3, Width: 100, Gap: 8, RowHeight: 10}
	items := []Item{{0, 300}, {1, 80}, {2, 150}, {3, 40}, {4, 220}, {5, 90}, {6, 10}}
	boxes := m.Place(items)

	first := Compute(boxes)
	if len(first) != len(items) {
		t.Fatalf("len(order) = %d, want %d", len(first), len(items))
	}
	sorted := slices.Clone(first)
	slices.Sort(sorted)
	for i, idx := range sorted {
		if idx != i {
			t.Fatalf("order %v is not a permutation of 0..%d", first, len(items)-1)
		}
	}

	for i := 0; i < 5; i++ {
		if again := Compute(boxes); !reflect.DeepEqual(again, first) {
			t.Fatalf("recompute %d = %v, want %v", i, again, first)
		}
	}
}

func TestVisualOrderPosition(t *testing.T) {
	t.Parallel()

	v := VisualOrder{4, 0, 2}
	if got := v.Position(2); got != 2 {
		t.Errorf("Position(2) = %d, want 2", got)
	}
	if got := v.Position(7); got != -1 {
		t.Errorf("Position(7) = %d, want -1", got)
	}
}

func TestEngine(t *testing.T) {
	t.Parallel()

	boxes := []Box{{Index: 0, Top: 50}, {Index: 1, Top: 0}}
	e := NewEngine(ProviderFunc(func() []Box { return boxes }))

	if !e.Stale() {
		t.Error("new engine should be stale")
	}
	if got := e.Order(); len(got) != 0 {
		t.Errorf("Order() before recompute = %v, want empty", got)
	}

	got := e.Recompute()
	if !reflect.DeepEqual(got, VisualOrder{1, 0}) {
		t.Errorf("Recompute() = %v, want [1 0]", got)
	}
	if e.Stale() {
		t.Error("engine should not be stale after recompute")
	}

	// Mutating the returned copy must not leak into the engine.
	got[0] = 99
	if e.Order()[0] != 1 {
		t.Error("Order() shares storage with a returned slice")
	}

	e.Invalidate()
	if !e.Stale() {
		t.Error("Invalidate() did not mark the engine stale")
	}
}

func TestDebouncer(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := NewDebouncer(time.Hour, func() { calls.Add(1) })

	if d.Stop() {
		t.Error("Stop() with nothing pending returned true")
	}
	d.Trigger()
	if !d.Stop() {
		t.Error("Stop() with a pending call returned false")
	}
	if calls.Load() != 0 {
		t.Error("stopped call ran")
	}
}
