package geometry

import (
	"math"
	"testing"

	"cardpress/internal/models"
)

// TestPercentPixelRoundTrip verifies toPixel(toPercent(p)) reproduces the
// original within 0.5px across a range of canvas sizes.
func TestPercentPixelRoundTrip(t *testing.T) {
	canvases := []Size{
		{Width: 100, Height: 100},
		{Width: 400, Height: 250},
		{Width: 1024, Height: 640},
		{Width: 1999, Height: 1333},
	}
	rects := []Rect{
		{X: 0, Y: 0, Width: 50, Height: 20},
		{X: 33.3, Y: 77.7, Width: 123.4, Height: 45.6},
		{X: 1, Y: 1, Width: 1, Height: 1},
	}

	for _, canvas := range canvases {
		for _, r := range rects {
			back := ToPixel(ToPercent(r, canvas), canvas)
			if math.Abs(back.X-r.X) >= 0.5 || math.Abs(back.Y-r.Y) >= 0.5 ||
				math.Abs(back.Width-r.Width) >= 0.5 || math.Abs(back.Height-r.Height) >= 0.5 {
				t.Errorf("round-trip drift at canvas %+v: got %+v, want %+v", canvas, back, r)
			}
		}
	}
}

// TestToPixelScenario checks the documented 400x250 case: an element at
// 10%/10% lands at pixel (40,25).
func TestToPixelScenario(t *testing.T) {
	canvas := Size{Width: 400, Height: 250}
	p := models.PercentRect{X: 10, Y: 10, Width: 40, Height: 8}

	r := ToPixel(p, canvas)
	if r.X != 40 || r.Y != 25 {
		t.Errorf("position = (%v,%v), want (40,25)", r.X, r.Y)
	}
}

// TestClampToCanvas verifies boxes are forced inside the canvas.
func TestClampToCanvas(t *testing.T) {
	canvas := Size{Width: 400, Height: 250}

	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{
			name: "inside is untouched",
			in:   Rect{X: 10, Y: 10, Width: 50, Height: 50},
			want: Rect{X: 10, Y: 10, Width: 50, Height: 50},
		},
		{
			name: "negative origin pulled to zero",
			in:   Rect{X: -5, Y: -9, Width: 50, Height: 50},
			want: Rect{X: 0, Y: 0, Width: 50, Height: 50},
		},
		{
			name: "overflow pulled back to edge",
			in:   Rect{X: 390, Y: 240, Width: 50, Height: 50},
			want: Rect{X: 350, Y: 200, Width: 50, Height: 50},
		},
		{
			name: "oversized pinned to origin",
			in:   Rect{X: 10, Y: 10, Width: 500, Height: 300},
			want: Rect{X: 0, Y: 0, Width: 500, Height: 300},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampToCanvas(tc.in, canvas); got != tc.want {
				t.Errorf("ClampToCanvas = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func snapGrid() models.GridSettings {
	return models.GridSettings{
		Enabled:         true,
		SizePx:          10,
		SnapEnabled:     true,
		SnapThresholdPx: 4,
		SnapToElements:  true,
		SnapToEdges:     true,
	}
}

// TestSnapGridWins verifies grid snap takes precedence when a candidate is
// within threshold of a grid line, a canvas edge, and another element's
// edge at the same time.
func TestSnapGridWins(t *testing.T) {
	grid := snapGrid()
	canvas := Size{Width: 400, Height: 250}
	// x=2: within 4px of grid line 0, canvas edge 0, and a neighbour at x=3.
	others := []Rect{{X: 3, Y: 100, Width: 40, Height: 20}}
	candidate := Rect{X: 2, Y: 52, Width: 60, Height: 20}

	got := Snap(candidate, grid, others, canvas, false)
	if got.X != 0 {
		t.Errorf("X = %v, want grid-snapped 0", got.X)
	}
	if got.Y != 50 {
		t.Errorf("Y = %v, want grid-snapped 50", got.Y)
	}
}

// TestSnapEdgeBeforeElement verifies the edge rule fires when the grid
// misses but both the canvas edge and an element edge are in range.
func TestSnapEdgeBeforeElement(t *testing.T) {
	grid := snapGrid()
	grid.Enabled = false // no grid candidates
	canvas := Size{Width: 400, Height: 250}
	others := []Rect{{X: 1, Y: 0, Width: 40, Height: 20}}

	got := Snap(Rect{X: 2, Y: 100, Width: 60, Height: 20}, grid, others, canvas, false)
	if got.X != 0 {
		t.Errorf("X = %v, want canvas edge 0, not element edge 1", got.X)
	}
}

// TestSnapElementEdge verifies alignment to a neighbour when grid and
// canvas edges are out of range.
func TestSnapElementEdge(t *testing.T) {
	grid := snapGrid()
	grid.Enabled = false
	canvas := Size{Width: 400, Height: 250}
	others := []Rect{{X: 103, Y: 40, Width: 50, Height: 20}}

	tests := []struct {
		name string
		in   Rect
		want float64
	}{
		{name: "leading edge aligns to neighbour left", in: Rect{X: 101, Y: 200, Width: 60, Height: 20}, want: 103},
		{name: "leading edge aligns to neighbour right", in: Rect{X: 151, Y: 200, Width: 60, Height: 20}, want: 153},
		{name: "trailing edge aligns to neighbour left", in: Rect{X: 45, Y: 200, Width: 60, Height: 20}, want: 43},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Snap(tc.in, grid, others, canvas, false)
			if got.X != tc.want {
				t.Errorf("X = %v, want %v", got.X, tc.want)
			}
		})
	}
}

// TestSnapOverride verifies the escape modifier disables snapping entirely.
func TestSnapOverride(t *testing.T) {
	grid := snapGrid()
	canvas := Size{Width: 400, Height: 250}
	candidate := Rect{X: 2, Y: 2, Width: 60, Height: 20}

	if got := Snap(candidate, grid, nil, canvas, true); got != candidate {
		t.Errorf("override snap = %+v, want untouched %+v", got, candidate)
	}

	grid.SnapEnabled = false
	if got := Snap(candidate, grid, nil, canvas, false); got != candidate {
		t.Errorf("disabled snap = %+v, want untouched %+v", got, candidate)
	}
}

// TestSnapOutOfThreshold verifies candidates beyond the threshold pass through.
func TestSnapOutOfThreshold(t *testing.T) {
	grid := snapGrid()
	canvas := Size{Width: 400, Height: 250}
	candidate := Rect{X: 15, Y: 35, Width: 61, Height: 21}
	// 15 and 35 are 5px from the nearest grid line, threshold is 4.

	if got := Snap(candidate, grid, nil, canvas, false); got != candidate {
		t.Errorf("Snap = %+v, want untouched %+v", got, candidate)
	}
}
