// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package geometry is the single source of truth for converting between
// percent-of-canvas and pixel coordinates, and for grid/edge/element
// snapping. Everything here is a pure function over explicit arguments;
// that is what keeps a layout reproducible across screen sizes.
package geometry

import (
	"math"

	"cardpress/internal/models"
)

// Size is a canvas size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// SizeOf converts a stored canvas size to a float Size.
func SizeOf(c models.CanvasSize) Size {
	return Size{Width: float64(c.Width), Height: float64(c.Height)}
}

// Rect is an element bounding box in pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the rect's right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the rect's bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// ToPercent converts a pixel rect to percent form for the given canvas.
// Inverse of ToPixel up to floating rounding.
func ToPercent(r Rect, canvas Size) models.PercentRect {
	return models.PercentRect{
		X:      r.X / canvas.Width * 100,
		Y:      r.Y / canvas.Height * 100,
		Width:  r.Width / canvas.Width * 100,
		Height: r.Height / canvas.Height * 100,
	}
}

// ToPixel converts a percent rect to pixels for the given canvas.
func ToPixel(p models.PercentRect, canvas Size) Rect {
	return Rect{
		X:      p.X / 100 * canvas.Width,
		Y:      p.Y / 100 * canvas.Height,
		Width:  p.Width / 100 * canvas.Width,
		Height: p.Height / 100 * canvas.Height,
	}
}

// ToPixelRect converts a percent rect to the persisted pixel-cache form.
func ToPixelRect(p models.PercentRect, canvas Size) models.PixelRect {
	r := ToPixel(p, canvas)
	return models.PixelRect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// ClampToCanvas forces the rect's bounding box inside
// [0,canvasWidth] x [0,canvasHeight]. Applied after every move/resize. A
// rect larger than the canvas is pinned to the top-left corner.
func ClampToCanvas(r Rect, canvas Size) Rect {
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.Right() > canvas.Width {
		r.X = canvas.Width - r.Width
	}
	if r.Bottom() > canvas.Height {
		r.Y = canvas.Height - r.Height
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	return r
}

// Snap adjusts a candidate rect's position to align with, in order of
// precedence: the grid, the canvas edges, and the edges of other elements
// on the same side. Each rule is gated by the grid's snap threshold, the
// axes resolve independently, and the first rule that lands within the
// threshold on an axis wins that axis. When override is true (the operator
// holds the snap-escape modifier) the candidate passes through untouched.
func Snap(candidate Rect, grid models.GridSettings, others []Rect, canvas Size, override bool) Rect {
	if override || !grid.SnapEnabled {
		return candidate
	}

	threshold := grid.SnapThresholdPx
	snapped := candidate

	snapped.X = snapAxis(candidate.X, candidate.Width, canvas.Width, grid, others, threshold, horizontalEdges)
	snapped.Y = snapAxis(candidate.Y, candidate.Height, canvas.Height, grid, others, threshold, verticalEdges)
	return snapped
}

// horizontalEdges returns a rect's x-axis edge coordinates.
func horizontalEdges(r Rect) (float64, float64) { return r.X, r.Right() }

// verticalEdges returns a rect's y-axis edge coordinates.
func verticalEdges(r Rect) (float64, float64) { return r.Y, r.Bottom() }

// snapAxis resolves one axis. pos is the leading edge, extent the rect's
// size on this axis, limit the canvas size on this axis.
func snapAxis(pos, extent, limit float64, grid models.GridSettings, others []Rect, threshold float64, edges func(Rect) (float64, float64)) float64 {
	// 1. Grid: round to the nearest multiple of the grid size.
	if grid.Enabled && grid.SizePx > 0 {
		g := math.Round(pos/grid.SizePx) * grid.SizePx
		if math.Abs(g-pos) <= threshold {
			return g
		}
	}

	// 2. Canvas edges: leading edge to 0, trailing edge flush to the limit.
	if grid.SnapToEdges {
		if math.Abs(pos) <= threshold {
			return 0
		}
		if math.Abs(pos+extent-limit) <= threshold {
			return limit - extent
		}
	}

	// 3. Other elements: align either of the candidate's edges to either
	// edge of another element; nearest match within threshold wins.
	if grid.SnapToElements {
		best := pos
		bestDist := threshold + 1
		for _, o := range others {
			lead, trail := edges(o)
			for _, target := range []float64{lead, trail} {
				// Candidate leading edge to target.
				if d := math.Abs(target - pos); d <= threshold && d < bestDist {
					best, bestDist = target, d
				}
				// Candidate trailing edge to target.
				if d := math.Abs(target - (pos + extent)); d <= threshold && d < bestDist {
					best, bestDist = target-extent, d
				}
			}
		}
		if bestDist <= threshold {
			return best
		}
	}

	return pos
}
