// Package viewport maps pointer (screen) coordinates to stored (model)
// coordinates through a pan offset and a uniform zoom.
package viewport

import (
	"math"

	"casewall/internal/geom"
)

const (
	MinZoom = 0.1
	MaxZoom = 3.0

	// wheelBase and wheelDivisor give zoom *= 1.1^(-deltaY/200).
	wheelBase    = 1.1
	wheelDivisor = 200.0
)

// Transform is the affine screen<->model mapping of one open board view.
// It is session state and is never persisted with the case. A zero Zoom
// reads as 1, so the zero value is the identity.
type Transform struct {
	X    float64
	Y    float64
	Zoom float64
}

func (t Transform) scale() float64 {
	if t.Zoom == 0 {
		return 1
	}
	return t.Zoom
}

// New returns the identity transform {0,0,1}.
func New() Transform {
	return Transform{Zoom: 1}
}

// ScreenToModel converts a pointer position into stored space.
func (t Transform) ScreenToModel(p geom.ScreenPoint) geom.ModelPoint {
	return geom.ModelPoint{
		X: (p.X - t.X) / t.scale(),
		Y: (p.Y - t.Y) / t.scale(),
	}
}

// ModelToScreen converts a stored position into pointer space.
func (t Transform) ModelToScreen(p geom.ModelPoint) geom.ScreenPoint {
	return geom.ScreenPoint{
		X: p.X*t.scale() + t.X,
		Y: p.Y*t.scale() + t.Y,
	}
}

// Offset is the translation part of the transform as a screen point.
func (t Transform) Offset() geom.ScreenPoint {
	return geom.ScreenPoint{X: t.X, Y: t.Y}
}

// PanTo moves the translation so that grab (captured at gesture start as
// pointer - offset) stays under the pointer. Panning is a pure screen-space
// translation and is not divided by zoom.
func (t *Transform) PanTo(pointer, grab geom.ScreenPoint) {
	t.X = pointer.X - grab.X
	t.Y = pointer.Y - grab.Y
}

// PanBy shifts the translation by a screen-space delta.
func (t *Transform) PanBy(dx, dy float64) {
	t.X += dx
	t.Y += dy
}

// Wheel applies a scroll delta. The zoom is anchored at the origin, not
// at the cursor: nodes drift toward the top-left when zooming out.
func (t *Transform) Wheel(deltaY float64) {
	t.Zoom = Clamp(t.scale() * math.Pow(wheelBase, -deltaY/wheelDivisor))
}

// Reset restores {0,0,1}.
func (t *Transform) Reset() {
	*t = New()
}

// VisualCenter returns the model point currently shown at the centre of a
// viewport of the given pixel size.
func (t Transform) VisualCenter(width, height float64) geom.ModelPoint {
	return t.ScreenToModel(geom.ScreenPoint{X: width / 2, Y: height / 2})
}

// Clamp limits a zoom factor to [MinZoom, MaxZoom].
func Clamp(zoom float64) float64 {
	return math.Min(math.Max(zoom, MinZoom), MaxZoom)
}
