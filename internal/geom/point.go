// Package geom holds the two coordinate spaces of the board canvas.
//
// ScreenPoint values come from pointer events and are measured in pixels
// from the canvas top-left. ModelPoint values are what gets stored on nodes
// and edges. The types are deliberately distinct; the viewport package is
// the only place that converts between them.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ScreenPoint is a pixel position relative to the canvas container.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ModelPoint is a position in stored (pan/zoom independent) space.
type ModelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Screen builds a ScreenPoint.
func Screen(x, y float64) ScreenPoint { return ScreenPoint{X: x, Y: y} }

// Model builds a ModelPoint.
func Model(x, y float64) ModelPoint { return ModelPoint{X: x, Y: y} }

func (p ScreenPoint) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }
func (p ModelPoint) vec() r2.Vec  { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) ModelPoint { return ModelPoint{X: v.X, Y: v.Y} }

// Sub returns the screen-space delta p - q.
func (p ScreenPoint) Sub(q ScreenPoint) ScreenPoint {
	v := r2.Sub(p.vec(), q.vec())
	return ScreenPoint{X: v.X, Y: v.Y}
}

// Dist is the Euclidean distance between two screen points.
func Dist(a, b ScreenPoint) float64 {
	return r2.Norm(r2.Sub(a.vec(), b.vec()))
}

// Add returns p + q.
func (p ModelPoint) Add(q ModelPoint) ModelPoint { return fromVec(r2.Add(p.vec(), q.vec())) }

// Sub returns p - q.
func (p ModelPoint) Sub(q ModelPoint) ModelPoint { return fromVec(r2.Sub(p.vec(), q.vec())) }

// Scale returns p multiplied by f.
func (p ModelPoint) Scale(f float64) ModelPoint { return fromVec(r2.Scale(f, p.vec())) }

// Distance is the Euclidean distance between two model points.
func Distance(a, b ModelPoint) float64 {
	return r2.Norm(r2.Sub(a.vec(), b.vec()))
}

// Lerp interpolates between a and b at t in [0,1].
func Lerp(a, b ModelPoint, t float64) ModelPoint {
	return a.Add(b.Sub(a).Scale(t))
}

// ApproxEqual reports whether two model points are within tol on both axes.
func ApproxEqual(a, b ModelPoint, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}
