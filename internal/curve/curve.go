// Package curve computes the quadratic thread drawn for every edge, along
// with the points used to place its label, order badge and hit area.
package curve

import (
	"fmt"
	"math"

	"casewall/internal/board"
	"casewall/internal/geom"
)

const (
	// MaxSag caps the default bend of a thread.
	MaxSag = 100.0
	// SagFactor is the share of the anchor distance used as default bend.
	SagFactor = 0.15

	// HitWidth is the width of the invisible stroke used for selection.
	HitWidth = 32.0
	// HandleRadius is the radius of the order badge at the midpoint.
	HandleRadius = 12.0
	// LabelLift is how far above the midpoint the label baseline sits.
	LabelLift = 18.0

	hitSegments = 32
)

// Anchor is the point where threads attach to a card: its centre.
func Anchor(n board.Node) geom.ModelPoint {
	return n.Position.Add(geom.Model(board.NodeWidth/2, board.NodeHeight/2))
}

// Sag is the default bend for anchors d apart.
func Sag(d float64) float64 {
	return math.Min(MaxSag, d*SagFactor)
}

// DefaultMid is the on-curve midpoint used when the edge has no control
// point: the straight midpoint pushed down when the target sits lower than
// the source, and up otherwise.
func DefaultMid(p1, p2 geom.ModelPoint) geom.ModelPoint {
	sag := Sag(geom.Distance(p1, p2))
	if p2.Y <= p1.Y {
		sag = -sag
	}
	mid := geom.Lerp(p1, p2, 0.5)
	return geom.Model(mid.X, mid.Y+sag)
}

// ControlFor turns a desired on-curve midpoint into the Bézier control
// point that makes the curve pass through it at t=0.5.
func ControlFor(p1, p2, mid geom.ModelPoint) geom.ModelPoint {
	return mid.Scale(2).Sub(p1.Scale(0.5)).Sub(p2.Scale(0.5))
}

// Path is one quadratic thread in model space.
type Path struct {
	P1   geom.ModelPoint
	Ctrl geom.ModelPoint
	P2   geom.ModelPoint
	// Mid is the on-curve point at t=0.5; it anchors the badge and label.
	Mid geom.ModelPoint
}

// Between builds the path joining two anchors. A nil cp selects the
// default bend.
func Between(p1, p2 geom.ModelPoint, cp *geom.ModelPoint) Path {
	mid := DefaultMid(p1, p2)
	if cp != nil {
		mid = *cp
	}
	return Path{P1: p1, Ctrl: ControlFor(p1, p2, mid), P2: p2, Mid: mid}
}

// For builds the path of e inside c. It reports false when either endpoint
// is missing.
func For(c *board.Case, e board.Edge) (Path, bool) {
	s, ok := c.Node(e.Source)
	if !ok {
		return Path{}, false
	}
	t, ok := c.Node(e.Target)
	if !ok {
		return Path{}, false
	}
	return Between(Anchor(*s), Anchor(*t), e.ControlPoint), true
}

// At evaluates the curve at t in [0,1].
func (p Path) At(t float64) geom.ModelPoint {
	u := 1 - t
	return p.P1.Scale(u * u).Add(p.Ctrl.Scale(2 * u * t)).Add(p.P2.Scale(t * t))
}

// Sample returns n+1 evenly spaced (in t) points from P1 to P2.
func (p Path) Sample(n int) []geom.ModelPoint {
	if n < 1 {
		n = 1
	}
	pts := make([]geom.ModelPoint, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = p.At(float64(i) / float64(n))
	}
	return pts
}

// Distance approximates the shortest distance from q to the curve using a
// polyline of the sampled curve.
func (p Path) Distance(q geom.ModelPoint) float64 {
	pts := p.Sample(hitSegments)
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		best = math.Min(best, segmentDistance(q, pts[i-1], pts[i]))
	}
	return best
}

// Hit reports whether q falls inside the invisible selection stroke.
func (p Path) Hit(q geom.ModelPoint) bool {
	return p.Distance(q) <= HitWidth/2
}

// OnHandle reports whether q is inside the midpoint badge.
func (p Path) OnHandle(q geom.ModelPoint) bool {
	return geom.Distance(q, p.Mid) <= HandleRadius
}

// LabelPos is where the edge label is centred.
func (p Path) LabelPos() geom.ModelPoint {
	return geom.Model(p.Mid.X, p.Mid.Y-LabelLift)
}

// SVGData renders the path in SVG path syntax.
func (p Path) SVGData() string {
	return fmt.Sprintf("M %g %g Q %g %g %g %g", p.P1.X, p.P1.Y, p.Ctrl.X, p.Ctrl.Y, p.P2.X, p.P2.Y)
}

func segmentDistance(q, a, b geom.ModelPoint) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return geom.Distance(q, a)
	}
	aq := q.Sub(a)
	t := (aq.X*ab.X + aq.Y*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return geom.Distance(q, geom.Lerp(a, b, t))
}

// OrderBadge is the sequence number shown on an edge: its custom order
// when set, else its 1-based position in the edge list.
func OrderBadge(e board.Edge, index int) int {
	if e.CustomOrder != nil {
		return *e.CustomOrder
	}
	return index + 1
}

// StrokeWidth is the visible line width for an edge.
func StrokeWidth(e board.Edge, selected bool) float64 {
	switch {
	case selected:
		return 5
	case e.Intensity == board.IntensityStrong:
		return 4
	default:
		return 2
	}
}
