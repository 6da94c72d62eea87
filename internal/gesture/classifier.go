// Package gesture turns raw pointer events into canvas actions: panning,
// moving cards, bending threads, selecting and linking.
//
// Input is single-pointer and strictly sequential. A pointer-down is
// expected to be followed by moves and exactly one pointer-up before the
// next pointer-down.
package gesture

import (
	"casewall/internal/geom"
	"casewall/internal/viewport"
)

// ClickThreshold is the screen distance below which a node drag is
// reclassified as a click on pointer-up.
const ClickThreshold = 8.0

// HitKind is what a pointer-down landed on.
type HitKind int

const (
	HitCanvas HitKind = iota
	HitNode
	HitEdgeHandle
	HitEdge
)

func (k HitKind) String() string {
	switch k {
	case HitNode:
		return "node"
	case HitEdgeHandle:
		return "edge-handle"
	case HitEdge:
		return "edge"
	default:
		return "canvas"
	}
}

// Hit is the result of hit-testing a pointer position against the scene.
type Hit struct {
	Kind HitKind
	ID   string
}

// DragKind is the kind of an in-progress drag.
type DragKind int

const (
	DragCanvas DragKind = iota
	DragNode
	DragControlPoint
)

func (k DragKind) String() string {
	switch k {
	case DragNode:
		return "node"
	case DragControlPoint:
		return "edge-cp"
	default:
		return "canvas"
	}
}

// Drag exists only between pointer-down and pointer-up.
type Drag struct {
	Kind     DragKind
	TargetID string
	// Grab is the screen-space grab offset for canvas drags.
	Grab geom.ScreenPoint
	// Offset is the model-space delta between pointer and node position
	// for node drags.
	Offset geom.ModelPoint
	Start  geom.ScreenPoint
	// Origin is the node position when the drag began.
	Origin geom.ModelPoint
}

// Selection holds at most one selected node and one selected edge.
type Selection struct {
	NodeID string
	EdgeID string
}

// Graph is the part of the editor the classifier mutates.
type Graph interface {
	NodePosition(id string) (geom.ModelPoint, bool)
	MoveNode(id string, pos geom.ModelPoint) bool
	SetControlPoint(edgeID string, p geom.ModelPoint) bool
	Connect(source, target string) bool
}

// Classifier is the pointer state machine of one board view.
type Classifier struct {
	view  *viewport.Transform
	graph Graph

	drag       *Drag
	sel        Selection
	connecting bool
	pending    string
	pointer    geom.ModelPoint
}

func New(view *viewport.Transform, graph Graph) *Classifier {
	return &Classifier{view: view, graph: graph}
}

func (c *Classifier) Selection() Selection { return c.sel }

// Dragging returns the current drag, or nil when idle.
func (c *Classifier) Dragging() *Drag {
	if c.drag == nil {
		return nil
	}
	d := *c.drag
	return &d
}

func (c *Classifier) Connecting() bool { return c.connecting }

// PendingSource is the first node picked in connection mode, or "".
func (c *Classifier) PendingSource() string { return c.pending }

// Pointer is the last pointer position in model space, used to draw the
// rubber band from the pending source.
func (c *Classifier) Pointer() geom.ModelPoint { return c.pointer }

// Select replaces the selection, e.g. after keyboard navigation.
func (c *Classifier) Select(s Selection) { c.sel = s }

// ClearSelection drops both selections and leaves connection mode.
func (c *Classifier) ClearSelection() {
	c.sel = Selection{}
	c.connecting = false
	c.pending = ""
}

// Forget removes a deleted node or edge from the selection state.
func (c *Classifier) Forget(id string) {
	if c.sel.NodeID == id {
		c.sel.NodeID = ""
	}
	if c.sel.EdgeID == id {
		c.sel.EdgeID = ""
	}
	if c.pending == id {
		c.pending = ""
	}
	if c.drag != nil && c.drag.TargetID == id {
		c.drag = nil
	}
}

// ToggleConnectionMode flips connection mode. The pending source and the
// edge selection are cleared either way.
func (c *Classifier) ToggleConnectionMode() {
	c.connecting = !c.connecting
	c.pending = ""
	c.sel.EdgeID = ""
}

// CancelConnection leaves connection mode without linking.
func (c *Classifier) CancelConnection() {
	c.connecting = false
	c.pending = ""
}

// PointerDown starts a gesture.
func (c *Classifier) PointerDown(p geom.ScreenPoint, hit Hit) {
	c.pointer = c.view.ScreenToModel(p)

	switch hit.Kind {
	case HitCanvas:
		if c.connecting {
			return
		}
		c.drag = &Drag{
			Kind:     DragCanvas,
			TargetID: "canvas",
			Grab:     p.Sub(c.view.Offset()),
			Start:    p,
		}
		c.sel = Selection{}

	case HitNode:
		pos, ok := c.graph.NodePosition(hit.ID)
		if !ok {
			return
		}
		c.drag = &Drag{
			Kind:     DragNode,
			TargetID: hit.ID,
			Offset:   c.pointer.Sub(pos),
			Start:    p,
			Origin:   pos,
		}
		c.sel.EdgeID = ""

	case HitEdgeHandle:
		c.drag = &Drag{
			Kind:     DragControlPoint,
			TargetID: hit.ID,
			Start:    p,
		}
		c.sel = Selection{EdgeID: hit.ID}

	case HitEdge:
		c.sel = Selection{EdgeID: hit.ID}
	}
}

// PointerMove updates the active drag.
func (c *Classifier) PointerMove(p geom.ScreenPoint) {
	c.pointer = c.view.ScreenToModel(p)
	if c.drag == nil {
		return
	}

	switch c.drag.Kind {
	case DragCanvas:
		c.view.PanTo(p, c.drag.Grab)
	case DragNode:
		if c.connecting {
			return
		}
		c.graph.MoveNode(c.drag.TargetID, c.pointer.Sub(c.drag.Offset))
	case DragControlPoint:
		c.graph.SetControlPoint(c.drag.TargetID, c.pointer)
	}
}

// PointerUp ends the gesture. A node drag shorter than ClickThreshold
// becomes a click: the node goes back to where it started and click
// handling runs. The drag state is cleared in every case.
func (c *Classifier) PointerUp(p geom.ScreenPoint) {
	d := c.drag
	c.drag = nil
	if d == nil || d.Kind != DragNode {
		return
	}
	if geom.Dist(p, d.Start) >= ClickThreshold {
		return
	}

	if cur, ok := c.graph.NodePosition(d.TargetID); ok && cur != d.Origin {
		c.graph.MoveNode(d.TargetID, d.Origin)
	}
	c.clickNode(d.TargetID)
}

func (c *Classifier) clickNode(id string) {
	if !c.connecting {
		c.sel = Selection{NodeID: id}
		return
	}
	if c.pending == "" {
		c.pending = id
		return
	}
	c.graph.Connect(c.pending, id)
	c.pending = ""
	c.connecting = false
}

// Wheel zooms the view.
func (c *Classifier) Wheel(deltaY float64) {
	c.view.Wheel(deltaY)
}
