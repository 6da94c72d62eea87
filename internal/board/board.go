package board

import (
	"time"

	"casewall/internal/geom"
)

const (
	// Card size in model units. Edges attach at the card centre.
	NodeWidth  = 288.0
	NodeHeight = 140.0

	// New cards are placed so that this point of the card sits under the
	// viewport centre.
	placeOffsetX = 100.0
	placeOffsetY = 50.0

	DefaultNodeTitle = "New record"
	DefaultEdgeLabel = "Connection"
	DefaultCaseName  = "New investigation"
	DefaultCaseDesc  = "Describe the goals of this analysis..."

	dateLayout = "2006-01-02"
)

// Thread colours offered for edges. The first one is the default.
var ThreadColors = []struct {
	Name  string
	Color string
}{
	{"Default", "#a1a1aa"},
	{"Blood", "#e11d48"},
	{"Confirmed", "#10b981"},
	{"Alert", "#f59e0b"},
	{"Cold", "#3b82f6"},
	{"Hidden", "#a855f7"},
}

// Ribbon colours offered for the case label on the dashboard.
var RibbonColors = []struct {
	Name  string
	Color string
}{
	{"Crime", "#f43f5e"},
	{"Cold", "#60a5fa"},
	{"Secret", "#10b981"},
	{"Mystery", "#8b5cf6"},
	{"Alert", "#fbbf24"},
	{"Archive", "#71717a"},
}

// DefaultThreadColor is the colour given to new edges.
func DefaultThreadColor() string { return ThreadColors[0].Color }

type Option func(*Board)

// WithClock overrides the time source used for dates and UpdatedAt stamps.
func WithClock(now Clock) Option {
	return func(b *Board) {
		b.now = now
	}
}

// WithIDs overrides the id source.
func WithIDs(newID IDFunc) Option {
	return func(b *Board) {
		b.newID = newID
	}
}

// Board applies mutations to one case. Every mutation that changes the
// case stamps UpdatedAt; no-ops leave it untouched.
type Board struct {
	c     *Case
	now   Clock
	newID IDFunc
}

func New(c *Case, opts ...Option) *Board {
	b := &Board{
		c:     c,
		now:   time.Now,
		newID: NanoID,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewCase creates an empty case with a fresh id.
func NewCase(opts ...Option) Case {
	b := New(nil, opts...)
	now := b.now()
	return Case{
		ID:          b.newID("case"),
		Name:        DefaultCaseName,
		Description: DefaultCaseDesc,
		CreatedAt:   now,
		UpdatedAt:   now,
		RibbonColor: RibbonColors[0].Color,
		Nodes:       []Node{},
		Edges:       []Edge{},
		Categories:  []CustomCategory{},
	}
}

func (b *Board) Case() *Case { return b.c }

// NewID exposes the board's id source for callers that build records
// themselves (imports, extraction drafts).
func (b *Board) NewID(prefix string) string { return b.newID(prefix) }

func (b *Board) touch() {
	b.c.UpdatedAt = b.now()
}

// AddNode creates a node of the given type centred under center (the model
// point shown at the middle of the viewport). Person and location field
// groups are initialised only for those types.
func (b *Board) AddNode(t NodeType, center geom.ModelPoint) Node {
	n := Node{
		ID:           b.newID("node"),
		Type:         t,
		Title:        DefaultNodeTitle,
		Date:         b.now().Format(dateLayout),
		Tags:         []string{},
		Status:       StatusPending,
		Position:     geom.Model(center.X-placeOffsetX, center.Y-placeOffsetY),
		CustomFields: []CustomField{},
	}
	switch t {
	case TypePerson:
		n.PersonFields = &PersonFields{}
	case TypeLocation:
		n.LocationFields = &LocationFields{}
	}
	b.c.Nodes = append(b.c.Nodes, n)
	b.touch()
	return n
}

// InsertNode appends a fully built node, assigning an id when it has none.
func (b *Board) InsertNode(n Node) Node {
	if n.ID == "" {
		n.ID = b.newID("node")
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if n.CustomFields == nil {
		n.CustomFields = []CustomField{}
	}
	b.c.Nodes = append(b.c.Nodes, n)
	b.touch()
	return n
}

// UpdateNode replaces the node record with fn applied to a copy of it.
func (b *Board) UpdateNode(id string, fn func(*Node)) bool {
	for i := range b.c.Nodes {
		if b.c.Nodes[i].ID != id {
			continue
		}
		next := b.c.Nodes[i]
		fn(&next)
		next.ID = id
		b.c.Nodes[i] = next
		b.touch()
		return true
	}
	return false
}

func (b *Board) MoveNode(id string, pos geom.ModelPoint) bool {
	return b.UpdateNode(id, func(n *Node) {
		n.Position = pos
	})
}

func (b *Board) UpdatePersonFields(id string, fn func(*PersonFields)) bool {
	return b.UpdateNode(id, func(n *Node) {
		pf := PersonFields{}
		if n.PersonFields != nil {
			pf = *n.PersonFields
		}
		fn(&pf)
		n.PersonFields = &pf
	})
}

func (b *Board) UpdateLocationFields(id string, fn func(*LocationFields)) bool {
	return b.UpdateNode(id, func(n *Node) {
		lf := LocationFields{}
		if n.LocationFields != nil {
			lf = *n.LocationFields
		}
		fn(&lf)
		n.LocationFields = &lf
	})
}

// AddCustomField appends an empty label/value row.
func (b *Board) AddCustomField(id string) bool {
	return b.UpdateNode(id, func(n *Node) {
		n.CustomFields = append(append([]CustomField{}, n.CustomFields...), CustomField{})
	})
}

func (b *Board) UpdateCustomField(id string, index int, f CustomField) bool {
	n, ok := b.c.Node(id)
	if !ok || index < 0 || index >= len(n.CustomFields) {
		return false
	}
	return b.UpdateNode(id, func(n *Node) {
		fields := append([]CustomField{}, n.CustomFields...)
		fields[index] = f
		n.CustomFields = fields
	})
}

func (b *Board) RemoveCustomField(id string, index int) bool {
	n, ok := b.c.Node(id)
	if !ok || index < 0 || index >= len(n.CustomFields) {
		return false
	}
	return b.UpdateNode(id, func(n *Node) {
		fields := make([]CustomField, 0, len(n.CustomFields)-1)
		for i, f := range n.CustomFields {
			if i != index {
				fields = append(fields, f)
			}
		}
		n.CustomFields = fields
	})
}

// DeleteNode removes the node and every edge that has it as an endpoint.
func (b *Board) DeleteNode(id string) bool {
	if _, ok := b.c.Node(id); !ok {
		return false
	}

	nodes := make([]Node, 0, len(b.c.Nodes)-1)
	for _, n := range b.c.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	edges := make([]Edge, 0, len(b.c.Edges))
	for _, e := range b.c.Edges {
		if !e.Touches(id) {
			edges = append(edges, e)
		}
	}

	b.c.Nodes = nodes
	b.c.Edges = edges
	b.touch()
	return true
}

// AddEdge connects source and target. It is a silent no-op when the
// endpoints are the same node or when the unordered pair is already
// connected; the second return value reports whether an edge was created.
func (b *Board) AddEdge(source, target string) (Edge, bool) {
	if source == target {
		return Edge{}, false
	}
	if b.c.HasEdgeBetween(source, target) {
		return Edge{}, false
	}

	e := Edge{
		ID:        b.newID("edge"),
		Source:    source,
		Target:    target,
		Label:     DefaultEdgeLabel,
		Intensity: IntensityMedium,
		Color:     DefaultThreadColor(),
	}
	b.c.Edges = append(b.c.Edges, e)
	b.touch()
	return e, true
}

// UpdateEdge replaces the edge record with fn applied to a copy of it.
// Endpoints cannot be changed this way.
func (b *Board) UpdateEdge(id string, fn func(*Edge)) bool {
	for i := range b.c.Edges {
		if b.c.Edges[i].ID != id {
			continue
		}
		prev := b.c.Edges[i]
		next := prev
		fn(&next)
		next.ID, next.Source, next.Target = prev.ID, prev.Source, prev.Target
		b.c.Edges[i] = next
		b.touch()
		return true
	}
	return false
}

func (b *Board) SetControlPoint(id string, p geom.ModelPoint) bool {
	return b.UpdateEdge(id, func(e *Edge) {
		e.ControlPoint = &p
	})
}

// ResetCurvature drops the user control point so the default sag is used
// again. No other field changes.
func (b *Board) ResetCurvature(id string) bool {
	return b.UpdateEdge(id, func(e *Edge) {
		e.ControlPoint = nil
	})
}

// SetCustomOrder overrides the edge's sequence number; order <= 0 clears it.
func (b *Board) SetCustomOrder(id string, order int) bool {
	return b.UpdateEdge(id, func(e *Edge) {
		if order <= 0 {
			e.CustomOrder = nil
			return
		}
		e.CustomOrder = &order
	})
}

func (b *Board) DeleteEdge(id string) bool {
	if _, _, ok := b.c.Edge(id); !ok {
		return false
	}
	edges := make([]Edge, 0, len(b.c.Edges)-1)
	for _, e := range b.c.Edges {
		if e.ID != id {
			edges = append(edges, e)
		}
	}
	b.c.Edges = edges
	b.touch()
	return true
}

// AddCategory registers a custom node type on the case.
func (b *Board) AddCategory(name, icon, color string) (CustomCategory, bool) {
	if name == "" {
		return CustomCategory{}, false
	}
	cat := CustomCategory{
		ID:    b.newID("cat"),
		Name:  name,
		Icon:  icon,
		Color: color,
	}
	b.c.Categories = append(b.c.Categories, cat)
	b.touch()
	return cat, true
}

// DeleteCategory removes a custom category. Nodes that use it keep the id
// in their Type and fall back to the neutral appearance.
func (b *Board) DeleteCategory(id string) bool {
	if _, ok := b.c.Category(id); !ok {
		return false
	}
	cats := make([]CustomCategory, 0, len(b.c.Categories)-1)
	for _, c := range b.c.Categories {
		if c.ID != id {
			cats = append(cats, c)
		}
	}
	b.c.Categories = cats
	b.touch()
	return true
}

// CaseInfo holds the editable case metadata. Empty strings leave the
// current value in place.
type CaseInfo struct {
	Name        string
	Description string
	RibbonColor string
	CoverImage  string
}

func (b *Board) UpdateInfo(info CaseInfo) {
	if info.Name != "" {
		b.c.Name = info.Name
	}
	if info.Description != "" {
		b.c.Description = info.Description
	}
	if info.RibbonColor != "" {
		b.c.RibbonColor = info.RibbonColor
	}
	if info.CoverImage != "" {
		b.c.CoverImage = info.CoverImage
	}
	b.touch()
}
