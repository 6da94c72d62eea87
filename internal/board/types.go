// Package board defines the investigation case model and every structural
// mutation on it. JSON field names and enum values match the .mapinv
// archive format so existing files keep loading.
package board

import (
	"slices"
	"time"

	"casewall/internal/geom"
)

// NodeType is either one of the built-in entity kinds or the id of a
// custom category defined on the case.
type NodeType string

const (
	TypePerson     NodeType = "pessoa"
	TypeEvent      NodeType = "evento"
	TypeLocation   NodeType = "local"
	TypeEvidence   NodeType = "prova"
	TypeHypothesis NodeType = "hipotese"
	TypeClue       NodeType = "pista"
)

// BuiltinTypes lists the built-in kinds in palette order.
var BuiltinTypes = []NodeType{
	TypePerson,
	TypeEvent,
	TypeEvidence,
	TypeLocation,
	TypeHypothesis,
	TypeClue,
}

// IsBuiltin reports whether t is one of the closed built-in kinds.
func (t NodeType) IsBuiltin() bool {
	for _, b := range BuiltinTypes {
		if t == b {
			return true
		}
	}
	return false
}

type NodeStatus string

const (
	StatusConfirmed  NodeStatus = "confirmado"
	StatusPending    NodeStatus = "pendente"
	StatusHypothesis NodeStatus = "hipotese"
)

type Intensity string

const (
	IntensityWeak   Intensity = "fraca"
	IntensityMedium Intensity = "media"
	IntensityStrong Intensity = "forte"
)

// CustomField is a free label/value pair shown on a card.
type CustomField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PersonFields is the typed field group for person nodes.
type PersonFields struct {
	TaxID     string `json:"cpf,omitempty"`
	BirthDate string `json:"dob,omitempty"`
	Age       string `json:"age,omitempty"`
}

// LocationFields is the typed field group for location nodes.
type LocationFields struct {
	PostalCode string `json:"cep,omitempty"`
	State      string `json:"estado,omitempty"`
	City       string `json:"municipio,omitempty"`
	Street     string `json:"logradouro,omitempty"`
	District   string `json:"bairro,omitempty"`
	Complement string `json:"complemento,omitempty"`
	Number     string `json:"numero,omitempty"`
}

// CustomCategory is a user-defined node type. Nodes reference it by ID in
// their Type field.
type CustomCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Node is one entity card on the board.
type Node struct {
	ID             string          `json:"id"`
	Type           NodeType        `json:"type"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Date           string          `json:"date"`
	Tags           []string        `json:"tags"`
	Status         NodeStatus      `json:"status"`
	StatusLabel    string          `json:"statusLabel,omitempty"`
	Position       geom.ModelPoint `json:"position"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	PersonFields   *PersonFields   `json:"personFields,omitempty"`
	LocationFields *LocationFields `json:"locationFields,omitempty"`
	CustomFields   []CustomField   `json:"customFields"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

// Edge is a thread between two nodes. A nil ControlPoint means the default
// curvature is used.
type Edge struct {
	ID              string           `json:"id"`
	Source          string           `json:"source"`
	Target          string           `json:"target"`
	Label           string           `json:"label"`
	Intensity       Intensity        `json:"intensity"`
	Notes           string           `json:"notes"`
	IsBiDirectional bool             `json:"isBiDirectional"`
	Color           string           `json:"color,omitempty"`
	ControlPoint    *geom.ModelPoint `json:"controlPoint,omitempty"`
	CustomOrder     *int             `json:"customOrder,omitempty"`
}

// Connects reports whether the edge joins a and b in either direction.
func (e Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// Case is one investigation: the unit that is listed, imported and
// exported.
type Case struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	CoverImage  string           `json:"coverImage,omitempty"`
	RibbonColor string           `json:"ribbonColor,omitempty"`
	Nodes       []Node           `json:"nodes"`
	Edges       []Edge           `json:"edges"`
	Categories  []CustomCategory `json:"categories,omitempty"`
}

// Node returns the node with the given id.
func (c *Case) Node(id string) (*Node, bool) {
	for i := range c.Nodes {
		if c.Nodes[i].ID == id {
			return &c.Nodes[i], true
		}
	}
	return nil, false
}

// Edge returns the edge with the given id and its index in the edge list.
func (c *Case) Edge(id string) (*Edge, int, bool) {
	for i := range c.Edges {
		if c.Edges[i].ID == id {
			return &c.Edges[i], i, true
		}
	}
	return nil, -1, false
}

// HasEdgeBetween reports whether any edge joins a and b, ignoring direction.
func (c *Case) HasEdgeBetween(a, b string) bool {
	for _, e := range c.Edges {
		if e.Connects(a, b) {
			return true
		}
	}
	return false
}

// Category returns the custom category with the given id.
func (c *Case) Category(id string) (*CustomCategory, bool) {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return &c.Categories[i], true
		}
	}
	return nil, false
}

// Clone deep-copies the case so the copy can be read from another
// goroutine while the board keeps changing.
func (c Case) Clone() Case {
	c.Nodes = slices.Clone(c.Nodes)
	for i := range c.Nodes {
		n := &c.Nodes[i]
		n.Tags = slices.Clone(n.Tags)
		n.CustomFields = slices.Clone(n.CustomFields)
		if n.PersonFields != nil {
			pf := *n.PersonFields
			n.PersonFields = &pf
		}
		if n.LocationFields != nil {
			lf := *n.LocationFields
			n.LocationFields = &lf
		}
	}
	c.Edges = slices.Clone(c.Edges)
	for i := range c.Edges {
		e := &c.Edges[i]
		if e.ControlPoint != nil {
			cp := *e.ControlPoint
			e.ControlPoint = &cp
		}
		if e.CustomOrder != nil {
			o := *e.CustomOrder
			e.CustomOrder = &o
		}
	}
	c.Categories = slices.Clone(c.Categories)
	return c
}
