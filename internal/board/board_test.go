package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casewall/internal/geom"
)

var (
	t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func newTestBoard(t *testing.T) (*Board, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: t0}
	c := NewCase(WithClock(clk.Now), WithIDs(SequentialIDs()))
	return New(&c, WithClock(clk.Now), WithIDs(SequentialIDs())), clk
}

func TestNewCase(t *testing.T) {
	c := NewCase(WithClock(func() time.Time { return t0 }), WithIDs(SequentialIDs()))

	assert.Equal(t, "case-1", c.ID)
	assert.Equal(t, DefaultCaseName, c.Name)
	assert.Equal(t, t0, c.CreatedAt)
	assert.Equal(t, t0, c.UpdatedAt)
	assert.NotNil(t, c.Nodes)
	assert.NotNil(t, c.Edges)
}

func TestAddNode(t *testing.T) {
	t.Run("places the card centred under the viewport", func(t *testing.T) {
		b, _ := newTestBoard(t)
		n := b.AddNode(TypeEvent, geom.Model(500, 300))

		assert.Equal(t, "node-1", n.ID)
		assert.Equal(t, geom.Model(400, 250), n.Position)
		assert.Equal(t, DefaultNodeTitle, n.Title)
		assert.Equal(t, StatusPending, n.Status)
		assert.Equal(t, "2024-03-01", n.Date)
		assert.Nil(t, n.PersonFields)
		assert.Nil(t, n.LocationFields)
		assert.Len(t, b.Case().Nodes, 1)
	})

	t.Run("person gets person fields only", func(t *testing.T) {
		b, _ := newTestBoard(t)
		n := b.AddNode(TypePerson, geom.Model(0, 0))
		assert.NotNil(t, n.PersonFields)
		assert.Nil(t, n.LocationFields)
	})

	t.Run("location gets location fields only", func(t *testing.T) {
		b, _ := newTestBoard(t)
		n := b.AddNode(TypeLocation, geom.Model(0, 0))
		assert.Nil(t, n.PersonFields)
		assert.NotNil(t, n.LocationFields)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		b, _ := newTestBoard(t)
		a := b.AddNode(TypeClue, geom.Model(0, 0))
		b.DeleteNode(a.ID)
		c := b.AddNode(TypeClue, geom.Model(0, 0))
		assert.NotEqual(t, a.ID, c.ID)
	})
}

func TestAddEdge(t *testing.T) {
	b, _ := newTestBoard(t)
	a := b.AddNode(TypePerson, geom.Model(0, 0))
	c := b.AddNode(TypeEvent, geom.Model(0, 0))

	e, ok := b.AddEdge(a.ID, c.ID)
	require.True(t, ok)
	assert.Equal(t, DefaultEdgeLabel, e.Label)
	assert.Equal(t, IntensityMedium, e.Intensity)
	assert.Equal(t, "#a1a1aa", e.Color)
	assert.False(t, e.IsBiDirectional)
	assert.Nil(t, e.ControlPoint)

	_, ok = b.AddEdge(a.ID, c.ID)
	assert.False(t, ok, "same direction duplicate")
	_, ok = b.AddEdge(c.ID, a.ID)
	assert.False(t, ok, "reverse direction duplicate")
	_, ok = b.AddEdge(a.ID, a.ID)
	assert.False(t, ok, "self loop")

	assert.Len(t, b.Case().Edges, 1)
}

func TestNoOpDoesNotStamp(t *testing.T) {
	b, clk := newTestBoard(t)
	a := b.AddNode(TypePerson, geom.Model(0, 0))

	clk.now = t1
	_, ok := b.AddEdge(a.ID, a.ID)
	assert.False(t, ok)
	assert.Equal(t, t0, b.Case().UpdatedAt)

	b.MoveNode(a.ID, geom.Model(1, 1))
	assert.Equal(t, t1, b.Case().UpdatedAt)
}

func TestDeleteNodeCascades(t *testing.T) {
	b, _ := newTestBoard(t)
	a := b.AddNode(TypePerson, geom.Model(0, 0))
	c := b.AddNode(TypeEvent, geom.Model(0, 0))
	d := b.AddNode(TypeClue, geom.Model(0, 0))
	b.AddEdge(a.ID, c.ID)
	b.AddEdge(d.ID, a.ID)
	keep, _ := b.AddEdge(c.ID, d.ID)

	require.True(t, b.DeleteNode(a.ID))

	assert.Len(t, b.Case().Nodes, 2)
	require.Len(t, b.Case().Edges, 1)
	assert.Equal(t, keep.ID, b.Case().Edges[0].ID)
	assert.False(t, b.DeleteNode(a.ID))
}

func TestEdgeInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := NewCase(WithIDs(SequentialIDs()))
		b := New(&c, WithIDs(SequentialIDs()))

		count := rapid.IntRange(2, 8).Draw(t, "nodes")
		ids := make([]string, count)
		for i := range ids {
			ids[i] = b.AddNode(TypeClue, geom.Model(0, 0)).ID
		}

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			src := rapid.SampledFrom(ids).Draw(t, fmt.Sprintf("src%d", i))
			dst := rapid.SampledFrom(ids).Draw(t, fmt.Sprintf("dst%d", i))
			before := len(c.Edges)
			existed := c.HasEdgeBetween(src, dst)
			_, ok := b.AddEdge(src, dst)
			if src == dst || existed {
				assert.False(t, ok)
				assert.Equal(t, before, len(c.Edges))
			} else {
				assert.True(t, ok)
			}
		}

		victim := rapid.SampledFrom(ids).Draw(t, "victim")
		b.DeleteNode(victim)
		for _, e := range c.Edges {
			assert.False(t, e.Touches(victim))
			_, ok := c.Node(e.Source)
			assert.True(t, ok)
			_, ok = c.Node(e.Target)
			assert.True(t, ok)
		}

		pairs := map[[2]string]bool{}
		for _, e := range c.Edges {
			assert.NotEqual(t, e.Source, e.Target)
			key := [2]string{e.Source, e.Target}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			assert.False(t, pairs[key], "duplicate undirected edge")
			pairs[key] = true
		}
	})
}

func TestEdgeUpdates(t *testing.T) {
	b, _ := newTestBoard(t)
	a := b.AddNode(TypePerson, geom.Model(0, 0))
	c := b.AddNode(TypeEvent, geom.Model(0, 0))
	e, _ := b.AddEdge(a.ID, c.ID)

	require.True(t, b.UpdateEdge(e.ID, func(e *Edge) {
		e.Label = "met at"
		e.Source = "hijack"
	}))
	require.True(t, b.SetControlPoint(e.ID, geom.Model(10, 20)))
	require.True(t, b.SetCustomOrder(e.ID, 7))

	got, _, _ := b.Case().Edge(e.ID)
	assert.Equal(t, "met at", got.Label)
	assert.Equal(t, a.ID, got.Source, "endpoints are fixed")
	require.NotNil(t, got.ControlPoint)
	assert.Equal(t, geom.Model(10, 20), *got.ControlPoint)
	require.NotNil(t, got.CustomOrder)
	assert.Equal(t, 7, *got.CustomOrder)

	require.True(t, b.ResetCurvature(e.ID))
	got, _, _ = b.Case().Edge(e.ID)
	assert.Nil(t, got.ControlPoint)
	assert.Equal(t, "met at", got.Label)
	assert.NotNil(t, got.CustomOrder)

	b.SetCustomOrder(e.ID, 0)
	got, _, _ = b.Case().Edge(e.ID)
	assert.Nil(t, got.CustomOrder)

	require.True(t, b.DeleteEdge(e.ID))
	assert.Empty(t, b.Case().Edges)
	assert.False(t, b.DeleteEdge(e.ID))
}

func TestCustomFields(t *testing.T) {
	b, _ := newTestBoard(t)
	n := b.AddNode(TypeEvidence, geom.Model(0, 0))

	b.AddCustomField(n.ID)
	b.AddCustomField(n.ID)
	assert.True(t, b.UpdateCustomField(n.ID, 1, CustomField{Label: "plate", Value: "ABC-1234"}))
	assert.False(t, b.UpdateCustomField(n.ID, 5, CustomField{}))

	got, _ := b.Case().Node(n.ID)
	require.Len(t, got.CustomFields, 2)
	assert.Equal(t, "plate", got.CustomFields[1].Label)

	assert.True(t, b.RemoveCustomField(n.ID, 0))
	got, _ = b.Case().Node(n.ID)
	require.Len(t, got.CustomFields, 1)
	assert.Equal(t, "plate", got.CustomFields[0].Label)
}

func TestCategories(t *testing.T) {
	b, _ := newTestBoard(t)

	_, ok := b.AddCategory("", "Car", "#fff")
	assert.False(t, ok)

	cat, ok := b.AddCategory("Vehicle", "Car", "#ef4444")
	require.True(t, ok)

	n := b.AddNode(NodeType(cat.ID), geom.Model(0, 0))
	app := b.Case().Appearance(n.Type)
	assert.Equal(t, "Vehicle", app.Name)
	assert.Equal(t, "#ef4444", app.Color)
	assert.Equal(t, "⊡", Glyph(app.Icon))

	assert.Equal(t, "#3b82f6", b.Case().Appearance(TypePerson).Color)

	require.True(t, b.DeleteCategory(cat.ID))
	assert.Equal(t, neutralAppearance, b.Case().Appearance(n.Type))
}

func TestUpdateInfo(t *testing.T) {
	b, clk := newTestBoard(t)
	clk.now = t1
	b.UpdateInfo(CaseInfo{Name: "Harbor fire"})

	assert.Equal(t, "Harbor fire", b.Case().Name)
	assert.Equal(t, DefaultCaseDesc, b.Case().Description)
	assert.Equal(t, t1, b.Case().UpdatedAt)
}

func TestNodeSummary(t *testing.T) {
	n := Node{
		PersonFields:   &PersonFields{Age: "34", TaxID: "123.456.789-00"},
		LocationFields: &LocationFields{Street: "Rua A", Number: "10", City: "Santos"},
		CustomFields: []CustomField{
			{Label: "placa", Value: "ABC1D23"},
			{},
		},
	}
	assert.Equal(t, []string{
		"age 34",
		"cpf 123.456.789-00",
		"Rua A 10 Santos",
		"placa: ABC1D23",
	}, n.Summary())

	assert.Empty(t, Node{PersonFields: &PersonFields{}}.Summary())
}

func TestCloneIsIndependent(t *testing.T) {
	b, _ := newTestBoard(t)
	a := b.AddNode(TypePerson, geom.Model(0, 0))
	z := b.AddNode(TypeEvent, geom.Model(500, 0))
	e, ok := b.AddEdge(a.ID, z.ID)
	require.True(t, ok)
	require.True(t, b.SetControlPoint(e.ID, geom.Model(250, 80)))

	c := b.Case().Clone()
	require.True(t, b.UpdateNode(a.ID, func(n *Node) {
		n.Title = "changed"
		n.PersonFields.Age = "50"
		n.Tags = append(n.Tags, "x")
	}))
	require.True(t, b.SetControlPoint(e.ID, geom.Model(1, 1)))

	n, _ := c.Node(a.ID)
	assert.Equal(t, DefaultNodeTitle, n.Title)
	assert.Empty(t, n.PersonFields.Age)
	assert.Empty(t, n.Tags)
	cloned, _, _ := c.Edge(e.ID)
	assert.Equal(t, geom.Model(250, 80), *cloned.ControlPoint)
}
