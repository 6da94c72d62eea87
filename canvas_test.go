package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casewall/internal/board"
	"casewall/internal/geom"
	"casewall/internal/gesture"
	"casewall/internal/viewport"
)

func TestCanvasText(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		text     string
		maxWidth int
		want     string
		used     int
	}{
		{"ascii", 6, "abc", 6, "abc   ", 3},
		{"truncated", 6, "abcdef", 4, "abc…  ", 4},
		{"wide", 6, "日本x", 6, "日本x ", 5},
		{"wide at edge", 2, "a日", 3, "a ", 3},
		{"zero width", 3, "abc", 0, "   ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewCanvas(tt.width, 1)
			used := cv.text(0, 0, tt.text, "", tt.maxWidth)
			assert.Equal(t, tt.used, used)
			assert.Equal(t, tt.want, cv.Plain()[0])
		})
	}
}

func TestCanvasOverwriteWideRune(t *testing.T) {
	cv := NewCanvas(4, 1)
	cv.text(0, 0, "日", "", 2)
	cv.set(1, 0, 'x', "")
	assert.Equal(t, " x  ", cv.Plain()[0])

	cv = NewCanvas(4, 1)
	cv.text(1, 0, "日", "", 2)
	cv.set(1, 0, 'y', "")
	assert.Equal(t, " y  ", cv.Plain()[0])
}

func TestCanvasIgnoresOutOfBounds(t *testing.T) {
	cv := NewCanvas(2, 2)
	cv.set(-1, 0, 'x', "")
	cv.set(0, 5, 'x', "")
	assert.Equal(t, []string{"  ", "  "}, cv.Plain())
}

func TestCellMapping(t *testing.T) {
	cs := cellSize{W: 8, H: 16}
	p := cs.toScreen(2, 3)
	assert.Equal(t, geom.Screen(20, 56), p)

	col, row := cs.toCell(p)
	assert.Equal(t, 2, col)
	assert.Equal(t, 3, row)

	col, row = cs.toCell(geom.Screen(-1, -1))
	assert.Equal(t, -1, col)
	assert.Equal(t, -1, row)
}

func testCase(t *testing.T) (*board.Case, *board.Board) {
	t.Helper()
	opts := []board.Option{
		board.WithIDs(board.SequentialIDs()),
		board.WithClock(func() time.Time { return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC) }),
	}
	c := board.NewCase(opts...)
	return &c, board.New(&c, opts...)
}

// placeAt adds a node whose top-left corner is at pos.
func placeAt(t *testing.T, b *board.Board, typ board.NodeType, title string, pos geom.ModelPoint) board.Node {
	t.Helper()
	n := b.AddNode(typ, geom.Model(0, 0))
	require.True(t, b.MoveNode(n.ID, pos))
	require.True(t, b.UpdateNode(n.ID, func(n *board.Node) { n.Title = title }))
	n.Position = pos
	n.Title = title
	return n
}

func TestRenderCard(t *testing.T) {
	c, b := testCase(t)
	n := placeAt(t, b, board.TypePerson, "Ana Souza", geom.Model(0, 0))

	bv := boardView{Case: c, View: viewport.New(), Cell: cellSize{W: 8, H: 16}}
	lines := bv.Render(40, 10).Plain()

	// 288x140 pixels is 36x8 cells
	assert.Equal(t, "+"+strings.Repeat("-", 34)+"+", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "+"+strings.Repeat("-", 34)+"+", strings.TrimRight(lines[7], " "))
	assert.Equal(t, '|', []rune(lines[3])[0])
	assert.Contains(t, lines[2], "Ana Souza")
	assert.Contains(t, lines[6], n.StatusText())
	assert.Equal(t, strings.Repeat(" ", 40), lines[8])

	bv.Sel = gesture.Selection{NodeID: n.ID}
	lines = bv.Render(40, 10).Plain()
	assert.True(t, strings.HasPrefix(lines[0], "####"))

	bv.Sel = gesture.Selection{}
	bv.Pending = n.ID
	lines = bv.Render(40, 10).Plain()
	assert.True(t, strings.HasPrefix(lines[0], "****"))
}

func TestRenderCardMinimumSize(t *testing.T) {
	c, b := testCase(t)
	placeAt(t, b, board.TypeEvent, "Fire", geom.Model(0, 0))

	view := viewport.New()
	view.Zoom = viewport.MinZoom
	bv := boardView{Case: c, View: view, Cell: cellSize{W: 8, H: 16}}
	lines := bv.Render(20, 5).Plain()

	assert.Equal(t, "+----+", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "+----+", strings.TrimRight(lines[minCardRows-1], " "))
}

func TestRenderThreadAndBadge(t *testing.T) {
	c, b := testCase(t)
	// the default bend lifts the midpoint 90px above the anchors
	a := placeAt(t, b, board.TypePerson, "Ana", geom.Model(0, 200))
	z := placeAt(t, b, board.TypeLocation, "Port", geom.Model(600, 200))
	e, ok := b.AddEdge(a.ID, z.ID)
	require.True(t, ok)
	require.True(t, b.UpdateEdge(e.ID, func(e *board.Edge) { e.Label = "seen at" }))

	bv := boardView{Case: c, View: viewport.New(), Cell: cellSize{W: 8, H: 16}}
	out := strings.Join(bv.Render(120, 16).Plain(), "\n")

	assert.Contains(t, out, "(1)")
	assert.Contains(t, out, "seen at")
	assert.Contains(t, out, "·")

	bv.Sel = gesture.Selection{EdgeID: e.ID}
	out = strings.Join(bv.Render(120, 16).Plain(), "\n")
	assert.Contains(t, out, "●")
}

func TestRenderFarAwayThread(t *testing.T) {
	c, b := testCase(t)
	a := placeAt(t, b, board.TypePerson, "Ana", geom.Model(0, 0))
	z := placeAt(t, b, board.TypeLocation, "Far", geom.Model(1e9, 0))
	_, ok := b.AddEdge(a.ID, z.ID)
	require.True(t, ok)

	for _, zoom := range []float64{viewport.MinZoom, 1, viewport.MaxZoom} {
		view := viewport.New()
		view.Zoom = zoom
		bv := boardView{Case: c, View: view, Cell: cellSize{W: 8, H: 16}, Pending: a.ID, Pointer: geom.Model(-1e9, 1e9)}
		lines := bv.Render(100, 30).Plain()
		require.Len(t, lines, 30)
	}

	// the visible stretch leaves the card heading right along its anchor row
	bv := boardView{Case: c, View: viewport.New(), Cell: cellSize{W: 8, H: 16}}
	row := []rune(bv.Render(100, 30).Plain()[4])
	for col := 40; col < 100; col++ {
		assert.Equal(t, '·', row[col], "col %d", col)
	}
}

func TestRenderRubberBand(t *testing.T) {
	c, b := testCase(t)
	a := placeAt(t, b, board.TypePerson, "Ana", geom.Model(0, 0))

	bv := boardView{
		Case:    c,
		View:    viewport.New(),
		Cell:    cellSize{W: 8, H: 16},
		Pending: a.ID,
		Pointer: geom.Model(700, 70),
	}
	row := bv.Render(100, 8).Plain()[4]
	assert.Equal(t, '.', []rune(row)[60])
}

func TestStyledKeepsText(t *testing.T) {
	cv := NewCanvas(5, 1)
	cv.text(0, 0, "ab", "#ff0000", 2)
	cv.text(3, 0, "c", "", 1)
	styled := cv.Styled()[0]
	assert.Contains(t, styled, "ab")
	assert.True(t, strings.HasSuffix(styled, " c "))
}

func TestRenderEmpty(t *testing.T) {
	bv := boardView{Cell: cellSize{W: 8, H: 16}}
	lines := bv.Render(3, 2).Plain()
	assert.Equal(t, []string{"   ", "   "}, lines)
}
