package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"casewall/internal/board"
	"casewall/internal/curve"
	"casewall/internal/geom"
	"casewall/internal/gesture"
	"casewall/internal/viewport"
)

// wideTail fills the cell covered by the right half of a double-width rune.
const wideTail = rune(-1)

// Canvas is a grid of terminal cells, each with an optional foreground
// colour.
type Canvas struct {
	cells    [][]rune
	colorMap [][]string
}

func NewCanvas(width, height int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &Canvas{
		cells:    make([][]rune, height),
		colorMap: make([][]string, height),
	}
	for i := range c.cells {
		c.cells[i] = make([]rune, width)
		c.colorMap[i] = make([]string, width)
		for j := range c.cells[i] {
			c.cells[i][j] = ' '
		}
	}
	return c
}

func (c *Canvas) width() int  { return len(c.cells[0]) }
func (c *Canvas) height() int { return len(c.cells) }

func (c *Canvas) isValidPos(x, y int) bool {
	return y >= 0 && y < c.height() && x >= 0 && x < c.width()
}

func (c *Canvas) set(x, y int, r rune, color string) {
	if !c.isValidPos(x, y) {
		return
	}
	// overwriting either half of a wide rune blanks the other half
	if c.cells[y][x] == wideTail && x > 0 {
		c.cells[y][x-1] = ' '
	}
	if x+1 < c.width() && c.cells[y][x+1] == wideTail {
		c.cells[y][x+1] = ' '
	}
	c.cells[y][x] = r
	c.colorMap[y][x] = color
}

// text writes s starting at (x, y), never past x+maxWidth. It returns the
// number of cells used.
func (c *Canvas) text(x, y int, s, color string, maxWidth int) int {
	if maxWidth <= 0 {
		return 0
	}
	s = runewidth.Truncate(s, maxWidth, "…")
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if w == 2 {
			tail := x + used + 1
			if !c.isValidPos(tail, y) {
				// half a glyph at the right edge
				c.set(x+used, y, ' ', color)
				used += w
				continue
			}
			c.set(x+used, y, r, color)
			c.set(tail, y, ' ', color)
			c.cells[y][tail] = wideTail
		} else {
			c.set(x+used, y, r, color)
		}
		used += w
	}
	return used
}

// centered writes s centred on column cx.
func (c *Canvas) centered(cx, y int, s, color string) {
	w := runewidth.StringWidth(s)
	c.text(cx-w/2, y, s, color, w)
}

// Plain returns the rows without colour, as written to a visual TXT
// export.
func (c *Canvas) Plain() []string {
	out := make([]string, c.height())
	for i, row := range c.cells {
		var b strings.Builder
		for _, r := range row {
			if r != wideTail {
				b.WriteRune(r)
			}
		}
		out[i] = b.String()
	}
	return out
}

// Styled returns the rows with runs of equal colour painted by lipgloss.
func (c *Canvas) Styled() []string {
	out := make([]string, c.height())
	for i, row := range c.cells {
		var line, run strings.Builder
		current := ""
		for j, r := range row {
			if r == wideTail {
				continue
			}
			if col := c.colorMap[i][j]; col != current {
				line.WriteString(paint(current, run.String()))
				run.Reset()
				current = col
			}
			run.WriteRune(r)
		}
		line.WriteString(paint(current, run.String()))
		out[i] = line.String()
	}
	return out
}

// cellSize is how many screen pixels one terminal cell spans.
type cellSize struct {
	W, H float64
}

// toCell maps a screen pixel to the cell containing it.
func (cs cellSize) toCell(p geom.ScreenPoint) (int, int) {
	return int(math.Floor(p.X / cs.W)), int(math.Floor(p.Y / cs.H))
}

// toScreen maps a cell to the screen pixel at its centre.
func (cs cellSize) toScreen(col, row int) geom.ScreenPoint {
	return geom.Screen(float64(col)*cs.W+cs.W/2, float64(row)*cs.H+cs.H/2)
}

// boardView is everything needed to draw one frame of a case.
type boardView struct {
	Case    *board.Case
	View    viewport.Transform
	Sel     gesture.Selection
	Pending string
	Pointer geom.ModelPoint
	Cell    cellSize
}

// Render draws threads, then cards, then badges and labels so that the
// sequence numbers stay readable over overlapping cards.
func (bv boardView) Render(width, height int) *Canvas {
	cv := NewCanvas(width, height)
	if bv.Case == nil {
		return cv
	}

	for _, e := range bv.Case.Edges {
		if p, ok := curve.For(bv.Case, e); ok {
			bv.drawThread(cv, p, e)
		}
	}
	if bv.Pending != "" {
		if n, ok := bv.Case.Node(bv.Pending); ok {
			bv.drawBand(cv, curve.Anchor(*n), bv.Pointer)
		}
	}
	for _, n := range bv.Case.Nodes {
		bv.drawCard(cv, n)
	}
	for i, e := range bv.Case.Edges {
		if p, ok := curve.For(bv.Case, e); ok {
			bv.drawBadge(cv, p, e, i)
		}
	}
	return cv
}

func (bv boardView) cellOf(p geom.ModelPoint) (int, int) {
	return bv.Cell.toCell(bv.View.ModelToScreen(p))
}

func threadRune(width float64) rune {
	switch {
	case width >= 5:
		return '●'
	case width >= 4:
		return '•'
	default:
		return '·'
	}
}

// maxSplit bounds the subdivision depth of one curve.
const maxSplit = 48

func halfway(a, b geom.ScreenPoint) geom.ScreenPoint {
	return geom.Screen((a.X+b.X)/2, (a.Y+b.Y)/2)
}

// plotQuad marks the cells along the quadratic curve p0-c-p2, given in
// screen pixels. The curve is split in halves until a piece fits in one
// cell; pieces whose hull misses the canvas are dropped.
func (bv boardView) plotQuad(cv *Canvas, p0, c, p2 geom.ScreenPoint, r rune, color string, depth int) {
	if bv.Cell.W <= 0 || bv.Cell.H <= 0 {
		return
	}
	minX, maxX := math.Min(p0.X, math.Min(c.X, p2.X)), math.Max(p0.X, math.Max(c.X, p2.X))
	minY, maxY := math.Min(p0.Y, math.Min(c.Y, p2.Y)), math.Max(p0.Y, math.Max(c.Y, p2.Y))
	if maxX < 0 || maxY < 0 ||
		minX >= float64(cv.width())*bv.Cell.W || minY >= float64(cv.height())*bv.Cell.H {
		return
	}
	if depth >= maxSplit || (maxX-minX <= bv.Cell.W && maxY-minY <= bv.Cell.H) {
		for _, p := range []geom.ScreenPoint{p0, p2} {
			x, y := bv.Cell.toCell(p)
			cv.set(x, y, r, color)
		}
		return
	}
	l, rr := halfway(p0, c), halfway(c, p2)
	m := halfway(l, rr)
	bv.plotQuad(cv, p0, l, m, r, color, depth+1)
	bv.plotQuad(cv, m, rr, p2, r, color, depth+1)
}

func (bv boardView) drawThread(cv *Canvas, p curve.Path, e board.Edge) {
	selected := bv.Sel.EdgeID == e.ID
	r := threadRune(curve.StrokeWidth(e, selected))
	toScreen := bv.View.ModelToScreen
	bv.plotQuad(cv, toScreen(p.P1), toScreen(p.Ctrl), toScreen(p.P2), r, e.Color, 0)
}

func (bv boardView) drawBand(cv *Canvas, from, to geom.ModelPoint) {
	a, b := bv.View.ModelToScreen(from), bv.View.ModelToScreen(to)
	bv.plotQuad(cv, a, halfway(a, b), b, '.', bandColor, 0)
}

func (bv boardView) drawBadge(cv *Canvas, p curve.Path, e board.Edge, index int) {
	x, y := bv.cellOf(p.Mid)
	cv.centered(x, y, fmt.Sprintf("(%d)", curve.OrderBadge(e, index)), e.Color)
	if e.Label != "" {
		lx, ly := bv.cellOf(p.LabelPos())
		if ly == y {
			ly--
		}
		cv.centered(lx, ly, runewidth.Truncate(e.Label, labelMax, "…"), subtleColor)
	}
}

const (
	subtleColor = "#a1a1aa"
	textColor   = "#f4f4f5"
)

// cardRect is the cell rectangle a node covers, grown to a readable
// minimum when zoomed far out.
func (bv boardView) cardRect(n board.Node) (x0, y0, x1, y1 int) {
	x0, y0 = bv.cellOf(n.Position)
	x1, y1 = bv.cellOf(n.Position.Add(geom.Model(board.NodeWidth, board.NodeHeight)))
	x1, y1 = x1-1, y1-1
	x1 = max(x1, x0+minCardCols-1)
	y1 = max(y1, y0+minCardRows-1)
	return
}

func (bv boardView) drawCard(cv *Canvas, n board.Node) {
	app := bv.Case.Appearance(n.Type)
	x0, y0, x1, y1 := bv.cardRect(n)

	corner, horizontal, vertical := '+', '-', '|'
	switch n.ID {
	case bv.Sel.NodeID:
		corner, horizontal, vertical = '#', '#', '#'
	case bv.Pending:
		corner, horizontal, vertical = '*', '*', '*'
	}

	if x1 < 0 || y1 < 0 || x0 >= cv.width() || y0 >= cv.height() {
		return
	}
	for y := max(y0, 0); y <= min(y1, cv.height()-1); y++ {
		for x := max(x0, 0); x <= min(x1, cv.width()-1); x++ {
			switch {
			case (y == y0 || y == y1) && (x == x0 || x == x1):
				cv.set(x, y, corner, app.Color)
			case y == y0 || y == y1:
				cv.set(x, y, horizontal, app.Color)
			case x == x0 || x == x1:
				cv.set(x, y, vertical, app.Color)
			default:
				cv.set(x, y, ' ', "")
			}
		}
	}

	inner := x1 - x0 - 1
	lines := cardLines(n, app)
	for i, l := range lines {
		y := y0 + 1 + i
		if y >= y1 {
			break
		}
		color := subtleColor
		switch i {
		case 0:
			color = app.Color
		case 1:
			color = textColor
		}
		cv.text(x0+1, y, l, color, inner)
	}
	// date in the top-right corner of the header row when it fits
	if n.Date != "" && y1-y0 > 1 {
		used := runewidth.StringWidth(lines[0])
		if dw := runewidth.StringWidth(n.Date); used+1+dw <= inner {
			cv.text(x1-dw, y0+1, n.Date, subtleColor, dw)
		}
	}
	// status on the last inner row
	if y1-y0-1 > len(lines) {
		cv.text(x0+1, y1-1, n.StatusText(), subtleColor, inner)
	}
}

// cardLines is the text printed inside a card from the top: header,
// title, then facts.
func cardLines(n board.Node, app board.Appearance) []string {
	lines := []string{
		board.Glyph(app.Icon) + " " + strings.ToUpper(app.Name),
		n.Title,
	}
	return append(lines, n.Summary()...)
}
