// Package snapshot renders a whole case to a static PNG or SVG image in
// model space, independent of the interactive view.
package snapshot

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"casewall/internal/board"
	"casewall/internal/curve"
	"casewall/internal/geom"
)

const (
	padding     = 48.0
	minCanvas   = 320.0
	// maxPixels caps the longer side of the output image.
	maxPixels   = 8192.0
	titleHeight = 56.0
	curveSteps  = 24

	colorBackdrop = "#18181b"
	colorCard     = "#27272a"
	colorText     = "#f4f4f5"
	colorSubtle   = "#a1a1aa"
)

// Options controls a snapshot export.
type Options struct {
	Path string
	// Format is "png" or "svg"; inferred from Path when empty.
	Format string
}

type threadItem struct {
	Path  curve.Path
	Color string
	Width float64
	Label string
	Badge int
}

type cardItem struct {
	X, Y   float64
	Title  string
	Kind   string
	Glyph  string
	Status string
	Date   string
	Color  string
	Fields []string
}

// scene is a case laid out in image coordinates. Scale maps those
// coordinates to output pixels and is below 1 only for boards too large
// to draw at full size.
type scene struct {
	Width, Height float64
	Scale         float64
	Title         string
	Threads       []threadItem
	Cards         []cardItem
}

// Pixels is the output image size.
func (s scene) Pixels() (int, int) {
	return max(1, int(math.Ceil(s.Width*s.Scale))), max(1, int(math.Ceil(s.Height*s.Scale)))
}

func buildScene(c *board.Case) scene {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(p geom.ModelPoint) {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}

	for _, n := range c.Nodes {
		grow(n.Position)
		grow(n.Position.Add(geom.Model(board.NodeWidth, board.NodeHeight)))
	}
	paths := make([]curve.Path, len(c.Edges))
	ok := make([]bool, len(c.Edges))
	for i, e := range c.Edges {
		paths[i], ok[i] = curve.For(c, e)
		if !ok[i] {
			continue
		}
		for _, p := range paths[i].Sample(curveSteps) {
			grow(p)
		}
		grow(paths[i].LabelPos())
	}
	if math.IsInf(minX, 1) {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}

	origin := geom.Model(minX-padding, minY-padding-titleHeight)
	s := scene{
		Width:  math.Max(minCanvas, maxX-minX+2*padding),
		Height: math.Max(minCanvas, maxY-minY+2*padding+titleHeight),
		Scale:  1,
		Title:  c.Name,
	}
	if longest := math.Max(s.Width, s.Height); longest > maxPixels {
		s.Scale = maxPixels / longest
	}

	for i, e := range c.Edges {
		if !ok[i] {
			continue
		}
		p := paths[i]
		color := e.Color
		if color == "" {
			color = board.DefaultThreadColor()
		}
		s.Threads = append(s.Threads, threadItem{
			Path: curve.Path{
				P1:   p.P1.Sub(origin),
				Ctrl: p.Ctrl.Sub(origin),
				P2:   p.P2.Sub(origin),
				Mid:  p.Mid.Sub(origin),
			},
			Color: color,
			Width: curve.StrokeWidth(e, false),
			Label: e.Label,
			Badge: curve.OrderBadge(e, i),
		})
	}

	for _, n := range c.Nodes {
		app := c.Appearance(n.Type)
		pos := n.Position.Sub(origin)
		s.Cards = append(s.Cards, cardItem{
			X:      pos.X,
			Y:      pos.Y,
			Title:  n.Title,
			Kind:   strings.ToUpper(app.Name),
			Glyph:  board.Glyph(app.Icon),
			Status: n.StatusText(),
			Date:   n.Date,
			Color:  app.Color,
			Fields: cardFields(n),
		})
	}
	return s
}

// maxCardFields caps the facts printed under a card title.
const maxCardFields = 2

func cardFields(n board.Node) []string {
	out := n.Summary()
	if len(out) > maxCardFields {
		out = out[:maxCardFields]
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// Format resolves the output format from opts.
func Format(opts Options) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.Path)), ".")
	}
	switch format {
	case "png", "svg":
		return format, nil
	case "":
		return "png", nil
	default:
		return "", fmt.Errorf("unsupported format %q (want png or svg)", format)
	}
}

// Save renders c to opts.Path.
func Save(c *board.Case, opts Options) error {
	format, err := Format(opts)
	if err != nil {
		return err
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Render(f, c, format); err != nil {
		return err
	}
	return f.Close()
}

// Render writes c to w in the given format.
func Render(w io.Writer, c *board.Case, format string) error {
	s := buildScene(c)
	switch format {
	case "svg":
		return renderSVG(w, s)
	case "png":
		return renderPNG(w, s)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
