package snapshot

import (
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

const fontStyle = "font-family:monospace"

func renderSVG(w io.Writer, s scene) error {
	canvas := svg.New(w)
	w, h := s.Pixels()
	canvas.Startview(w, h, 0, 0, int(math.Ceil(s.Width)), int(math.Ceil(s.Height)))
	canvas.Rect(0, 0, int(s.Width), int(s.Height), "fill:"+colorBackdrop)
	canvas.Text(int(padding), int(padding), s.Title,
		fmt.Sprintf("fill:%s;font-size:20px;font-weight:bold;%s", colorText, fontStyle))

	for _, t := range s.Threads {
		canvas.Path(t.Path.SVGData(),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", t.Color, t.Width))
	}

	for _, c := range s.Cards {
		x, y := int(c.X), int(c.Y)
		canvas.Roundrect(x, y, 288, 140, 12, 12,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", colorCard, c.Color))
		canvas.Rect(x, y+12, 4, 116, "fill:"+c.Color)
		canvas.Text(x+16, y+22, c.Kind, fmt.Sprintf("fill:%s;font-size:11px;%s", c.Color, fontStyle))
		canvas.Text(x+272, y+22, c.Date,
			fmt.Sprintf("fill:%s;font-size:11px;text-anchor:end;%s", colorSubtle, fontStyle))
		canvas.Text(x+16, y+50, truncate(c.Title, 30),
			fmt.Sprintf("fill:%s;font-size:14px;font-weight:bold;%s", colorText, fontStyle))
		for i, f := range c.Fields {
			canvas.Text(x+16, y+74+i*16, truncate(f, 40),
				fmt.Sprintf("fill:%s;font-size:11px;%s", colorSubtle, fontStyle))
		}
		canvas.Text(x+16, y+126, c.Status, fmt.Sprintf("fill:%s;font-size:11px;%s", colorSubtle, fontStyle))
	}

	for _, t := range s.Threads {
		m := t.Path.Mid
		canvas.Circle(int(m.X), int(m.Y), 12,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", colorCard, t.Color))
		canvas.Text(int(m.X), int(m.Y)+4, strconv.Itoa(t.Badge),
			fmt.Sprintf("fill:%s;font-size:10px;font-weight:bold;text-anchor:middle;%s", colorText, fontStyle))
		if t.Label != "" {
			l := t.Path.LabelPos()
			canvas.Text(int(l.X), int(l.Y), truncate(t.Label, 32),
				fmt.Sprintf("fill:%s;font-size:9px;text-anchor:middle;%s", colorSubtle, fontStyle))
		}
	}

	canvas.End()
	return nil
}
