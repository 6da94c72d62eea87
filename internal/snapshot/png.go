package snapshot

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

func face(size float64) (font.Face, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func renderPNG(w io.Writer, s scene) error {
	dc := gg.NewContext(s.Pixels())
	dc.SetHexColor(colorBackdrop)
	dc.Clear()
	dc.Scale(s.Scale, s.Scale)

	small, err := face(11)
	if err != nil {
		return err
	}
	body, err := face(14)
	if err != nil {
		return err
	}
	heading, err := face(20)
	if err != nil {
		return err
	}

	dc.SetFontFace(heading)
	dc.SetHexColor(colorText)
	dc.DrawString(s.Title, padding, padding)

	// threads go first so cards cover their ends
	for _, t := range s.Threads {
		dc.SetHexColor(t.Color)
		dc.SetLineWidth(t.Width)
		dc.MoveTo(t.Path.P1.X, t.Path.P1.Y)
		dc.QuadraticTo(t.Path.Ctrl.X, t.Path.Ctrl.Y, t.Path.P2.X, t.Path.P2.Y)
		dc.Stroke()
	}

	for _, c := range s.Cards {
		drawCardPNG(dc, c, small, body)
	}

	dc.SetFontFace(small)
	for _, t := range s.Threads {
		drawBadgePNG(dc, t)
	}
	return dc.EncodePNG(w)
}

func drawCardPNG(dc *gg.Context, c cardItem, small, body font.Face) {
	const w, h = 288.0, 140.0

	dc.SetHexColor(colorCard)
	dc.DrawRoundedRectangle(c.X, c.Y, w, h, 12)
	dc.Fill()
	dc.SetHexColor(c.Color)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(c.X, c.Y, w, h, 12)
	dc.Stroke()
	dc.DrawRectangle(c.X, c.Y+12, 4, h-24)
	dc.Fill()

	dc.SetFontFace(small)
	dc.SetHexColor(c.Color)
	dc.DrawString(c.Kind, c.X+16, c.Y+22)
	dc.SetHexColor(colorSubtle)
	dc.DrawStringAnchored(c.Date, c.X+w-16, c.Y+22, 1, 0)

	dc.SetFontFace(body)
	dc.SetHexColor(colorText)
	dc.DrawString(truncate(c.Title, 30), c.X+16, c.Y+50)

	dc.SetFontFace(small)
	dc.SetHexColor(colorSubtle)
	for i, f := range c.Fields {
		dc.DrawString(truncate(f, 40), c.X+16, c.Y+74+float64(i)*16)
	}
	dc.DrawString(c.Status, c.X+16, c.Y+h-14)
}

func drawBadgePNG(dc *gg.Context, t threadItem) {
	m := t.Path.Mid
	dc.SetHexColor(colorCard)
	dc.DrawCircle(m.X, m.Y, 12)
	dc.FillPreserve()
	dc.SetHexColor(t.Color)
	dc.SetLineWidth(2)
	dc.Stroke()
	dc.SetHexColor(colorText)
	dc.DrawStringAnchored(strconv.Itoa(t.Badge), m.X, m.Y, 0.5, 0.35)

	if t.Label != "" {
		l := t.Path.LabelPos()
		dc.SetHexColor(colorSubtle)
		dc.DrawStringAnchored(truncate(t.Label, 32), l.X, l.Y, 0.5, 0)
	}
}
