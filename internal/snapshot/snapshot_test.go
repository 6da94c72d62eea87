package snapshot

import (
	"bytes"
	"encoding/xml"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casewall/internal/board"
	"casewall/internal/geom"
)

func sampleCase() *board.Case {
	c := board.NewCase(board.WithIDs(board.SequentialIDs()))
	b := board.New(&c, board.WithIDs(board.SequentialIDs()))
	b.UpdateInfo(board.CaseInfo{Name: "Harbor <fire>"})
	p := b.AddNode(board.TypePerson, geom.Model(200, 150))
	b.UpdatePersonFields(p.ID, func(pf *board.PersonFields) { pf.Age = "41" })
	l := b.AddNode(board.TypeLocation, geom.Model(800, 500))
	e, _ := b.AddEdge(p.ID, l.ID)
	b.UpdateEdge(e.ID, func(e *board.Edge) { e.Label = "seen at" })
	return &c
}

func TestFormat(t *testing.T) {
	tests := []struct {
		opts    Options
		want    string
		wantErr bool
	}{
		{Options{Path: "out.svg"}, "svg", false},
		{Options{Path: "out.PNG"}, "png", false},
		{Options{Path: "out"}, "png", false},
		{Options{Path: "out.png", Format: "svg"}, "svg", false},
		{Options{Path: "out.pdf"}, "", true},
	}
	for _, tt := range tests {
		got, err := Format(tt.opts)
		if tt.wantErr {
			assert.Error(t, err, "%+v", tt.opts)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%+v", tt.opts)
	}
}

func TestSceneBounds(t *testing.T) {
	s := buildScene(sampleCase())

	require.Len(t, s.Cards, 2)
	require.Len(t, s.Threads, 1)
	for _, c := range s.Cards {
		assert.GreaterOrEqual(t, c.X, 0.0)
		assert.GreaterOrEqual(t, c.Y, titleHeight)
		assert.LessOrEqual(t, c.X+board.NodeWidth, s.Width)
		assert.LessOrEqual(t, c.Y+board.NodeHeight, s.Height)
	}
	assert.Equal(t, 1, s.Threads[0].Badge)
	assert.Equal(t, []string{"age 41"}, s.Cards[0].Fields)
}

func TestEmptyCase(t *testing.T) {
	c := board.NewCase()
	s := buildScene(&c)
	assert.Equal(t, minCanvas, s.Width)
	assert.Empty(t, s.Cards)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &c, "png"))
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleCase(), "svg"))

	out := buf.String()
	var doc any
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc), "svg must be well-formed")
	assert.True(t, strings.Contains(out, "<svg"))
	assert.Contains(t, out, " Q ")
	assert.Contains(t, out, "seen at")
	assert.Contains(t, out, "Harbor &lt;fire&gt;")
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleCase(), "png"))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	w, h := buildScene(sampleCase()).Pixels()
	assert.Equal(t, w, img.Bounds().Dx())
	assert.Equal(t, h, img.Bounds().Dy())
}

func TestFarAwayNodeIsScaledDown(t *testing.T) {
	c := sampleCase()
	board.New(c).AddNode(board.TypeEvent, geom.Model(1e9, 0))

	s := buildScene(c)
	assert.Less(t, s.Scale, 1.0)
	w, h := s.Pixels()
	assert.LessOrEqual(t, w, int(maxPixels))
	assert.LessOrEqual(t, h, int(maxPixels))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, c, "png"))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, w, img.Bounds().Dx())

	buf.Reset()
	require.NoError(t, Render(&buf, c, "svg"))
	assert.Contains(t, buf.String(), `viewBox="0 0 `)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "case.svg")
	require.NoError(t, Save(sampleCase(), Options{Path: path}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, Save(sampleCase(), Options{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
