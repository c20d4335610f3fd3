package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

func imperialFrame() Frame {
	return Frame{
		Label: "Imperial",
		Series: domain.Series{
			{Date: day(2010, 1, 31), Value: 100},
			{Date: day(2010, 2, 28), Value: 150},
			{Date: day(2010, 3, 31), Value: 200},
		},
		Domain: domain.ChartDomain{
			X:    [2]time.Time{day(2010, 1, 31), day(2010, 3, 31)},
			Y:    [2]float64{100, 200},
			Tick: domain.TickMonthYear,
		},
	}
}

func newTestRenderer() (*Renderer, *SceneSurface) {
	style := DefaultStyle()
	surface := NewSceneSurface(style)
	return NewRenderer(style, surface), surface
}

func TestRenderer_Render(t *testing.T) {
	r, surface := newTestRenderer()
	r.Render(imperialFrame())

	sc := surface.Scene()
	plot := DefaultStyle().Plot()

	assert.Equal(t, "Imperial", sc.Label)
	require.Len(t, sc.Line, 3)
	assert.Equal(t, Pixel{X: 0, Y: plot.H}, sc.Line[0])
	assert.InDelta(t, plot.W, sc.Line[2].X, 1e-9)
	assert.InDelta(t, 0, sc.Line[2].Y, 1e-9)
	assert.Equal(t, Rect{W: plot.W, H: plot.H}, sc.Clip)
	assert.Nil(t, sc.Highlight)
	assert.Nil(t, sc.Focus)

	require.NotEmpty(t, sc.YTicks)
	assert.Equal(t, "$100", sc.YTicks[0].Label)
	assert.Equal(t, "$200", sc.YTicks[len(sc.YTicks)-1].Label)
	require.NotEmpty(t, sc.XTicks)
	for _, tk := range sc.XTicks {
		assert.Regexp(t, `^[A-Z][a-z]{2} '10$`, tk.Label)
	}
}

func TestRenderer_MapsPointsOutsideTheDomain(t *testing.T) {
	r, surface := newTestRenderer()
	f := imperialFrame()
	f.Domain.X = [2]time.Time{day(2010, 2, 1), day(2010, 3, 1)}
	r.Render(f)

	sc := surface.Scene()
	require.Len(t, sc.Line, 3)
	assert.Less(t, sc.Line[0].X, 0.0)
	assert.Greater(t, sc.Line[2].X, sc.Clip.W)
}

func TestRenderer_Highlight(t *testing.T) {
	r, surface := newTestRenderer()
	f := imperialFrame()
	f.Domain.Highlight = &domain.DateRange{Start: day(2010, 1, 31), End: day(2010, 3, 31)}
	r.Render(f)

	sc := surface.Scene()
	require.NotNil(t, sc.Highlight)
	assert.InDelta(t, 0, sc.Highlight.X, 1e-9)
	assert.InDelta(t, sc.Clip.W, sc.Highlight.W, 1e-9)
	assert.InDelta(t, sc.Clip.H, sc.Highlight.H, 1e-9)

	r.Render(imperialFrame())
	assert.Nil(t, surface.Scene().Highlight, "cleared on the next render without one")
}

func TestRenderer_PointerMove(t *testing.T) {
	r, surface := newTestRenderer()
	r.Render(imperialFrame())
	plot := DefaultStyle().Plot()

	p, ok := r.PointerMove(plot.W * 0.45)
	require.True(t, ok)
	assert.Equal(t, 150.0, p.Value)

	sc := surface.Scene()
	require.NotNil(t, sc.Focus)
	assert.InDelta(t, plot.H/2, sc.Focus.Y, 1e-9)

	focused, ok := r.Focus()
	require.True(t, ok)
	assert.Equal(t, p, focused)

	p, ok = r.PointerMove(-50)
	require.True(t, ok)
	assert.Equal(t, 100.0, p.Value, "clamped to the first sample")

	r.PointerLeave()
	assert.Nil(t, surface.Scene().Focus)
	_, ok = r.Focus()
	assert.False(t, ok)
}

func TestRenderer_RenderHidesFocus(t *testing.T) {
	r, surface := newTestRenderer()
	r.Render(imperialFrame())
	r.PointerMove(10)
	require.NotNil(t, surface.Scene().Focus)

	r.Render(imperialFrame())
	assert.Nil(t, surface.Scene().Focus)
}

func TestRenderer_EmptySeries(t *testing.T) {
	r, surface := newTestRenderer()
	r.Render(Frame{Label: "Nowhere"})

	assert.Empty(t, surface.Scene().Line)
	_, ok := r.PointerMove(10)
	assert.False(t, ok)
	assert.Nil(t, surface.Scene().Focus)
}

func TestFormatUSD(t *testing.T) {
	r, _ := newTestRenderer()
	assert.Equal(t, "$400,001", r.FormatUSD(400000.75))
	assert.Equal(t, "$1,250,000", r.FormatUSD(1250000))
	assert.Equal(t, "$0", r.FormatUSD(0))
}

func TestSceneSurface_SceneIsACopy(t *testing.T) {
	r, surface := newTestRenderer()
	r.Render(imperialFrame())

	sc := surface.Scene()
	sc.Line[0] = Pixel{X: -1, Y: -1}
	assert.NotEqual(t, Pixel{X: -1, Y: -1}, surface.Scene().Line[0])
}

func TestClipSegment(t *testing.T) {
	box := Rect{W: 10, H: 10}

	a, b, ok := clipSegment(Pixel{X: -5, Y: 5}, Pixel{X: 15, Y: 5}, box)
	require.True(t, ok)
	assert.Equal(t, Pixel{X: 0, Y: 5}, a)
	assert.Equal(t, Pixel{X: 10, Y: 5}, b)

	_, _, ok = clipSegment(Pixel{X: -5, Y: -5}, Pixel{X: -1, Y: 20}, box)
	assert.False(t, ok)

	a, b, ok = clipSegment(Pixel{X: 2, Y: 2}, Pixel{X: 3, Y: 3}, box)
	require.True(t, ok)
	assert.Equal(t, Pixel{X: 2, Y: 2}, a)
	assert.Equal(t, Pixel{X: 3, Y: 3}, b)
}

func TestRect_Intersect(t *testing.T) {
	got, ok := Rect{X: 0, Y: 0, W: 10, H: 10}.Intersect(Rect{X: 5, Y: -5, W: 10, H: 10})
	require.True(t, ok)
	assert.Equal(t, Rect{X: 5, Y: 0, W: 5, H: 5}, got)

	_, ok = Rect{W: 1, H: 1}.Intersect(Rect{X: 5, Y: 5, W: 1, H: 1})
	assert.False(t, ok)
}

func TestPaint(t *testing.T) {
	r, surface := newTestRenderer()
	f := imperialFrame()
	f.Domain.Highlight = &domain.DateRange{Start: day(2010, 2, 1), End: day(2010, 3, 1)}
	r.Render(f)
	r.PointerMove(0)

	t.Run("svg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Paint(surface.Scene(), DefaultStyle(), FormatSVG.Provider(), &buf))
		out := buf.String()
		assert.Contains(t, out, "<svg")
		assert.Contains(t, out, "Imperial")
		assert.Contains(t, out, "$150")
	})

	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Paint(surface.Scene(), DefaultStyle(), FormatPNG.Provider(), &buf))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	assert.Equal(t, "image/png", f.ContentType())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestLoadStyle(t *testing.T) {
	s, err := LoadStyle("")
	require.NoError(t, err)
	assert.Equal(t, DefaultStyle(), s)

	path := filepath.Join(t.TempDir(), "style.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 800\nline_color: \"#ff0000\"\ntransition: 100ms\n"), 0o600))

	s, err = LoadStyle(path)
	require.NoError(t, err)
	assert.Equal(t, 800, s.Width)
	assert.Equal(t, "#ff0000", s.LineColor)
	assert.Equal(t, 100*time.Millisecond, s.Transition)
	assert.Equal(t, 426, s.Height, "unset keys keep defaults")
}

func TestLoadStyle_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	require.NoError(t, os.WriteFile(path, []byte("margin_left: 700\nfocus_color: black\n"), 0o600))

	_, err := LoadStyle(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no plot area")
	assert.Contains(t, err.Error(), "focus_color")

	_, err = LoadStyle(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
