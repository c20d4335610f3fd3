package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png"; empty means svg.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatSVG, "":
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown chart format %q (want svg or png)", s)
	}
}

// Provider returns the go-chart renderer for the format.
func (f Format) Provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// ContentType is the MIME type of the painted image.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Paint rasterises a scene with go-chart and writes the image to w. The line
// is clipped to the scene's clip rectangle, and the part inside the highlight
// band is drawn again in the highlight colour.
func Paint(scene Scene, style Style, provider chart.RendererProvider, w io.Writer) error {
	r, err := provider(scene.Width, scene.Height)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)

	p := painter{r: r, ox: scene.Plot.X, oy: scene.Plot.Y}

	r.SetFillColor(hexColor(style.Background, 1))
	p.rect(Rect{X: -scene.Plot.X, Y: -scene.Plot.Y, W: float64(scene.Width), H: float64(scene.Height)})
	r.Fill()

	if scene.Highlight != nil {
		r.SetFillColor(hexColor(style.HighlightColor, style.HighlightOpacity))
		p.rect(*scene.Highlight)
		r.Fill()
	}

	p.axes(scene, style)

	r.SetStrokeColor(hexColor(style.LineColor, 1))
	r.SetStrokeWidth(style.LineWidth)
	p.polyline(scene.Line, scene.Clip)

	if scene.Highlight != nil {
		if band, ok := scene.Highlight.Intersect(scene.Clip); ok {
			r.SetStrokeColor(hexColor(style.HighlightLineColor, 1))
			r.SetStrokeWidth(style.LineWidth + 1)
			p.polyline(scene.Line, band)
		}
	}

	if scene.Focus != nil {
		r.SetFillColor(drawing.ColorTransparent)
		r.SetStrokeColor(hexColor(style.FocusColor, 1))
		r.SetStrokeWidth(style.FocusWidth)
		x, y := p.at(*scene.Focus)
		r.Circle(style.FocusRadius, x, y)
		r.Stroke()
	}

	if scene.Label != "" {
		r.SetFontColor(hexColor(style.AxisColor, 1))
		r.SetFontSize(style.LabelFontSize)
		box := r.MeasureText(scene.Label)
		x, y := p.at(Pixel{X: scene.Plot.W / 2, Y: scene.Plot.H + float64(style.LabelOffset)})
		r.Text(scene.Label, x-box.Width()/2, y)
	}

	if err := r.Save(w); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

type painter struct {
	r      chart.Renderer
	ox, oy float64
}

func (p painter) at(px Pixel) (int, int) {
	return int(math.Round(p.ox + px.X)), int(math.Round(p.oy + px.Y))
}

func (p painter) rect(r Rect) {
	x0, y0 := p.at(Pixel{X: r.X, Y: r.Y})
	x1, y1 := p.at(Pixel{X: r.X + r.W, Y: r.Y + r.H})
	p.r.MoveTo(x0, y0)
	p.r.LineTo(x1, y0)
	p.r.LineTo(x1, y1)
	p.r.LineTo(x0, y1)
	p.r.Close()
}

func (p painter) segment(a, b Pixel) {
	x0, y0 := p.at(a)
	x1, y1 := p.at(b)
	p.r.MoveTo(x0, y0)
	p.r.LineTo(x1, y1)
	p.r.Stroke()
}

// polyline strokes the visible runs of points inside clip.
func (p painter) polyline(points []Pixel, clip Rect) {
	var run []Pixel
	flush := func() {
		if len(run) >= 2 {
			x, y := p.at(run[0])
			p.r.MoveTo(x, y)
			for _, pt := range run[1:] {
				x, y = p.at(pt)
				p.r.LineTo(x, y)
			}
			p.r.Stroke()
		}
		run = run[:0]
	}
	for i := 1; i < len(points); i++ {
		a, b, ok := clipSegment(points[i-1], points[i], clip)
		if !ok {
			flush()
			continue
		}
		if len(run) == 0 || run[len(run)-1] != a {
			flush()
			run = append(run, a)
		}
		run = append(run, b)
	}
	flush()
}

func (p painter) axes(scene Scene, style Style) {
	r := p.r
	r.SetStrokeColor(hexColor(style.AxisColor, 1))
	r.SetStrokeWidth(1)
	p.segment(Pixel{X: 0, Y: scene.Plot.H}, Pixel{X: scene.Plot.W, Y: scene.Plot.H})
	p.segment(Pixel{X: 0, Y: 0}, Pixel{X: 0, Y: scene.Plot.H})

	r.SetFontColor(hexColor(style.AxisColor, 1))
	r.SetFontSize(style.TickFontSize)
	for _, t := range scene.XTicks {
		p.segment(Pixel{X: t.Pos, Y: scene.Plot.H}, Pixel{X: t.Pos, Y: scene.Plot.H + 6})
		box := r.MeasureText(t.Label)
		x, y := p.at(Pixel{X: t.Pos, Y: scene.Plot.H + 8})
		r.Text(t.Label, x-box.Width()/2, y+box.Height())
	}
	for _, t := range scene.YTicks {
		p.segment(Pixel{X: -6, Y: t.Pos}, Pixel{X: 0, Y: t.Pos})
		box := r.MeasureText(t.Label)
		x, y := p.at(Pixel{X: -9, Y: t.Pos})
		r.Text(t.Label, x-box.Width(), y+box.Height()/2)
	}
}

// clipSegment clips a-b to c using Liang-Barsky.
func clipSegment(a, b Pixel, c Rect) (Pixel, Pixel, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X - c.X},
		{dx, c.X + c.W - a.X},
		{-dy, a.Y - c.Y},
		{dy, c.Y + c.H - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return Pixel{}, Pixel{}, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return Pixel{}, Pixel{}, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return Pixel{}, Pixel{}, false
			}
			t1 = min(t1, t)
		}
	}
	return Pixel{X: a.X + t0*dx, Y: a.Y + t0*dy}, Pixel{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func hexColor(hex string, opacity float64) drawing.Color {
	c := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	c.A = uint8(math.Round(255 * min(max(opacity, 0), 1)))
	return c
}
