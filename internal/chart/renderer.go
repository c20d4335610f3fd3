// Package chart turns a region's price series and a chart domain into axes,
// a line, an optional highlight band and a focus ring, and paints them.
package chart

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

// Frame is everything one render needs. The label and series always belong
// to the same region.
type Frame struct {
	Label  string
	Series domain.Series
	Domain domain.ChartDomain
}

// Renderer owns the chart scales and pushes draw calls to a Surface.
type Renderer struct {
	style   Style
	surface Surface
	usd     *message.Printer

	x      TimeScale
	y      LinearScale
	series domain.Series
	focus  int
}

// NewRenderer binds a renderer to a surface.
func NewRenderer(style Style, surface Surface) *Renderer {
	plot := style.Plot()
	return &Renderer{
		style:   style,
		surface: surface,
		usd:     message.NewPrinter(language.AmericanEnglish),
		x:       TimeScale{Range: [2]float64{0, plot.W}},
		y:       LinearScale{Range: [2]float64{plot.H, 0}},
		focus:   -1,
	}
}

// Render redraws the chart for f and hides the focus ring. Every sample is
// mapped; points outside the domain fall outside the clip rectangle.
func (r *Renderer) Render(f Frame) {
	plot := r.style.Plot()
	r.series = f.Series
	r.x.Domain = f.Domain.X
	r.y.Domain = f.Domain.Y

	r.surface.DrawAxes(r.xTicks(f.Domain.Tick), r.yTicks())
	r.surface.DrawLabel(f.Label)

	line := make([]Pixel, len(f.Series))
	for i, p := range f.Series {
		line[i] = Pixel{X: r.x.Map(p.Date), Y: r.y.Map(p.Value)}
	}
	r.surface.DrawLine(line, Rect{W: plot.W, H: plot.H})

	var band *Rect
	if h := f.Domain.Highlight; h != nil {
		x0, x1 := r.x.Map(h.Start), r.x.Map(h.End)
		band = &Rect{X: x0, W: x1 - x0, H: plot.H}
	}
	r.surface.DrawHighlight(band)

	r.PointerLeave()
}

// PointerMove moves the focus ring to the sample nearest in time to the
// pointer at px (plot coordinates) and returns it. ok is false when there is
// nothing to focus.
func (r *Renderer) PointerMove(px float64) (domain.Point, bool) {
	i, ok := r.series.Nearest(r.x.Invert(px))
	if !ok {
		r.PointerLeave()
		return domain.Point{}, false
	}
	r.focus = i
	p := r.series[i]
	r.surface.DrawFocus(&Pixel{X: r.x.Map(p.Date), Y: r.y.Map(p.Value)})
	return p, true
}

// PointerLeave hides the focus ring.
func (r *Renderer) PointerLeave() {
	r.focus = -1
	r.surface.DrawFocus(nil)
}

// Focus returns the focused sample, if any.
func (r *Renderer) Focus() (domain.Point, bool) {
	if r.focus < 0 || r.focus >= len(r.series) {
		return domain.Point{}, false
	}
	return r.series[r.focus], true
}

// Scales returns the scales as of the last render.
func (r *Renderer) Scales() (TimeScale, LinearScale) {
	return r.x, r.y
}

func (r *Renderer) xTicks(format domain.TickFormat) []Tick {
	dates := r.x.Ticks(r.style.XTicks)
	out := make([]Tick, len(dates))
	for i, d := range dates {
		out[i] = Tick{Pos: r.x.Map(d), Label: format.Format(d)}
	}
	return out
}

func (r *Renderer) yTicks() []Tick {
	values := r.y.Ticks(r.style.YTicks)
	out := make([]Tick, len(values))
	for i, v := range values {
		out[i] = Tick{Pos: r.y.Map(v), Label: r.FormatUSD(v)}
	}
	return out
}

// FormatUSD renders v as whole US dollars with thousands separators.
func (r *Renderer) FormatUSD(v float64) string {
	return r.usd.Sprintf("$%d", int64(math.Round(v)))
}
