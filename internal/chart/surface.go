package chart

import "time"

// Pixel is a position inside the plot area, origin at its top-left corner.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Pixel) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Intersect returns the overlap of r and o. ok is false when they are disjoint.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 < x0 || y1 < y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Tick is one labelled axis mark at Pos pixels along its axis.
type Tick struct {
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// Surface receives what the renderer decides to draw. Implementations may
// animate between successive calls.
type Surface interface {
	DrawAxes(x, y []Tick)
	DrawLabel(text string)
	DrawLine(points []Pixel, clip Rect)
	// DrawHighlight shows the band, or hides it when r is nil.
	DrawHighlight(r *Rect)
	// DrawFocus shows the focus ring, or hides it when p is nil.
	DrawFocus(p *Pixel)
}

// Scene is the retained state of a chart surface.
type Scene struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Plot       Rect          `json:"plot"`
	XTicks     []Tick        `json:"x_ticks"`
	YTicks     []Tick        `json:"y_ticks"`
	Label      string        `json:"label"`
	Line       []Pixel       `json:"line"`
	Clip       Rect          `json:"clip"`
	Highlight  *Rect         `json:"highlight,omitempty"`
	Focus      *Pixel        `json:"focus,omitempty"`
	Transition time.Duration `json:"transition_ns"`
}

// SceneSurface keeps the last drawn state so it can be served or painted later.
type SceneSurface struct {
	scene Scene
}

// NewSceneSurface sizes the scene from the style.
func NewSceneSurface(style Style) *SceneSurface {
	return &SceneSurface{scene: Scene{
		Width:      style.Width,
		Height:     style.Height,
		Plot:       style.Plot(),
		Transition: style.Transition,
	}}
}

func (s *SceneSurface) DrawAxes(x, y []Tick) {
	s.scene.XTicks, s.scene.YTicks = x, y
}

func (s *SceneSurface) DrawLabel(text string) {
	s.scene.Label = text
}

func (s *SceneSurface) DrawLine(points []Pixel, clip Rect) {
	s.scene.Line, s.scene.Clip = points, clip
}

func (s *SceneSurface) DrawHighlight(r *Rect) {
	s.scene.Highlight = r
}

func (s *SceneSurface) DrawFocus(p *Pixel) {
	s.scene.Focus = p
}

// Scene returns a copy of the current state.
func (s *SceneSurface) Scene() Scene {
	sc := s.scene
	sc.XTicks = append([]Tick(nil), sc.XTicks...)
	sc.YTicks = append([]Tick(nil), sc.YTicks...)
	sc.Line = append([]Pixel(nil), sc.Line...)
	if sc.Highlight != nil {
		h := *sc.Highlight
		sc.Highlight = &h
	}
	if sc.Focus != nil {
		f := *sc.Focus
		sc.Focus = &f
	}
	return sc
}
