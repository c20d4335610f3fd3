// Package mapview owns the map's zoom and pan transform, the single selected
// feature, and the zoom-dependent label and stroke styles.
package mapview

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/geo"
)

// Zoom bounds shared by every interaction.
const (
	MinScale = 1.0
	MaxScale = 25.0
)

// Limits bound ZoomToFeature for one granularity. Fill is the share of the
// viewport the feature should cover.
type Limits struct {
	Fill float64
	Max  float64
}

var (
	CountyLimits = Limits{Fill: 0.9, Max: 8}
	CityLimits   = Limits{Fill: 1.5, Max: 20}
)

// LimitsFor returns the zoom limits for features of layer. Cities are small
// and get tighter framing.
func LimitsFor(layer geo.Layer) Limits {
	if layer == geo.LayerCity {
		return CityLimits
	}
	return CountyLimits
}

// Viewport is the map's pixel size. SidebarOffset is the width hidden by an
// open sidebar on the right.
type Viewport struct {
	Width         float64
	Height        float64
	SidebarOffset float64
}

// FeatureRef identifies one feature across all layers.
type FeatureRef struct {
	Layer geo.Layer `json:"layer"`
	ID    string    `json:"id"`
}

// FitTransform frames bounds (projected pixels) inside the viewport, left of
// the sidebar.
func FitTransform(bounds orb.Bound, vp Viewport, lim Limits) Transform {
	dx := bounds.Max[0] - bounds.Min[0]
	dy := bounds.Max[1] - bounds.Min[1]
	cx := (bounds.Min[0] + bounds.Max[0]) / 2
	cy := (bounds.Min[1] + bounds.Max[1]) / 2

	k := lim.Max
	if fit := math.Max(dx/vp.Width, dy/vp.Height); fit > 0 {
		k = math.Min(lim.Max, lim.Fill/fit)
	}
	k = clampScale(math.Max(MinScale, k))

	return Transform{
		K: k,
		X: (vp.Width-vp.SidebarOffset)/2 - k*cx,
		Y: vp.Height/2 - k*cy,
	}
}

func clampScale(k float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, k))
}

// Controller is one map view. It is safe for concurrent use.
type Controller struct {
	vp       Viewport
	duration time.Duration
	clock    clockwork.Clock

	mu       sync.Mutex
	current  Transform
	anim     *transition
	selected *FeatureRef
}

// NewController starts at the identity transform with nothing selected.
func NewController(vp Viewport, duration time.Duration, clock clockwork.Clock) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Controller{vp: vp, duration: duration, clock: clock, current: Identity()}
}

// Viewport returns the controller's viewport.
func (c *Controller) Viewport() Viewport {
	return c.vp
}

// ZoomToFeature starts animating toward a transform that frames bounds and
// returns the target. A transition already in flight is retargeted from
// wherever it currently is.
func (c *Controller) ZoomToFeature(ref FeatureRef, bounds orb.Bound) Transform {
	target := FitTransform(bounds, c.vp, LimitsFor(ref.Layer))

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	c.anim = &transition{
		from:     c.transformAt(now),
		to:       target,
		start:    now,
		duration: c.duration,
	}
	return target
}

// OnZoom applies a user-driven transform, cancelling any animation, and
// returns the styles for its zoom level.
func (c *Controller) OnZoom(t Transform) Styles {
	t.K = clampScale(t.K)

	c.mu.Lock()
	c.anim = nil
	c.current = t
	c.mu.Unlock()
	return ComputeStyles(t.K)
}

// Transform returns the transform at the current clock time.
func (c *Controller) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transformAt(c.clock.Now())
}

// Target returns where the view is heading, or the current transform when idle.
func (c *Controller) Target() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.anim != nil {
		return c.anim.to
	}
	return c.current
}

// Animating reports whether a zoom transition is still running.
func (c *Controller) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transformAt(c.clock.Now())
	return c.anim != nil
}

// Styles returns the styles for the current zoom level.
func (c *Controller) Styles() Styles {
	return ComputeStyles(c.Transform().K)
}

// SetSelected makes ref the only selected feature.
func (c *Controller) SetSelected(ref FeatureRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &ref
}

// ClearSelected deselects whatever is selected.
func (c *Controller) ClearSelected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// Selected returns the selected feature, if any.
func (c *Controller) Selected() (FeatureRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return FeatureRef{}, false
	}
	return *c.selected, true
}

// IsSelected reports whether ref is the selected feature.
func (c *Controller) IsSelected(ref FeatureRef) bool {
	sel, ok := c.Selected()
	return ok && sel == ref
}

// transformAt settles a finished animation. Callers hold mu.
func (c *Controller) transformAt(now time.Time) Transform {
	if c.anim == nil {
		return c.current
	}
	t, done := c.anim.at(now)
	if done {
		c.current = t
		c.anim = nil
	}
	return t
}
