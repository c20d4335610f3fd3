package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const epsilon = 1e-6

// Projection is a Lambert conformal conic projection scaled and translated
// onto a pixel viewport. Screen y grows downwards.
type Projection struct {
	n, f   float64 // cone constant and radius factor
	rotate float64 // degrees added to longitude before projecting
	k      float64
	tx, ty float64
}

// NewConicConformal builds an unfitted projection with the given standard
// parallels and central meridian rotation, both in degrees.
func NewConicConformal(parallel0, parallel1, rotate float64) *Projection {
	y0, y1 := radians(parallel0), radians(parallel1)
	cy0 := math.Cos(y0)

	var n float64
	if y0 == y1 {
		n = math.Sin(y0)
	} else {
		n = math.Log(cy0/math.Cos(y1)) / math.Log(tany(y1)/tany(y0))
	}
	return &Projection{
		n:      n,
		f:      cy0 * math.Pow(tany(y0), n) / n,
		rotate: rotate,
		k:      1,
	}
}

// California returns the projection the map uses: parallels 34°N and 40.5°N
// with the 120°W meridian vertical.
func California() *Projection {
	return NewConicConformal(34, 40.5, 120)
}

func tany(y float64) float64 {
	return math.Tan((math.Pi/2 + y) / 2)
}

func radians(d float64) float64 { return d * math.Pi / 180 }

// raw projects lon/lat in degrees to unscaled cone coordinates (y up).
func (p *Projection) raw(lon, lat float64) (float64, float64) {
	x := radians(lon + p.rotate)
	y := radians(lat)
	if p.f > 0 {
		y = math.Max(y, -math.Pi/2+epsilon)
	} else {
		y = math.Min(y, math.Pi/2-epsilon)
	}
	r := p.f / math.Pow(tany(y), p.n)
	return r * math.Sin(p.n*x), p.f - r*math.Cos(p.n*x)
}

// Project maps a lon/lat point to viewport pixels.
func (p *Projection) Project(pt orb.Point) orb.Point {
	x, y := p.raw(pt.Lon(), pt.Lat())
	return orb.Point{p.tx + p.k*x, p.ty - p.k*y}
}

// FitSize scales and centres the projection so every geometry fits the
// w×h viewport.
func (p *Projection) FitSize(w, h float64, geoms ...orb.Geometry) *Projection {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, g := range geoms {
		eachPoint(g, func(pt orb.Point) {
			x, y := p.raw(pt.Lon(), pt.Lat())
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		})
	}
	dx, dy := maxX-minX, maxY-minY
	if math.IsInf(minX, 1) || dx <= 0 || dy <= 0 {
		return p
	}
	p.k = math.Min(w/dx, h/dy)
	p.tx = (w - p.k*(minX+maxX)) / 2
	p.ty = (h + p.k*(minY+maxY)) / 2
	return p
}

// Scale returns the fitted scale factor.
func (p *Projection) Scale() float64 { return p.k }

// Bounds returns the projected pixel bounding box of a geometry.
func (p *Projection) Bounds(g orb.Geometry) orb.Bound {
	b := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	eachPoint(g, func(pt orb.Point) {
		b = b.Extend(p.Project(pt))
	})
	return b
}

// Centroid returns the centre of a geometry's projected bounds, where labels
// are anchored.
func (p *Projection) Centroid(g orb.Geometry) orb.Point {
	return p.Bounds(g).Center()
}

func eachPoint(g orb.Geometry, fn func(orb.Point)) {
	switch g := g.(type) {
	case orb.Point:
		fn(g)
	case orb.Ring:
		for _, pt := range g {
			fn(pt)
		}
	case orb.Polygon:
		for _, r := range g {
			eachPoint(r, fn)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			eachPoint(poly, fn)
		}
	}
}
