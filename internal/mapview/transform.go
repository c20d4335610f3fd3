package mapview

import (
	"time"

	"github.com/paulmach/orb"
)

// Transform maps a projected point p to the screen as K*p + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the unzoomed view.
func Identity() Transform {
	return Transform{K: 1}
}

// Apply maps a projected point to the screen.
func (t Transform) Apply(p orb.Point) orb.Point {
	return orb.Point{t.K*p[0] + t.X, t.K*p[1] + t.Y}
}

// Invert maps a screen point back to projected space.
func (t Transform) Invert(p orb.Point) orb.Point {
	return orb.Point{(p[0] - t.X) / t.K, (p[1] - t.Y) / t.K}
}

func lerp(a, b Transform, f float64) Transform {
	return Transform{
		K: a.K + (b.K-a.K)*f,
		X: a.X + (b.X-a.X)*f,
		Y: a.Y + (b.Y-a.Y)*f,
	}
}

// transition animates between two transforms with a cubic in-out ease.
type transition struct {
	from, to Transform
	start    time.Time
	duration time.Duration
}

func (tr transition) at(now time.Time) (Transform, bool) {
	if tr.duration <= 0 {
		return tr.to, true
	}
	f := float64(now.Sub(tr.start)) / float64(tr.duration)
	if f >= 1 {
		return tr.to, true
	}
	return lerp(tr.from, tr.to, easeCubicInOut(max(f, 0))), false
}

func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
