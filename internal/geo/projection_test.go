package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjection_FitSize(t *testing.T) {
	counties := loadLayer(t, "counties.json", LayerCounty)
	p := California().FitSize(960, 600, counties.Geometries()...)
	require.Greater(t, p.Scale(), 1.0)

	var all orb.Bound
	for i, f := range counties.Features {
		b := p.Bounds(f.Geometry)
		if i == 0 {
			all = b
		} else {
			all = all.Union(b)
		}
	}

	const slack = 1e-6
	assert.GreaterOrEqual(t, all.Min.X(), -slack)
	assert.GreaterOrEqual(t, all.Min.Y(), -slack)
	assert.LessOrEqual(t, all.Max.X(), 960+slack)
	assert.LessOrEqual(t, all.Max.Y(), 600+slack)

	// One dimension fills the viewport exactly.
	fillsWidth := all.Max.X()-all.Min.X() > 960-1e-3
	fillsHeight := all.Max.Y()-all.Min.Y() > 600-1e-3
	assert.True(t, fillsWidth || fillsHeight)
}

func TestProjection_Orientation(t *testing.T) {
	p := California().FitSize(960, 600, loadLayer(t, "counties.json", LayerCounty).Geometries()...)

	north := p.Project(orb.Point{-120, 40})
	south := p.Project(orb.Point{-120, 33})
	assert.Less(t, north.Y(), south.Y(), "screen y grows southwards")

	west := p.Project(orb.Point{-122, 37})
	east := p.Project(orb.Point{-116, 37})
	assert.Less(t, west.X(), east.X())
}

func TestProjection_CentralMeridianIsVertical(t *testing.T) {
	p := California()
	a := p.Project(orb.Point{-120, 33})
	b := p.Project(orb.Point{-120, 41})
	assert.InDelta(t, a.X(), b.X(), 1e-9)
}

func TestProjection_BoundsOfPolygon(t *testing.T) {
	cities := loadLayer(t, "cities.json", LayerCity)
	p := California().FitSize(960, 600, cities.Geometries()...)

	paradise, _ := cities.Get("Paradise")
	b := p.Bounds(paradise.Geometry)
	assert.Less(t, b.Min.X(), b.Max.X())
	assert.Less(t, b.Min.Y(), b.Max.Y())

	c := p.Centroid(paradise.Geometry)
	assert.True(t, b.Contains(c))
}

func TestProjection_FitSizeWithoutGeometry(t *testing.T) {
	p := California().FitSize(960, 600)
	assert.Equal(t, 1.0, p.Scale())
}
