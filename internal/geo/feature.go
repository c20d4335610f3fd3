// Package geo parses boundary and fire-perimeter GeoJSON into features,
// projects them onto the map viewport, and answers point-in-polygon queries.
package geo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

// Layer is one of the three map layers.
type Layer int

const (
	LayerCounty Layer = iota
	LayerCity
	LayerFire
)

func (l Layer) String() string {
	switch l {
	case LayerCounty:
		return "county"
	case LayerCity:
		return "city"
	case LayerFire:
		return "fire"
	default:
		return "unknown"
	}
}

func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Kind maps a layer to the region kind its selections carry.
func (l Layer) Kind() domain.RegionKind {
	switch l {
	case LayerCounty:
		return domain.KindCounty
	case LayerCity:
		return domain.KindCity
	case LayerFire:
		return domain.KindFire
	default:
		return domain.KindNone
	}
}

// LayerFor is the inverse of Layer.Kind.
func LayerFor(kind domain.RegionKind) (Layer, bool) {
	switch kind {
	case domain.KindCounty:
		return LayerCounty, true
	case domain.KindCity:
		return LayerCity, true
	case domain.KindFire:
		return LayerFire, true
	default:
		return 0, false
	}
}

// Name properties per layer, in lookup order.
var nameKeys = map[Layer][]string{
	LayerCounty: {"NAME", "NAMELSAD"},
	LayerCity:   {"CITY", "NAME"},
	LayerFire:   {"FIRE_NAME"},
}

// Feature is one polygon on the map.
type Feature struct {
	Layer      Layer
	ID         string
	Name       string
	Geometry   orb.Geometry
	Properties geojson.Properties
}

// Contains reports whether the lon/lat point falls inside the feature.
func (f *Feature) Contains(p orb.Point) bool {
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	default:
		return false
	}
}

// Fire reads the perimeter attributes. Only meaningful on the fire layer.
func (f *Feature) Fire() domain.Fire {
	return domain.Fire{
		ID:            f.ID,
		Name:          f.Name,
		Year:          int(propFloat(f.Properties, "YEAR_")),
		AlarmDate:     propString(f.Properties, "ALARM_DATE"),
		ContainedDate: propString(f.Properties, "CONT_DATE"),
		Acres:         propFloat(f.Properties, "GIS_ACRES"),
	}
}

// Collection is a parsed layer: features in file order plus an ID index.
type Collection struct {
	Layer    Layer
	Features []*Feature
	Dropped  int // invalid geometries
	byID     map[string]*Feature
}

// NewCollection indexes features by ID. Later duplicates are kept in
// Features but unreachable by Get.
func NewCollection(layer Layer, features []*Feature) *Collection {
	c := &Collection{Layer: layer, Features: features, byID: make(map[string]*Feature, len(features))}
	for _, f := range features {
		if _, dup := c.byID[f.ID]; !dup {
			c.byID[f.ID] = f
		}
	}
	return c
}

// Get finds a feature by ID.
func (c *Collection) Get(id string) (*Feature, bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.byID[id]
	return f, ok
}

// Locate returns every feature containing the lon/lat point.
func (c *Collection) Locate(p orb.Point) []*Feature {
	if c == nil {
		return nil
	}
	var out []*Feature
	for _, f := range c.Features {
		if !f.Geometry.Bound().Contains(p) {
			continue
		}
		if f.Contains(p) {
			out = append(out, f)
		}
	}
	return out
}

// Geometries returns every feature's geometry, for fitting a projection.
func (c *Collection) Geometries() []orb.Geometry {
	if c == nil {
		return nil
	}
	out := make([]orb.Geometry, len(c.Features))
	for i, f := range c.Features {
		out[i] = f.Geometry
	}
	return out
}

// ParseFeatures decodes a FeatureCollection and keeps only features whose
// geometry is a non-empty Polygon or MultiPolygon.
func ParseFeatures(data []byte, layer Layer) (*Collection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s features: %w", layer, err)
	}

	features := make([]*Feature, 0, len(fc.Features))
	dropped := 0
	for _, gf := range fc.Features {
		if !validGeometry(gf.Geometry) {
			dropped++
			continue
		}
		f := &Feature{
			Layer:      layer,
			Geometry:   gf.Geometry,
			Properties: gf.Properties,
		}
		for _, key := range nameKeys[layer] {
			if name := strings.TrimSpace(propString(gf.Properties, key)); name != "" {
				f.Name = name
				if layer == LayerCounty {
					// NAMELSAD carries the " County" suffix the index strips.
					f.Name = domain.NormalizeRegionName(domain.KindCounty, name)
				}
				break
			}
		}
		f.ID = featureID(layer, f, gf)
		if f.ID == "" {
			dropped++
			continue
		}
		features = append(features, f)
	}

	c := NewCollection(layer, features)
	c.Dropped = dropped
	return c, nil
}

func featureID(layer Layer, f *Feature, gf *geojson.Feature) string {
	if layer != LayerFire {
		return f.Name
	}
	if id := strings.TrimSpace(propString(gf.Properties, "IRWINID")); id != "" {
		return strings.Trim(id, "{}")
	}
	return geometryHash(gf.Geometry)
}

func geometryHash(g orb.Geometry) string {
	b, err := json.Marshal(geojson.NewGeometry(g))
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return "geom-" + hex.EncodeToString(sum[:8])
}

func validGeometry(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return len(g) > 0 && len(g[0]) > 0
	case orb.MultiPolygon:
		for _, p := range g {
			if len(p) > 0 && len(p[0]) > 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func propString(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func propFloat(p geojson.Properties, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
