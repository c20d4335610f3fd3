// Package dashboard ties the loaded datasets to interactive sessions. A
// Dashboard holds everything shared and immutable; a Session is one viewer's
// selection, chart and map.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/geo"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/loader"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/mapview"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/observability"
)

// EventSink receives interaction events. Publish must not block.
type EventSink interface {
	Publish(ev domain.InteractionEvent)
}

// Options configures a Dashboard.
type Options struct {
	MissingPolicy   domain.MissingPolicy
	Viewport        mapview.Viewport
	ZoomDuration    time.Duration
	Style           chart.Style
	SuggestionLimit int
	DefaultYear     int

	Clock   clockwork.Clock
	Finder  domain.PlaceFinder // optional place-search fallback
	Events  EventSink          // optional
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Dashboard is the read-only state every session shares.
type Dashboard struct {
	index  *domain.DatasetIndex
	layers map[geo.Layer]*geo.Collection
	fires  []domain.Fire
	proj   *geo.Projection

	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New indexes a loaded bundle and fits the map projection to the county and
// city boundaries.
func New(b *loader.Bundle, opts Options) (*Dashboard, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = 5
	}
	m := opts.Metrics

	counties, cStats, err := domain.BuildDataset(b.Counties, domain.CountyOptions(opts.MissingPolicy), logger)
	if err != nil {
		return nil, fmt.Errorf("build county index: %w", err)
	}
	cities, tStats, err := domain.BuildDataset(b.Cities, domain.CityOptions(opts.MissingPolicy), logger)
	if err != nil {
		return nil, fmt.Errorf("build city index: %w", err)
	}
	m.MalformedRows.WithLabelValues("county").Add(float64(cStats.Skipped))
	m.MalformedRows.WithLabelValues("city").Add(float64(tStats.Skipped))
	logger.Info("index built",
		"counties", cStats.Regions, "cities", tStats.Regions,
		"skipped_rows", cStats.Skipped+tStats.Skipped,
		"missing_cells", cStats.MissingCells+tStats.MissingCells,
	)

	layers := map[geo.Layer]*geo.Collection{
		geo.LayerCounty: b.CountyShapes,
		geo.LayerCity:   b.CityShapes,
		geo.LayerFire:   b.FireShapes,
	}
	for layer, c := range layers {
		if c == nil {
			layers[layer] = geo.NewCollection(layer, nil)
			continue
		}
		m.InvalidFeatures.WithLabelValues(layer.String()).Add(float64(c.Dropped))
	}

	fires := make([]domain.Fire, 0, len(layers[geo.LayerFire].Features))
	for _, f := range layers[geo.LayerFire].Features {
		fires = append(fires, f.Fire())
	}

	fit := append(layers[geo.LayerCounty].Geometries(), layers[geo.LayerCity].Geometries()...)
	proj := geo.California().FitSize(opts.Viewport.Width, opts.Viewport.Height, fit...)

	return &Dashboard{
		index:   &domain.DatasetIndex{Counties: counties, Cities: cities},
		layers:  layers,
		fires:   fires,
		proj:    proj,
		opts:    opts,
		logger:  logger,
		metrics: m,
	}, nil
}

// Index returns the dataset index.
func (d *Dashboard) Index() *domain.DatasetIndex {
	return d.index
}

// Layer returns the features of one map layer.
func (d *Dashboard) Layer(l geo.Layer) *geo.Collection {
	return d.layers[l]
}

// Projection returns the map projection fitted to the viewport.
func (d *Dashboard) Projection() *geo.Projection {
	return d.proj
}

// Style returns the chart style sessions render with.
func (d *Dashboard) Style() chart.Style {
	return d.opts.Style
}

// Fires returns the fires whose YEAR_ is year, in file order.
func (d *Dashboard) Fires(year int) []domain.Fire {
	return domain.FiresInYear(d.fires, year)
}

// Suggestion is one search hit.
type Suggestion struct {
	Kind      domain.RegionKind `json:"kind"`
	Name      string            `json:"name"`
	HasSeries bool              `json:"has_series"`
}

// SearchResult lists suggestions, plus the geocoded place when the query
// matched no region name.
type SearchResult struct {
	Query       string        `json:"query"`
	Suggestions []Suggestion  `json:"suggestions"`
	Place       *domain.Place `json:"place,omitempty"`
}

// Search matches query case-insensitively as a substring of county names,
// then city names, and keeps the first few. When nothing matches and a place
// finder is configured, the query is geocoded and the counties and cities
// containing the place are suggested instead.
func (d *Dashboard) Search(ctx context.Context, query string) SearchResult {
	res := SearchResult{Query: query, Suggestions: []Suggestion{}}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return res
	}

	for _, layer := range []geo.Layer{geo.LayerCounty, geo.LayerCity} {
		for _, f := range d.layers[layer].Features {
			if len(res.Suggestions) == d.opts.SuggestionLimit {
				return res
			}
			if f.Name != "" && strings.Contains(strings.ToLower(f.Name), q) {
				res.Suggestions = append(res.Suggestions, d.suggestion(layer, f))
			}
		}
	}
	if len(res.Suggestions) > 0 || d.opts.Finder == nil {
		return res
	}

	place, err := d.opts.Finder.FindPlace(ctx, query)
	if err != nil {
		d.logger.WarnContext(ctx, "place search failed", "query", query, "error", err)
		return res
	}
	if !place.Found() {
		return res
	}
	res.Place = &place

	pt := orb.Point{place.Lon, place.Lat}
	for _, layer := range []geo.Layer{geo.LayerCounty, geo.LayerCity} {
		for _, f := range d.layers[layer].Locate(pt) {
			if len(res.Suggestions) == d.opts.SuggestionLimit {
				return res
			}
			res.Suggestions = append(res.Suggestions, d.suggestion(layer, f))
		}
	}
	return res
}

func (d *Dashboard) suggestion(layer geo.Layer, f *geo.Feature) Suggestion {
	_, ok := d.index.Dataset(layer.Kind()).Lookup(f.Name)
	return Suggestion{Kind: layer.Kind(), Name: f.Name, HasSeries: ok}
}

// NewSession starts a session with nothing selected.
func (d *Dashboard) NewSession(id string) *Session {
	surface := chart.NewSceneSurface(d.opts.Style)
	return &Session{
		id:       id,
		d:        d,
		logger:   d.logger.With("session", id),
		mode:     domain.ModeFull,
		year:     d.opts.DefaultYear,
		surface:  surface,
		renderer: chart.NewRenderer(d.opts.Style, surface),
		view:     mapview.NewController(d.opts.Viewport, d.opts.ZoomDuration, d.opts.Clock),
	}
}
