package dashboard

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/geo"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/loader"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/mapview"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/observability"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// months are the 36 month-end sample dates from January 2017.
func months() []time.Time {
	out := make([]time.Time, 36)
	for i := range out {
		out[i] = time.Date(2017, time.Month(i+2), 0, 0, 0, 0, 0, time.UTC)
	}
	return out
}

func priceTable(source string, dateKey func(time.Time) string, rows map[string]func(i int) float64) domain.Table {
	t := domain.Table{Source: source, Header: []string{"RegionName"}}
	for _, m := range months() {
		t.Header = append(t.Header, dateKey(m))
	}
	for _, name := range []string{"Butte County", "Imperial County", "Paradise", "Chico"} {
		fn, ok := rows[name]
		if !ok {
			continue
		}
		row := []string{name}
		for i := range months() {
			row = append(row, strconv.FormatFloat(fn(i), 'f', -1, 64))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

const countiesJSON = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"NAME": "Butte"},
   "geometry": {"type": "Polygon", "coordinates": [[[-122.0, 39.3], [-121.0, 39.3], [-121.0, 40.2], [-122.0, 40.2], [-122.0, 39.3]]]}},
  {"type": "Feature", "properties": {"NAME": "Imperial"},
   "geometry": {"type": "Polygon", "coordinates": [[[-116.1, 32.6], [-114.5, 32.6], [-114.5, 33.4], [-116.1, 33.4], [-116.1, 32.6]]]}},
  {"type": "Feature", "properties": {"NAME": "Lassen"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.3, 40.2], [-120.0, 40.2], [-120.0, 41.2], [-121.3, 41.2], [-121.3, 40.2]]]}}
]}`

const citiesJSON = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"CITY": "Paradise"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.65, 39.73], [-121.55, 39.73], [-121.55, 39.80], [-121.65, 39.80], [-121.65, 39.73]]]}},
  {"type": "Feature", "properties": {"CITY": "Chico"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.88, 39.70], [-121.76, 39.70], [-121.76, 39.78], [-121.88, 39.78], [-121.88, 39.70]]]}}
]}`

const firesJSON = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"IRWINID": "{CAMP-0001}", "FIRE_NAME": "CAMP", "YEAR_": 2018, "ALARM_DATE": "2018-11-08", "CONT_DATE": "2018-11-25"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.7, 39.7], [-121.4, 39.7], [-121.4, 39.9], [-121.7, 39.9], [-121.7, 39.7]]]}},
  {"type": "Feature", "properties": {"IRWINID": "{BACK-0002}", "FIRE_NAME": "BACKWARDS", "YEAR_": 2018, "ALARM_DATE": "2018-08-15", "CONT_DATE": "2018-07-01"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.2, 39.5], [-121.1, 39.5], [-121.1, 39.6], [-121.2, 39.6], [-121.2, 39.5]]]}},
  {"type": "Feature", "properties": {"IRWINID": "{HUMB-0003}", "FIRE_NAME": "HUMBOLDT", "YEAR_": 2008, "ALARM_DATE": "2008-06-11", "CONT_DATE": "2008-06-21"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.75, 39.6], [-121.6, 39.6], [-121.6, 39.7], [-121.75, 39.7], [-121.75, 39.6]]]}}
]}`

func testBundle(t *testing.T) *loader.Bundle {
	t.Helper()

	counties := priceTable("counties.csv", func(d time.Time) string { return "X" + d.Format("2006.01.02") },
		map[string]func(int) float64{
			"Butte County":    func(i int) float64 { return 200000.6 + 1000*float64(i) },
			"Imperial County": func(i int) float64 { return 100 + float64(i) },
		})
	cities := priceTable("cities.csv", func(d time.Time) string { return d.Format(time.DateOnly) },
		map[string]func(int) float64{
			"Paradise": func(i int) float64 { return 300000 - 2000*float64(i) },
			"Chico":    func(int) float64 { return 250000 },
		})

	parse := func(data string, layer geo.Layer) *geo.Collection {
		c, err := geo.ParseFeatures([]byte(data), layer)
		require.NoError(t, err)
		return c
	}
	return &loader.Bundle{
		Counties:     counties,
		Cities:       cities,
		CountyShapes: parse(countiesJSON, geo.LayerCounty),
		CityShapes:   parse(citiesJSON, geo.LayerCity),
		FireShapes:   parse(firesJSON, geo.LayerFire),
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.InteractionEvent
}

func (r *recordingSink) Publish(ev domain.InteractionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type + ":" + ev.Outcome
	}
	return out
}

type stubFinder struct {
	place domain.Place
	err   error
	calls int
}

func (f *stubFinder) FindPlace(_ context.Context, _ string) (domain.Place, error) {
	f.calls++
	return f.place, f.err
}

type harness struct {
	d       *Dashboard
	clock   *clockwork.FakeClock
	sink    *recordingSink
	metrics *observability.Metrics
}

func newHarness(t *testing.T, mutate ...func(*Options)) harness {
	t.Helper()
	h := harness{
		clock:   clockwork.NewFakeClockAt(day(2024, time.May, 1)),
		sink:    &recordingSink{},
		metrics: observability.NewMetricsForTesting(),
	}
	opts := Options{
		MissingPolicy:   domain.MissingDrop,
		Viewport:        mapview.Viewport{Width: 960, Height: 600, SidebarOffset: 300},
		ZoomDuration:    750 * time.Millisecond,
		Style:           chart.DefaultStyle(),
		SuggestionLimit: 5,
		DefaultYear:     2018,
		Clock:           h.clock,
		Events:          h.sink,
		Metrics:         h.metrics,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	d, err := New(testBundle(t), opts)
	require.NoError(t, err)
	h.d = d
	return h
}
