package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/loader"
)

const (
	countyShapes = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"NAME": "Butte"},
   "geometry": {"type": "Polygon", "coordinates": [[[-122.0, 39.3], [-121.0, 39.3], [-121.0, 40.2], [-122.0, 40.2], [-122.0, 39.3]]]}},
  {"type": "Feature", "properties": {"NAME": "Lassen"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.3, 40.2], [-120.0, 40.2], [-120.0, 41.2], [-121.3, 41.2], [-121.3, 40.2]]]}}
]}`
	cityShapes = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"CITY": "Paradise"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.65, 39.73], [-121.55, 39.73], [-121.55, 39.80], [-121.65, 39.80], [-121.65, 39.73]]]}}
]}`
	fireShapes = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"IRWINID": "{BACK-0002}", "FIRE_NAME": "BACKWARDS", "YEAR_": 2018, "ALARM_DATE": "2018-08-15", "CONT_DATE": "2018-07-01"},
   "geometry": {"type": "Polygon", "coordinates": [[[-121.2, 39.5], [-121.1, 39.5], [-121.1, 39.6], [-121.2, 39.6], [-121.2, 39.5]]]}}
]}`
)

func writeInputs(t *testing.T, countyCSV string) loader.Sources {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}
	return loader.Sources{
		CountyCSV:     write("counties.csv", countyCSV),
		CityCSV:       write("cities.csv", "RegionName,2017-01-31,2017-02-28\nParadise,300000,NA\n"),
		CountyGeoJSON: write("counties.json", countyShapes),
		CityGeoJSON:   write("cities.json", cityShapes),
		FireGeoJSON:   write("fires.json", fireShapes),
	}
}

func TestRun_PassesWithWarnings(t *testing.T) {
	src := writeInputs(t, "RegionName,X2017.01.31,X2017.02.28\nButte County,200000,201000\nSierra County,1\n")
	var out bytes.Buffer

	code := run(context.Background(), &out, src, domain.MissingDrop)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "1 malformed row(s) skipped of 2")
	assert.Contains(t, out.String(), `feature "Lassen" has no price series`)
	assert.Contains(t, out.String(), "1 missing sample(s) (drop policy)")
	assert.Contains(t, out.String(), "BACK-0002")
}

func TestRun_FailsOnOutOfOrderColumns(t *testing.T) {
	src := writeInputs(t, "RegionName,X2017.02.28,X2017.01.31\nButte County,201000,200000\n")
	var out bytes.Buffer

	code := run(context.Background(), &out, src, domain.MissingDrop)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `column "X2017.01.31" is not after 2017-02-28`)
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_FailsOnLoadError(t *testing.T) {
	src := writeInputs(t, "RegionName,X2017.01.31\nButte County,1\n")
	src.FireGeoJSON = filepath.Join(t.TempDir(), "missing.json")
	var out bytes.Buffer

	code := run(context.Background(), &out, src, domain.MissingDrop)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Load failed")
}
