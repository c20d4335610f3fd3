// Command validate checks the dashboard's input files before they are served:
// malformed price rows, series ordering, regions that have a price series but
// no shape (and the reverse), and fires whose active range is unusable.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -county-csv data/CA_counties.csv \
//	  -city-csv data/ZILLOW_DATA_CITIES.csv \
//	  -county-geojson data/FILTERED_COUNTY_LINES.json \
//	  -city-geojson data/CA_CITIES.json \
//	  -fire-geojson data/FILTERED_BIG_FIRES.json
//
// Exits 1 when an input cannot be loaded or a series is out of order. Other
// findings are reported as warnings.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/geo"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/loader"
)

// phase tracks pass/fail for a validation phase. Warnings never fail it.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	var src loader.Sources
	flag.StringVar(&src.CountyCSV, "county-csv", "", "county price CSV (path or URL)")
	flag.StringVar(&src.CityCSV, "city-csv", "", "city price CSV (path or URL)")
	flag.StringVar(&src.CountyGeoJSON, "county-geojson", "", "county boundaries GeoJSON")
	flag.StringVar(&src.CityGeoJSON, "city-geojson", "", "city boundaries GeoJSON")
	flag.StringVar(&src.FireGeoJSON, "fire-geojson", "", "fire perimeters GeoJSON")
	policy := flag.String("missing", "drop", "missing-sample policy: drop or zero")
	flag.Parse()

	if src.CountyCSV == "" || src.CityCSV == "" || src.CountyGeoJSON == "" || src.CityGeoJSON == "" || src.FireGeoJSON == "" {
		flag.Usage()
		os.Exit(1)
	}
	missing, err := domain.ParseMissingPolicy(*policy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if code := run(context.Background(), os.Stdout, src, missing); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, out io.Writer, src loader.Sources, missing domain.MissingPolicy) int {
	fmt.Fprintln(out, "=== Wildfire Dashboard Input Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := loader.New(nil, logger).Load(ctx, src)
	if err != nil {
		fmt.Fprintf(out, "Load failed: %v\n\nValidation FAILED.\n", err)
		return 1
	}

	counties, countyPhase := validateDataset("Phase 1: County prices", b.Counties, domain.CountyOptions(missing), logger)
	cities, cityPhase := validateDataset("Phase 2: City prices", b.Cities, domain.CityOptions(missing), logger)
	phases := []*phase{
		countyPhase,
		cityPhase,
		validateCoverage("Phase 3: County shapes vs series", counties, b.CountyShapes),
		validateCoverage("Phase 4: City shapes vs series", cities, b.CityShapes),
		validateFires(b.FireShapes),
	}

	fmt.Fprintln(out, "Summary:")
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
		}
		fmt.Fprintf(out, "  %-42s %s (%d warnings)\n", p.name, status, len(p.warnings))
	}

	failed := false
	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [E%d] %s\n", i+1, e)
		}
		for i, w := range p.warnings {
			fmt.Fprintf(out, "  [W%d] %s\n", i+1, w)
		}
		failed = failed || !p.passed()
	}

	if failed {
		fmt.Fprintln(out, "\nValidation FAILED.")
		return 1
	}
	fmt.Fprintln(out, "\nAll validations passed.")
	return 0
}

// validateDataset builds one dataset. Date columns must appear in strictly
// ascending order in the header, and every built series must be strictly
// ascending by date.
func validateDataset(name string, t domain.Table, opts domain.BuildOptions, logger *slog.Logger) (*domain.Dataset, *phase) {
	p := &phase{name: name}

	var prev time.Time
	for _, h := range t.Header {
		d, ok := opts.DateKeys.Parse(h)
		if !ok {
			continue
		}
		if !prev.IsZero() && !d.After(prev) {
			p.errorf("%s: column %q is not after %s", t.Source, h, prev.Format(time.DateOnly))
		}
		prev = d
	}

	ds, stats, err := domain.BuildDataset(t, opts, logger)
	if err != nil {
		p.errorf("%v", err)
		return nil, p
	}

	if stats.Skipped > 0 {
		p.warnf("%d malformed row(s) skipped of %d", stats.Skipped, stats.Rows)
	}
	if stats.Duplicates > 0 {
		p.warnf("%d duplicate region row(s)", stats.Duplicates)
	}
	if stats.MissingCells > 0 {
		p.warnf("%d missing sample(s) (%s policy)", stats.MissingCells, opts.Missing)
	}
	for _, region := range ds.Names() {
		s := ds.Series[region]
		for i := 1; i < len(s); i++ {
			if !s[i].Date.After(s[i-1].Date) {
				p.errorf("%s: sample %d (%s) not after %s", region, i, s[i].Date.Format(time.DateOnly), s[i-1].Date.Format(time.DateOnly))
				break
			}
		}
	}
	return ds, p
}

// validateCoverage compares shape names with series names.
func validateCoverage(name string, ds *domain.Dataset, shapes *geo.Collection) *phase {
	p := &phase{name: name}
	if ds == nil || shapes == nil {
		return p
	}
	if shapes.Dropped > 0 {
		p.warnf("%d invalid feature(s) dropped", shapes.Dropped)
	}

	seen := make(map[string]bool, len(shapes.Features))
	for _, f := range shapes.Features {
		key := domain.NormalizeRegionName(ds.Kind, f.Name)
		seen[key] = true
		if _, ok := ds.Lookup(f.Name); !ok {
			p.warnf("feature %q has no price series", f.Name)
		}
	}
	for _, region := range ds.Names() {
		if !seen[region] {
			p.warnf("series %q has no feature", region)
		}
	}
	return p
}

// validateFires reports fires whose alarm and containment dates cannot form
// a range.
func validateFires(shapes *geo.Collection) *phase {
	p := &phase{name: "Phase 5: Fire ranges"}
	if shapes == nil {
		return p
	}
	if shapes.Dropped > 0 {
		p.warnf("%d invalid feature(s) dropped", shapes.Dropped)
	}
	for _, f := range shapes.Features {
		fire := f.Fire()
		if _, err := fire.ActiveRange(); err != nil {
			p.warnf("%s (%s, %d): %v", fire.ID, fire.Name, fire.Year, err)
		}
	}
	return p
}
