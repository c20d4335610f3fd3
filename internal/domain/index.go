package domain

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Table is a parsed CSV file: a header and its rows, cells as raw strings.
// Rows may be ragged; BuildDataset decides what is usable.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
}

// MissingPolicy decides what happens to "NA" and unparsable samples.
type MissingPolicy int

const (
	// MissingDrop omits the sample, leaving a gap the line bridges.
	MissingDrop MissingPolicy = iota
	// MissingZero records the sample as 0.
	MissingZero
)

func (p MissingPolicy) String() string {
	if p == MissingZero {
		return "zero"
	}
	return "drop"
}

// ParseMissingPolicy accepts "drop" or "zero".
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return MissingDrop, nil
	case "zero":
		return MissingZero, nil
	default:
		return MissingDrop, fmt.Errorf("unknown missing policy %q (want drop or zero)", s)
	}
}

// DateKeyFormat describes how one source file spells its date columns.
type DateKeyFormat struct {
	Prefix string // stripped before parsing, e.g. "X"
	Layout string // time.Parse layout of the remainder
}

var (
	// CountyDateKeys matches "X2000.01.31".
	CountyDateKeys = DateKeyFormat{Prefix: "X", Layout: "2006.01.02"}
	// CityDateKeys matches "2000-01-31".
	CityDateKeys = DateKeyFormat{Layout: "2006-01-02"}
)

// Parse converts a column key to a UTC date. ok is false for metadata columns.
func (f DateKeyFormat) Parse(key string) (time.Time, bool) {
	key = strings.TrimSpace(key)
	if f.Prefix != "" {
		if !strings.HasPrefix(key, f.Prefix) {
			return time.Time{}, false
		}
		key = key[len(f.Prefix):]
	}
	t, err := time.Parse(f.Layout, key)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// BuildOptions configures how one CSV becomes a Dataset.
type BuildOptions struct {
	Kind       RegionKind
	NameColumn string
	DateKeys   DateKeyFormat
	Missing    MissingPolicy
}

// CountyOptions returns the options for the county price CSV.
func CountyOptions(p MissingPolicy) BuildOptions {
	return BuildOptions{Kind: KindCounty, NameColumn: "RegionName", DateKeys: CountyDateKeys, Missing: p}
}

// CityOptions returns the options for the city price CSV.
func CityOptions(p MissingPolicy) BuildOptions {
	return BuildOptions{Kind: KindCity, NameColumn: "RegionName", DateKeys: CityDateKeys, Missing: p}
}

// BuildStats summarizes a build for logging and validation reports.
type BuildStats struct {
	Rows         int
	Regions      int
	Skipped      int
	Duplicates   int
	MissingCells int
	DateColumns  int
}

// Dataset maps region names to their series, plus the sorted set of every
// date that appears in any series.
type Dataset struct {
	Kind   RegionKind
	Series map[string]Series
	Dates  []time.Time
}

// Lookup finds a region's series, normalizing the name the same way the
// build did.
func (d *Dataset) Lookup(name string) (Series, bool) {
	if d == nil {
		return nil, false
	}
	s, ok := d.Series[NormalizeRegionName(d.Kind, name)]
	return s, ok
}

// Names returns the region names in lexical order.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Series))
	for n := range d.Series {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Span returns the first and last date of the dataset.
func (d *Dataset) Span() (first, last time.Time, ok bool) {
	if d == nil || len(d.Dates) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return d.Dates[0], d.Dates[len(d.Dates)-1], true
}

// NormalizeRegionName strips a trailing " County" from county names and
// surrounding whitespace from every name.
func NormalizeRegionName(kind RegionKind, name string) string {
	name = strings.TrimSpace(name)
	if kind == KindCounty {
		name = strings.TrimSpace(strings.TrimSuffix(name, " County"))
	}
	return name
}

type dateColumn struct {
	index int
	date  time.Time
}

// BuildDataset turns a price table into a Dataset. Malformed rows are logged
// and skipped; only a header without a name column or without date columns
// fails the whole build.
func BuildDataset(t Table, opts BuildOptions, logger *slog.Logger) (*Dataset, BuildStats, error) {
	var stats BuildStats

	nameIdx := -1
	var cols []dateColumn
	for i, h := range t.Header {
		if strings.TrimSpace(h) == opts.NameColumn {
			nameIdx = i
			continue
		}
		if d, ok := opts.DateKeys.Parse(h); ok {
			cols = append(cols, dateColumn{index: i, date: d})
		}
	}
	if nameIdx < 0 {
		return nil, stats, fmt.Errorf("%w: %s: no %q column", ErrDatasetLoad, t.Source, opts.NameColumn)
	}
	if len(cols) == 0 {
		return nil, stats, fmt.Errorf("%w: %s: no date columns matching %s%s", ErrDatasetLoad, t.Source, opts.DateKeys.Prefix, opts.DateKeys.Layout)
	}

	// Column order is date order in every known export; sort anyway so the
	// series are strictly increasing even for hand-edited files.
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].date.Before(cols[j].date) })
	cols = dedupeColumns(cols)
	stats.DateColumns = len(cols)
	lastCol := nameIdx
	for _, c := range cols {
		lastCol = max(lastCol, c.index)
	}

	ds := &Dataset{Kind: opts.Kind, Series: make(map[string]Series, len(t.Rows))}
	seen := make(map[int64]time.Time, len(cols))

	for i, row := range t.Rows {
		stats.Rows++
		line := i + 2 // header is line 1

		if len(row) <= lastCol {
			stats.Skipped++
			logger.Warn("skipping malformed row",
				"file", t.Source,
				"line", line,
				"error", fmt.Errorf("%w: %d cells, header needs %d", ErrMalformedRow, len(row), lastCol+1),
			)
			continue
		}

		name := NormalizeRegionName(opts.Kind, row[nameIdx])
		if name == "" {
			stats.Skipped++
			logger.Warn("skipping malformed row",
				"file", t.Source,
				"line", line,
				"error", fmt.Errorf("%w: empty %s", ErrMalformedRow, opts.NameColumn),
			)
			continue
		}
		if _, dup := ds.Series[name]; dup {
			stats.Duplicates++
			logger.Warn("duplicate region, keeping first row", "file", t.Source, "line", line, "region", name)
			continue
		}

		series := make(Series, 0, len(cols))
		for _, c := range cols {
			v, ok := parseSample(row[c.index])
			if !ok {
				stats.MissingCells++
				if opts.Missing == MissingDrop {
					continue
				}
				v = 0
			}
			series = append(series, Point{Date: c.date, Value: v})
			seen[c.date.Unix()] = c.date
		}
		ds.Series[name] = series
	}

	ds.Dates = make([]time.Time, 0, len(seen))
	for _, d := range seen {
		ds.Dates = append(ds.Dates, d)
	}
	sort.Slice(ds.Dates, func(i, j int) bool { return ds.Dates[i].Before(ds.Dates[j]) })
	stats.Regions = len(ds.Series)

	return ds, stats, nil
}

func dedupeColumns(cols []dateColumn) []dateColumn {
	out := cols[:0]
	for i, c := range cols {
		if i > 0 && c.date.Equal(out[len(out)-1].date) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// parseSample reads one price cell. "NA", blanks, non-numbers and non-finite
// values are missing.
func parseSample(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "NA") {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// DatasetIndex holds the county and city datasets. It is built once and never
// mutated afterwards.
type DatasetIndex struct {
	Counties *Dataset
	Cities   *Dataset
}

// BuildIndex builds both datasets with the same missing-sample policy.
func BuildIndex(counties, cities Table, policy MissingPolicy, logger *slog.Logger) (*DatasetIndex, error) {
	c, cStats, err := BuildDataset(counties, CountyOptions(policy), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("county index built", "regions", cStats.Regions, "skipped", cStats.Skipped, "missing_cells", cStats.MissingCells)

	t, tStats, err := BuildDataset(cities, CityOptions(policy), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("city index built", "regions", tStats.Regions, "skipped", tStats.Skipped, "missing_cells", tStats.MissingCells)

	return &DatasetIndex{Counties: c, Cities: t}, nil
}

// Dataset returns the dataset for a region kind, or nil for fires and none.
func (idx *DatasetIndex) Dataset(kind RegionKind) *Dataset {
	switch kind {
	case KindCounty:
		return idx.Counties
	case KindCity:
		return idx.Cities
	default:
		return nil
	}
}

// Resolve returns a region's series together with the dataset it belongs to.
// Counties and cities share this one path.
func (idx *DatasetIndex) Resolve(kind RegionKind, name string) (Series, *Dataset, error) {
	if !kind.IsRegion() {
		return nil, nil, fmt.Errorf("%w: %s selections have no series", ErrNoRegionSelected, kind)
	}
	ds := idx.Dataset(kind)
	s, ok := ds.Lookup(name)
	if !ok {
		return nil, ds, fmt.Errorf("%w: %s %q", ErrRegionNotFound, kind, name)
	}
	return s, ds, nil
}
