package domain

import (
	"fmt"
	"math"
	"time"
)

// TickFormat chooses how x-axis dates are labelled.
type TickFormat int

const (
	// TickYear labels ticks with a two-digit year: '08.
	TickYear TickFormat = iota
	// TickMonthYear labels ticks with month and two-digit year: Jan '08.
	TickMonthYear
)

// Format renders t with the format's layout.
func (f TickFormat) Format(t time.Time) string {
	if f == TickMonthYear {
		return t.Format("Jan '06")
	}
	return t.Format("'06")
}

func (f TickFormat) String() string {
	if f == TickMonthYear {
		return "month_year"
	}
	return "year"
}

func (f TickFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ChartDomain is what the chart needs to lay out its axes. It is derived
// from a selection and the index on demand and never cached.
type ChartDomain struct {
	X         [2]time.Time `json:"x"`
	Y         [2]float64   `json:"y"`
	Tick      TickFormat   `json:"tick"`
	Highlight *DateRange   `json:"highlight,omitempty"`
}

// Equal compares two domains by value.
func (d ChartDomain) Equal(o ChartDomain) bool {
	if !d.X[0].Equal(o.X[0]) || !d.X[1].Equal(o.X[1]) || d.Y != o.Y || d.Tick != o.Tick {
		return false
	}
	if (d.Highlight == nil) != (o.Highlight == nil) {
		return false
	}
	return d.Highlight == nil ||
		(d.Highlight.Start.Equal(o.Highlight.Start) && d.Highlight.End.Equal(o.Highlight.End))
}

// ComputeFullDomain spans the whole dataset on x so the horizontal axis never
// moves between regions, and the selected region's own floored extent on y.
func ComputeFullDomain(sel Selection, idx *DatasetIndex) (ChartDomain, error) {
	series, ds, err := idx.Resolve(sel.Kind, sel.RegionName)
	if err != nil {
		return ChartDomain{}, err
	}

	var d ChartDomain
	if first, last, ok := ds.Span(); ok {
		d.X = [2]time.Time{first, last}
	}
	if lo, hi, ok := series.Extent(time.Time{}, time.Time{}); ok {
		// Floor both ends; sub-dollar precision made the extent jitter.
		d.Y = [2]float64{math.Floor(lo), math.Floor(hi)}
	}
	d.Tick = TickMonthYear
	if d.X[1].Year() > d.X[0].Year() {
		d.Tick = TickYear
	}
	return d, nil
}

// YearWindow returns December 1 of the previous year through January 31 of
// the next: one year padded by a month on each side.
func YearWindow(year int) DateRange {
	return DateRange{
		Start: time.Date(year-1, time.December, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, time.January, 31, 0, 0, 0, 0, time.UTC),
	}
}

// CalendarYear returns January 1 through December 31 of year.
func CalendarYear(year int) DateRange {
	return DateRange{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// WithYearBand marks the slider year on a full-domain chart. The axes are
// unchanged.
func (d ChartDomain) WithYearBand(year int) ChartDomain {
	band := CalendarYear(year)
	d.Highlight = &band
	return d
}

// ComputeYearDomain zooms the chart to one year. Only points inside the
// window contribute to the y-extent.
func ComputeYearDomain(sel Selection, idx *DatasetIndex, year int) (ChartDomain, error) {
	series, _, err := idx.Resolve(sel.Kind, sel.RegionName)
	if err != nil {
		return ChartDomain{}, err
	}
	return clippedDomain(series, YearWindow(year), nil), nil
}

// PadRange widens r by six months on each side, snapped outward to whole
// months: the first day of the start month and the last day of the end month.
func PadRange(r DateRange) DateRange {
	s, e := r.Start.UTC(), r.End.UTC()
	return DateRange{
		Start: time.Date(s.Year(), s.Month()-6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(e.Year(), e.Month()+7, 0, 0, 0, 0, 0, time.UTC),
	}
}

// ComputeRangeDomain scopes the chart to a fire's active window, padded for
// context, and marks the unpadded window as the highlight.
func ComputeRangeDomain(sel Selection, idx *DatasetIndex, r DateRange) (ChartDomain, error) {
	if err := r.Validate(); err != nil {
		return ChartDomain{}, err
	}
	series, _, err := idx.Resolve(sel.Kind, sel.RegionName)
	if err != nil {
		return ChartDomain{}, err
	}
	highlight := r
	return clippedDomain(series, PadRange(r), &highlight), nil
}

func clippedDomain(series Series, window DateRange, highlight *DateRange) ChartDomain {
	d := ChartDomain{
		X:         [2]time.Time{window.Start, window.End},
		Tick:      TickMonthYear,
		Highlight: highlight,
	}
	if lo, hi, ok := series.Extent(window.Start, window.End); ok {
		d.Y = [2]float64{lo, hi}
	}
	return d
}

// ChartMode is which domain computation a session's chart follows.
type ChartMode int

const (
	ModeFull ChartMode = iota
	ModeYear
	ModeRange
)

func (m ChartMode) String() string {
	switch m {
	case ModeYear:
		return "year"
	case ModeRange:
		return "range"
	default:
		return "full"
	}
}

func (m ChartMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseChartMode accepts "full" or "year". Range mode is entered only by
// selecting a fire.
func ParseChartMode(s string) (ChartMode, error) {
	switch s {
	case "full", "":
		return ModeFull, nil
	case "year":
		return ModeYear, nil
	default:
		return ModeFull, fmt.Errorf("unknown chart mode %q (want full or year)", s)
	}
}
