package chart

import (
	"math"
	"sort"
	"time"
)

// LinearScale maps values in Domain onto pixels in Range.
type LinearScale struct {
	Domain [2]float64
	Range  [2]float64
}

// Map returns the pixel for v. A collapsed domain maps to the middle of the range.
func (s LinearScale) Map(v float64) float64 {
	span := s.Domain[1] - s.Domain[0]
	t := 0.5
	if span != 0 {
		t = (v - s.Domain[0]) / span
	}
	return s.Range[0] + t*(s.Range[1]-s.Range[0])
}

// Invert returns the value drawn at pixel px.
func (s LinearScale) Invert(px float64) float64 {
	span := s.Range[1] - s.Range[0]
	if span == 0 {
		return s.Domain[0]
	}
	return s.Domain[0] + (px-s.Range[0])/span*(s.Domain[1]-s.Domain[0])
}

// Ticks returns roughly n round values inside the domain, stepping by 1, 2
// or 5 times a power of ten.
func (s LinearScale) Ticks(n int) []float64 {
	lo, hi := s.Domain[0], s.Domain[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return []float64{lo}
	}
	step := tickStep(lo, hi, max(n, 1))
	first := math.Ceil(lo / step)
	last := math.Floor(hi / step)
	out := make([]float64, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		out = append(out, i*step)
	}
	return out
}

func tickStep(lo, hi float64, n int) float64 {
	raw := (hi - lo) / float64(n)
	step := math.Pow(10, math.Floor(math.Log10(raw)))
	switch e := raw / step; {
	case e >= math.Sqrt(50):
		step *= 10
	case e >= math.Sqrt(10):
		step *= 5
	case e >= math.Sqrt(2):
		step *= 2
	}
	return step
}

// TimeScale maps instants in Domain onto pixels in Range.
type TimeScale struct {
	Domain [2]time.Time
	Range  [2]float64
}

// Map returns the pixel for t. A collapsed domain maps to the middle of the range.
func (s TimeScale) Map(t time.Time) float64 {
	span := s.Domain[1].Sub(s.Domain[0])
	f := 0.5
	if span != 0 {
		f = float64(t.Sub(s.Domain[0])) / float64(span)
	}
	return s.Range[0] + f*(s.Range[1]-s.Range[0])
}

// Invert returns the instant drawn at pixel px.
func (s TimeScale) Invert(px float64) time.Time {
	span := s.Range[1] - s.Range[0]
	if span == 0 {
		return s.Domain[0]
	}
	f := (px - s.Range[0]) / span
	return s.Domain[0].Add(time.Duration(f * float64(s.Domain[1].Sub(s.Domain[0]))))
}

type calendarUnit int

const (
	unitDay calendarUnit = iota
	unitMonth
	unitYear
)

type tickInterval struct {
	unit   calendarUnit
	step   int
	approx time.Duration
}

const (
	approxDay   = 24 * time.Hour
	approxMonth = 30 * approxDay
	approxYear  = 365 * approxDay
)

var tickIntervals = []tickInterval{
	{unitDay, 1, approxDay},
	{unitDay, 2, 2 * approxDay},
	{unitDay, 7, 7 * approxDay},
	{unitMonth, 1, approxMonth},
	{unitMonth, 3, 3 * approxMonth},
	{unitYear, 1, approxYear},
}

// Ticks returns roughly n calendar-aligned instants inside the domain:
// whole days, months, quarters or years depending on the span.
func (s TimeScale) Ticks(n int) []time.Time {
	start, end := s.Domain[0].UTC(), s.Domain[1].UTC()
	if start.IsZero() && end.IsZero() {
		return nil
	}
	if end.Before(start) {
		start, end = end, start
	}
	if start.Equal(end) {
		return []time.Time{start}
	}

	iv := pickInterval(end.Sub(start) / time.Duration(max(n, 1)))
	if iv.unit == unitYear {
		years := end.Sub(start).Hours() / approxYear.Hours()
		iv.step = max(int(tickStep(0, years, max(n, 1))), 1)
	}

	var out []time.Time
	for t := ceilInterval(start, iv); !t.After(end); t = advance(t, iv) {
		out = append(out, t)
	}
	return out
}

func pickInterval(target time.Duration) tickInterval {
	i := sort.Search(len(tickIntervals), func(i int) bool { return tickIntervals[i].approx >= target })
	switch {
	case i == len(tickIntervals):
		return tickIntervals[i-1]
	case i > 0 && float64(target)/float64(tickIntervals[i-1].approx) < float64(tickIntervals[i].approx)/float64(target):
		return tickIntervals[i-1]
	}
	return tickIntervals[i]
}

func ceilInterval(t time.Time, iv tickInterval) time.Time {
	switch iv.unit {
	case unitYear:
		y := t.Year()
		if !t.Equal(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)) {
			y++
		}
		y = ceilMultiple(y, iv.step)
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case unitMonth:
		m := t.Year()*12 + int(t.Month()) - 1
		if !t.Equal(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)) {
			m++
		}
		m = ceilMultiple(m, iv.step)
		return time.Date(m/12, time.Month(m%12+1), 1, 0, 0, 0, 0, time.UTC)
	default:
		d := int(t.Sub(time.Unix(0, 0).UTC()) / approxDay)
		day := time.Unix(0, 0).UTC().AddDate(0, 0, d)
		if day.Before(t) {
			d++
		}
		d = ceilMultiple(d, iv.step)
		return time.Unix(0, 0).UTC().AddDate(0, 0, d)
	}
}

func advance(t time.Time, iv tickInterval) time.Time {
	switch iv.unit {
	case unitYear:
		return t.AddDate(iv.step, 0, 0)
	case unitMonth:
		return t.AddDate(0, iv.step, 0)
	default:
		return t.AddDate(0, 0, iv.step)
	}
}

func ceilMultiple(v, step int) int {
	if r := v % step; r != 0 {
		if v > 0 {
			return v + step - r
		}
		return v - r
	}
	return v
}
