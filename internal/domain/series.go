package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RegionKind tags what a selection or dataset refers to.
type RegionKind int

const (
	KindNone RegionKind = iota
	KindCounty
	KindCity
	KindFire
)

func (k RegionKind) String() string {
	switch k {
	case KindCounty:
		return "county"
	case KindCity:
		return "city"
	case KindFire:
		return "fire"
	default:
		return "none"
	}
}

func (k RegionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *RegionKind) UnmarshalText(b []byte) error {
	v, err := ParseRegionKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// IsRegion reports whether the kind has a price series (county or city).
func (k RegionKind) IsRegion() bool {
	return k == KindCounty || k == KindCity
}

// ParseRegionKind accepts "county", "city", "fire" or "none" (case-insensitive).
func ParseRegionKind(s string) (RegionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "county":
		return KindCounty, nil
	case "city":
		return KindCity, nil
	case "fire":
		return KindFire, nil
	case "", "none":
		return KindNone, nil
	default:
		return KindNone, fmt.Errorf("unknown region kind %q", s)
	}
}

// Point is one monthly sample of a region's median home value.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a region's samples ordered by strictly increasing date.
type Series []Point

// Extent returns the min and max value over the points whose date lies in
// [from, to] inclusive. A zero from or to leaves that side open. ok is false
// when no point qualifies.
func (s Series) Extent(from, to time.Time) (lo, hi float64, ok bool) {
	for _, p := range s {
		if !from.IsZero() && p.Date.Before(from) {
			continue
		}
		if !to.IsZero() && p.Date.After(to) {
			continue
		}
		if !ok {
			lo, hi, ok = p.Value, p.Value, true
			continue
		}
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
	}
	return lo, hi, ok
}

// Nearest returns the index of the sample closest in time to t using a
// binary search. ok is false for an empty series. Ties go to the earlier sample.
func (s Series) Nearest(t time.Time) (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	i := sort.Search(len(s), func(i int) bool { return !s[i].Date.Before(t) })
	switch {
	case i == 0:
		return 0, true
	case i == len(s):
		return len(s) - 1, true
	}
	if t.Sub(s[i-1].Date) <= s[i].Date.Sub(t) {
		return i - 1, true
	}
	return i, true
}

// Dates returns the sample dates in order.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}
