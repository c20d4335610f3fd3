package domain

import (
	"fmt"
	"time"
)

// DateRange is a closed interval of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate rejects zero dates and ranges that end before they start.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRange)
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidRange,
			r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	}
	return nil
}

// Contains reports whether t lies inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Selection is what the user currently has selected. Exactly one of
// RegionName and FireRange is set unless Kind is KindNone.
type Selection struct {
	Kind       RegionKind `json:"kind"`
	RegionName string     `json:"region_name,omitempty"`
	FireID     string     `json:"fire_id,omitempty"`
	FireRange  *DateRange `json:"fire_range,omitempty"`
}

// RegionSelection selects a county or city by name.
func RegionSelection(kind RegionKind, name string) Selection {
	return Selection{Kind: kind, RegionName: NormalizeRegionName(kind, name)}
}

// FireSelection selects a fire by its identity and active window.
func FireSelection(id string, r DateRange) Selection {
	return Selection{Kind: KindFire, FireID: id, FireRange: &r}
}

// Validate checks the exclusivity invariant.
func (s Selection) Validate() error {
	switch {
	case s.Kind == KindNone:
		if s.RegionName != "" || s.FireRange != nil || s.FireID != "" {
			return fmt.Errorf("empty selection carries a target")
		}
	case s.Kind.IsRegion():
		if s.RegionName == "" {
			return fmt.Errorf("%s selection without a name", s.Kind)
		}
		if s.FireRange != nil || s.FireID != "" {
			return fmt.Errorf("%s selection carries a fire range", s.Kind)
		}
	case s.Kind == KindFire:
		if s.FireRange == nil {
			return fmt.Errorf("fire selection without a range")
		}
		if s.RegionName != "" {
			return fmt.Errorf("fire selection carries a region name")
		}
	default:
		return fmt.Errorf("unknown selection kind %d", s.Kind)
	}
	return nil
}

// Equal compares two selections by value.
func (s Selection) Equal(o Selection) bool {
	if s.Kind != o.Kind || s.RegionName != o.RegionName || s.FireID != o.FireID {
		return false
	}
	if (s.FireRange == nil) != (o.FireRange == nil) {
		return false
	}
	if s.FireRange == nil {
		return true
	}
	return s.FireRange.Start.Equal(o.FireRange.Start) && s.FireRange.End.Equal(o.FireRange.End)
}

// SelectionState is the single source of truth for what is selected. It also
// remembers the last county or city so a fire click can re-scope that
// region's chart. Not safe for concurrent use; callers serialize access.
type SelectionState struct {
	current Selection
	region  Selection
}

// Select replaces the current selection, fully clearing the previous one.
// changed is false when the same selection is made twice.
func (s *SelectionState) Select(sel Selection) (changed bool, err error) {
	if err := sel.Validate(); err != nil {
		return false, err
	}
	if sel.Kind == KindFire && sel.FireRange != nil {
		r := *sel.FireRange
		sel.FireRange = &r
	}
	changed = !s.current.Equal(sel)
	s.current = sel
	if sel.Kind.IsRegion() {
		s.region = sel
	}
	return changed, nil
}

// Clear resets to the empty selection. The remembered region goes too.
func (s *SelectionState) Clear() {
	s.current = Selection{}
	s.region = Selection{}
}

// Current returns a copy of the current selection.
func (s *SelectionState) Current() Selection {
	c := s.current
	if c.FireRange != nil {
		r := *c.FireRange
		c.FireRange = &r
	}
	return c
}

// Region returns the most recent county or city selection.
func (s *SelectionState) Region() (Selection, bool) {
	return s.region, s.region.Kind.IsRegion()
}
