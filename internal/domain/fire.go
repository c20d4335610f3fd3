package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fire is one perimeter's attributes. Geometry lives with the map features.
type Fire struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Year          int     `json:"year"`
	AlarmDate     string  `json:"alarm_date,omitempty"`
	ContainedDate string  `json:"contained_date,omitempty"`
	Acres         float64 `json:"acres,omitempty"`
}

// FRAP exports have shipped every one of these spellings.
var fireDateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05+00",
	"2006/01/02 15:04:05",
}

// ParseFireDate reads an ALARM_DATE or CONT_DATE value. Besides the text
// layouts above, ESRI JSON exports use epoch milliseconds.
func ParseFireDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidRange)
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) > 8 {
		return truncateDay(time.UnixMilli(ms)), nil
	}
	for _, layout := range fireDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable date %q", ErrInvalidRange, s)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ActiveRange is the window from alarm to containment.
func (f Fire) ActiveRange() (DateRange, error) {
	start, err := ParseFireDate(f.AlarmDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("fire %s alarm date: %w", f.ID, err)
	}
	end, err := ParseFireDate(f.ContainedDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("fire %s containment date: %w", f.ID, err)
	}
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, fmt.Errorf("fire %s: %w", f.ID, err)
	}
	return r, nil
}

// FiresInYear keeps the fires whose YEAR_ equals year, preserving order.
func FiresInYear(fires []Fire, year int) []Fire {
	out := make([]Fire, 0)
	for _, f := range fires {
		if f.Year == year {
			out = append(out, f)
		}
	}
	return out
}
