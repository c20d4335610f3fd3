package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthly(values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Point{Date: time.Date(2020, time.Month(i+2), 0, 0, 0, 0, 0, time.UTC), Value: v}
	}
	return s
}

func TestSeries_Extent(t *testing.T) {
	s := monthly(5, 3, 9, 1, 7)

	lo, hi, ok := s.Extent(time.Time{}, time.Time{})
	require.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 9.0, hi)

	// Feb 29 through Mar 31, both ends inclusive.
	lo, hi, ok = s.Extent(day(2020, 2, 29), day(2020, 3, 31))
	require.True(t, ok)
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 9.0, hi)

	_, _, ok = s.Extent(day(2030, 1, 1), time.Time{})
	assert.False(t, ok)

	_, _, ok = Series(nil).Extent(time.Time{}, time.Time{})
	assert.False(t, ok)
}

func TestSeries_Nearest(t *testing.T) {
	s := monthly(1, 2, 3) // Jan 31, Feb 29, Mar 31 2020

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"before first", day(2019, 6, 1), 0},
		{"exact", day(2020, 2, 29), 1},
		{"closer to earlier", day(2020, 2, 10), 0},
		{"closer to later", day(2020, 2, 20), 1},
		{"after last", day(2021, 1, 1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, ok := s.Nearest(tt.at)
			require.True(t, ok)
			assert.Equal(t, tt.want, i)
		})
	}

	_, ok := Series(nil).Nearest(day(2020, 1, 1))
	assert.False(t, ok)
}

func TestSeries_NearestTieGoesEarlier(t *testing.T) {
	s := Series{{Date: day(2020, 1, 1)}, {Date: day(2020, 1, 3)}}
	i, ok := s.Nearest(day(2020, 1, 2))
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestRegionKind_Text(t *testing.T) {
	for _, k := range []RegionKind{KindNone, KindCounty, KindCity, KindFire} {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var got RegionKind
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, k, got)
	}

	var k RegionKind
	require.NoError(t, json.Unmarshal([]byte(`"City"`), &k))
	assert.Equal(t, KindCity, k)
	assert.Error(t, json.Unmarshal([]byte(`"state"`), &k))
}
