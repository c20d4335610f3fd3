package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

func TestSessions_CreateGetDelete(t *testing.T) {
	h := newHarness(t)
	store := NewSessions(10, h.metrics)

	s := store.Create(h.d)
	_, err := uuid.Parse(s.ID())
	require.NoError(t, err)

	got, ok := store.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionsActive))

	assert.True(t, store.Delete(s.ID()))
	assert.False(t, store.Delete(s.ID()))
	_, ok = store.Get(s.ID())
	assert.False(t, ok)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.SessionsActive))
}

func TestSessions_EvictsOldest(t *testing.T) {
	h := newHarness(t)
	store := NewSessions(2, h.metrics)

	first := store.Create(h.d)
	second := store.Create(h.d)
	store.Get(first.ID())
	third := store.Create(h.d)

	_, ok := store.Get(second.ID())
	assert.False(t, ok)
	for _, s := range []*Session{first, third} {
		_, ok := store.Get(s.ID())
		assert.True(t, ok)
	}
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionsEvicted))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.SessionsActive))
}

func TestSessions_AreIndependent(t *testing.T) {
	h := newHarness(t)
	store := NewSessions(10, h.metrics)
	ctx := context.Background()

	a := store.Create(h.d)
	b := store.Create(h.d)
	require.NoError(t, a.SelectRegion(ctx, domain.KindCounty, "Butte"))

	assert.Equal(t, domain.KindCounty, a.View().Selection.Kind)
	assert.Equal(t, domain.KindNone, b.View().Selection.Kind)
}

func TestHolder(t *testing.T) {
	var h Holder
	ctx := context.Background()

	_, ok := h.Get()
	assert.False(t, ok)
	assert.EqualError(t, h.CheckReadiness(ctx), "datasets are still loading")

	loadErr := errors.New("dataset load failure: counties.csv: no such file")
	h.Fail(loadErr)
	assert.Equal(t, loadErr, h.CheckReadiness(ctx))

	d := newHarness(t).d
	h.Set(d)
	got, ok := h.Get()
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.NoError(t, h.CheckReadiness(ctx))
}
