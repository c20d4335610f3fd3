package dashboard

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/lru"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/observability"
)

// Sessions keeps the most recently used sessions. The oldest is dropped once
// the capacity is reached.
type Sessions struct {
	cache   *lru.Cache[string, *Session]
	metrics *observability.Metrics
}

// NewSessions creates a store bounded to capacity sessions.
func NewSessions(capacity int, metrics *observability.Metrics) *Sessions {
	s := &Sessions{metrics: metrics}
	s.cache = lru.New(capacity, func(string, *Session) {
		metrics.SessionsEvicted.Inc()
		metrics.SessionsActive.Dec()
	})
	return s
}

// Create starts a new session on d under a fresh random ID.
func (s *Sessions) Create(d *Dashboard) *Session {
	sess := d.NewSession(uuid.NewString())
	s.metrics.SessionsActive.Inc()
	s.cache.Put(sess.ID(), sess)
	return sess
}

// Get returns a live session.
func (s *Sessions) Get(id string) (*Session, bool) {
	return s.cache.Get(id)
}

// Delete ends a session.
func (s *Sessions) Delete(id string) bool {
	if !s.cache.Remove(id) {
		return false
	}
	s.metrics.SessionsActive.Dec()
	return true
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.cache.Len()
}

// Holder publishes the dashboard once loading has finished. Until then the
// service is not ready and session endpoints refuse work.
type Holder struct {
	d   atomic.Pointer[Dashboard]
	err atomic.Pointer[error]
}

// Set makes d available.
func (h *Holder) Set(d *Dashboard) {
	h.d.Store(d)
}

// Fail records why loading failed. The holder stays empty.
func (h *Holder) Fail(err error) {
	h.err.Store(&err)
}

// Get returns the dashboard once loaded.
func (h *Holder) Get() (*Dashboard, bool) {
	d := h.d.Load()
	return d, d != nil
}

// CheckReadiness reports nil once the datasets are loaded.
func (h *Holder) CheckReadiness(_ context.Context) error {
	if h.d.Load() != nil {
		return nil
	}
	if err := h.err.Load(); err != nil {
		return *err
	}
	return errors.New("datasets are still loading")
}
