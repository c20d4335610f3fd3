// Package pipeline forwards interaction events from sessions to an external
// sink in batches, off the request path.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	drainTimeout   = 5 * time.Second
)

// BatchLoader writes multiple interaction events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.InteractionEvent) error
}

// Publisher queues events without blocking the caller and flushes them to a
// BatchLoader when a batch fills or the flush interval passes.
type Publisher struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	queue         chan domain.InteractionEvent
	batchSize     int
	flushInterval time.Duration
	running       atomic.Bool
}

// New creates a Publisher. The queue holds a few batches' worth of events;
// anything beyond that is dropped.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Publisher {
	batchSize = max(batchSize, 1)
	return &Publisher{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		queue:         make(chan domain.InteractionEvent, batchSize*8),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Publish enqueues ev, dropping it when the queue is full.
func (p *Publisher) Publish(ev domain.InteractionEvent) {
	select {
	case p.queue <- ev:
	default:
		p.metrics.EventsDropped.Inc()
		p.logger.Warn("event queue full, dropping event", "type", ev.Type, "session", ev.SessionID)
	}
}

// Running reports whether Run is active.
func (p *Publisher) Running() bool {
	return p.running.Load()
}

// Run flushes batches until the context is cancelled, then makes one last
// attempt to deliver whatever is still pending.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.metrics.PublisherRunning.Set(1)
	p.running.Store(true)
	defer func() {
		p.running.Store(false)
		p.metrics.PublisherRunning.Set(0)
	}()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.InteractionEvent, 0, p.batchSize)
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err(), "pending", len(batch)+len(p.queue))
			p.drain(ctx, batch)
			return nil
		case ev := <-p.queue:
			batch = append(batch, ev)
			if len(batch) < p.batchSize {
				continue
			}
		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
		}

		if !p.flush(ctx, batch, &backoff) {
			p.drain(ctx, batch)
			return nil
		}
		batch = batch[:0]
	}
}

// flush delivers batch, retrying with exponential backoff. Returns false if
// the publisher should stop.
func (p *Publisher) flush(ctx context.Context, batch []domain.InteractionEvent, backoff *time.Duration) bool {
	for {
		start := time.Now()
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.EventsPublished.Add(float64(len(batch)))
			p.metrics.BatchSize.Observe(float64(len(batch)))
			p.metrics.BatchPublishDuration.Observe(time.Since(start).Seconds())
			*backoff = initialBackoff
			return true
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish batch failed", "error", err, "batch_size", len(batch), "retry_in", *backoff)
		if !p.backoffOrStop(ctx, backoff) {
			return false
		}
	}
}

// drain makes a single bounded attempt to deliver the pending batch and
// anything still queued.
func (p *Publisher) drain(ctx context.Context, batch []domain.InteractionEvent) {
	for pending := true; pending; {
		select {
		case ev := <-p.queue:
			batch = append(batch, ev)
		default:
			pending = false
		}
	}
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := p.loader.LoadBatch(ctx, batch); err != nil {
		p.metrics.PublishErrors.Inc()
		p.metrics.EventsDropped.Add(float64(len(batch)))
		p.logger.Error("final publish failed, events lost", "error", err, "batch_size", len(batch))
		return
	}
	p.metrics.EventsPublished.Add(float64(len(batch)))
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the publisher should stop.
func (p *Publisher) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
