package ingest

import (
	"context"
	"time"

	"dia-relay/backend/app/metrics"

	"github.com/rs/zerolog"
)

// Store persists one batch atomically.
type Store interface {
	SaveBatch(records []Record) error
}

type BatchConfig struct {
	Window      time.Duration
	MaxSize     int
	PollTimeout time.Duration
}

// Persister drains the queue in time- and size-bounded batches.
type Persister struct {
	cfg     BatchConfig
	queue   *Queue
	store   Store
	metrics metrics.Recorder
	log     zerolog.Logger
	now     func() time.Time
}

func NewPersister(cfg BatchConfig, q *Queue, store Store, rec metrics.Recorder, log zerolog.Logger) *Persister {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Second
	}
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Second
	}
	if rec == nil {
		rec = metrics.Noop()
	}
	return &Persister{cfg: cfg, queue: q, store: store, metrics: rec, log: log, now: time.Now}
}

// Collect gathers one batch. It returns when the batch is full, the window
// has elapsed, a poll times out with nothing queued, or ctx ends.
func (p *Persister) Collect(ctx context.Context) []Record {
	var batch []Record
	start := p.now()
	for len(batch) < p.cfg.MaxSize && p.now().Sub(start) < p.cfg.Window {
		r, ok := p.queue.Pop(ctx, p.cfg.PollTimeout)
		if !ok {
			break
		}
		batch = append(batch, r)
	}
	return batch
}

// Flush writes batch. A failed batch is logged and dropped; it is not retried.
func (p *Persister) Flush(batch []Record) error {
	if len(batch) == 0 {
		return nil
	}
	if err := p.store.SaveBatch(batch); err != nil {
		p.metrics.ObserveBatch(len(batch), false)
		p.log.Error().Err(err).Int("size", len(batch)).Msg("batch write failed, records dropped")
		return err
	}
	p.metrics.ObserveBatch(len(batch), true)
	p.log.Debug().Int("size", len(batch)).Msg("batch committed")
	return nil
}

// Run loops until ctx is cancelled, then flushes whatever is still queued.
func (p *Persister) Run(ctx context.Context) {
	p.log.Info().
		Dur("window", p.cfg.Window).
		Int("max_size", p.cfg.MaxSize).
		Msg("batch persister started")
	for {
		if ctx.Err() != nil {
			p.drain()
			p.log.Info().Msg("batch persister stopped")
			return
		}
		_ = p.Flush(p.Collect(ctx))
	}
}

func (p *Persister) drain() {
	rest := p.queue.Drain()
	for len(rest) > 0 {
		n := min(len(rest), p.cfg.MaxSize)
		_ = p.Flush(rest[:n])
		rest = rest[n:]
	}
}
