package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/couchcryptid/smoke-zone-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Extractor fetches the fire points and wind field for one refresh cycle.
type Extractor interface {
	Extract(ctx context.Context) (domain.Inputs, error)
}

// Computer turns one cycle's inputs into a zone batch.
type Computer interface {
	Compute(ctx context.Context, in domain.Inputs) (domain.ZoneBatch, error)
}

// BatchLoader publishes or stores a computed zone batch.
type BatchLoader interface {
	LoadBatch(ctx context.Context, batch domain.ZoneBatch) error
}

// Options controls scheduling and retry behavior.
type Options struct {
	Interval       time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Clock          clockwork.Clock
}

// Pipeline runs the extract-compute-load cycle on a fixed interval.
type Pipeline struct {
	extractor Extractor
	computer  Computer
	loaders   []BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	ready     atomic.Bool
}

// New creates a Pipeline. Every loader receives every batch, in order.
func New(e Extractor, c Computer, loaders []BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 5 * time.Second
	}
	return &Pipeline{
		extractor: e,
		computer:  c,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

// CheckReadiness returns nil once at least one batch has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not produced any zones yet")
	}
	return nil
}

// Run executes a cycle immediately and then once per interval until the
// context is cancelled. A failed cycle is logged and the next tick retries.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.opts.Interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.opts.Clock.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		if err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("refresh cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RunOnce performs a single extract-compute-load cycle. Compute failures
// abort the cycle without loading anything.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	start := p.opts.Clock.Now()
	p.metrics.RunsTotal.Inc()

	var in domain.Inputs
	err := p.retry(ctx, "extract", func() error {
		var err error
		in, err = p.extractor.Extract(ctx)
		return err
	})
	if err != nil {
		p.metrics.RunFailures.WithLabelValues("extract").Inc()
		return fmt.Errorf("extract: %w", err)
	}
	p.metrics.FiresConsumed.Add(float64(len(in.Fires)))

	batch, err := p.computer.Compute(ctx, in)
	if err != nil {
		p.metrics.RunFailures.WithLabelValues("compute").Inc()
		return fmt.Errorf("compute: %w", err)
	}
	p.metrics.ZonesPerRun.Observe(float64(len(batch.Zones)))

	for _, l := range p.loaders {
		err := p.retry(ctx, "load", func() error {
			return l.LoadBatch(ctx, batch)
		})
		if err != nil {
			p.metrics.RunFailures.WithLabelValues("load").Inc()
			return fmt.Errorf("load: %w", err)
		}
	}

	p.metrics.ZonesProduced.Add(float64(len(batch.Zones)))
	p.metrics.RunDuration.Observe(p.opts.Clock.Since(start).Seconds())
	p.metrics.LastSuccess.Set(float64(p.opts.Clock.Now().Unix()))
	p.ready.Store(true)

	p.logger.Info("zone batch loaded",
		"run_id", batch.RunID,
		"fire_points", batch.FireCount,
		"zones", len(batch.Zones),
	)
	return nil
}

// retry calls fn up to MaxAttempts times with exponential backoff between
// attempts. It gives up early if the context is cancelled.
func (p *Pipeline) retry(ctx context.Context, stage string, fn func() error) error {
	backoff := p.opts.InitialBackoff
	var err error
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil || attempt == p.opts.MaxAttempts {
			break
		}
		p.logger.Warn("stage failed, retrying",
			"stage", stage,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !p.sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, p.opts.MaxBackoff)
	}
	return err
}

func (p *Pipeline) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := p.opts.Clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
