package outbox

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/Arctuition/documenso/internal/core/domain"
	"github.com/Arctuition/documenso/internal/core/ports"
)

// Metrics is the observer interface the dispatcher reports into.
type Metrics interface {
	StartEvent()
	FinishEvent(eventType string, duration time.Duration, err error)
	ObserveOutboxLag(lag time.Duration)
}

// Dispatcher drains pending outbox events to the event publisher. Events are
// written transactionally with the state change they describe; delivery here
// is decoupled and retried, so a publish failure never undoes a signing
// mutation.
type Dispatcher struct {
	store     ports.OutboxStore
	publisher ports.EventPublisher
	logger    *slog.Logger
	metrics   Metrics

	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	limiter      *rate.Limiter
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// PublishRPS caps the publish rate; zero means unlimited.
	PublishRPS   float64
	PublishBurst int
}

func NewDispatcher(
	store ports.OutboxStore,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	metrics Metrics,
	cfg Config,
) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.PublishRPS > 0 {
		burst := cfg.PublishBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.PublishRPS), burst)
	}

	return &Dispatcher{
		store:        store,
		publisher:    publisher,
		logger:       logger,
		metrics:      metrics,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
		limiter:      limiter,
	}
}

// Run polls for pending events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.drainOnce(ctx); err != nil {
				d.logger.Error("outbox_drain_failed", "error", err)
			}
		}
	}
}

// drainOnce publishes one batch. Individual event failures bump the attempt
// counter and leave the event pending for the next pass.
func (d *Dispatcher) drainOnce(ctx context.Context) error {
	events, err := d.store.ListPending(ctx, d.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
		d.dispatchEvent(ctx, event)
	}
	return nil
}

func (d *Dispatcher) dispatchEvent(ctx context.Context, event domain.OutboxEvent) {
	if d.metrics != nil {
		d.metrics.StartEvent()
		d.metrics.ObserveOutboxLag(time.Since(event.CreatedAt))
	}
	start := time.Now()

	err := d.publisher.PublishEvent(ctx, event)
	if d.metrics != nil {
		d.metrics.FinishEvent(string(event.Type), time.Since(start), err)
	}

	if err != nil {
		d.logger.Warn("event_publish_failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"attempts", event.Attempts+1,
			"error", err,
		)
		if markErr := d.store.MarkFailed(ctx, event.ID, d.maxAttempts); markErr != nil {
			d.logger.Error("event_mark_failed", "event_id", event.ID, "error", markErr)
		}
		return
	}

	if err := d.store.MarkDispatched(ctx, event.ID); err != nil {
		// The event will be re-published next pass; consumers must tolerate
		// duplicates.
		d.logger.Error("event_mark_dispatched_failed", "event_id", event.ID, "error", err)
		return
	}

	d.logger.Debug("event_dispatched", "event_id", event.ID, "event_type", event.Type)
}
