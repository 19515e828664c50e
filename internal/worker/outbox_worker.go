package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/finsend/transfer-service/internal/events"
	"github.com/finsend/transfer-service/internal/observability"
	"github.com/finsend/transfer-service/internal/repository"
	"go.uber.org/zap"
)

// OutboxWorker relays persisted domain events to the message broker.
// It polls the transfer_events outbox at regular intervals and publishes
// pending rows. Safe for concurrent instances thanks to FOR UPDATE SKIP LOCKED.
type OutboxWorker struct {
	store        repository.OutboxStore
	publisher    events.Publisher
	logger       *zap.Logger
	pollInterval time.Duration
	batchSize    int32
	stopCh       chan struct{}
}

func NewOutboxWorker(store repository.OutboxStore, publisher events.Publisher, logger *zap.Logger) *OutboxWorker {
	return &OutboxWorker{
		store:        store,
		publisher:    publisher,
		logger:       logger,
		pollInterval: 5 * time.Second,
		batchSize:    50,
		stopCh:       make(chan struct{}),
	}
}

// WithPollInterval sets the poll interval for the worker.
func (w *OutboxWorker) WithPollInterval(interval time.Duration) *OutboxWorker {
	w.pollInterval = interval
	return w
}

// WithBatchSize sets the batch size for the worker.
func (w *OutboxWorker) WithBatchSize(size int32) *OutboxWorker {
	w.batchSize = size
	return w
}

// Start runs the relay loop until Stop is called or the context is canceled.
func (w *OutboxWorker) Start(ctx context.Context) {
	w.logger.Info("outbox relay starting",
		zap.Duration("interval", w.pollInterval), zap.Int32("batch", w.batchSize))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox relay stopping, context canceled")
			return
		case <-w.stopCh:
			w.logger.Info("outbox relay stopping")
			return
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				observability.IncrementOutboxRelayRun("error")
				w.logger.Error("outbox relay run failed", zap.Error(err))
			} else {
				observability.IncrementOutboxRelayRun("ok")
			}
		}
	}
}

// Stop signals the worker to stop.
func (w *OutboxWorker) Stop() {
	close(w.stopCh)
}

// Run starts the worker in a goroutine and returns its stop function.
func (w *OutboxWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

// ProcessOnce drains a single batch of pending events. Publish failures are
// recorded per event and retried on the next run; one bad event does not
// block the batch.
func (w *OutboxWorker) ProcessOnce(ctx context.Context) error {
	pending, err := w.store.PendingEvents(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("load pending events: %w", err)
	}

	for _, ev := range pending {
		if err := w.publisher.Publish(ctx, ev.Kind, ev.Payload); err != nil {
			w.logger.Warn("event publish failed",
				zap.String("event_id", ev.ID.String()),
				zap.String("kind", ev.Kind),
				zap.Error(err))
			if markErr := w.store.MarkFailed(ctx, ev.ID, err.Error()); markErr != nil {
				return fmt.Errorf("mark event failed: %w", markErr)
			}
			continue
		}
		if err := w.store.MarkPublished(ctx, ev.ID); err != nil {
			return fmt.Errorf("mark event published: %w", err)
		}
	}
	return nil
}
