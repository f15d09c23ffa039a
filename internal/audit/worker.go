package audit

import (
	"context"
	"log/slog"
	"time"

	"visitgate/internal/platform/kafka"
)

// OutboxWorker drains the audit outbox into Kafka. Entries are published
// at-least-once: a crash between produce and mark re-publishes on restart,
// and consumers dedupe on the event ID.
type OutboxWorker struct {
	store    *PostgresStore
	producer *kafka.Producer
	topic    string
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

func NewOutboxWorker(store *PostgresStore, producer *kafka.Producer, topic string, interval time.Duration, logger *slog.Logger) *OutboxWorker {
	return &OutboxWorker{
		store:    store,
		producer: producer,
		topic:    topic,
		interval: interval,
		batch:    100,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// drain publishes one batch of unpublished entries.
func (w *OutboxWorker) drain(ctx context.Context) error {
	entries, err := w.store.FetchUnpublished(ctx, w.batch)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		key := []byte(entry.ID.String())
		if err := w.producer.Produce(ctx, w.topic, key, entry.Payload); err != nil {
			return err
		}
		if err := w.store.MarkPublished(ctx, entry.ID, time.Now()); err != nil {
			return err
		}
	}
	return nil
}
