package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"rewards/internal/amqp"
	"rewards/internal/core"
)

// Ingester stores a transaction received from the queue.
type Ingester interface {
	Ingest(ctx context.Context, tx core.Transaction) error
}

// Consumer feeds decoded transactions to a handler until ctx ends.
type Consumer interface {
	ConsumeTransactions(ctx context.Context, handler amqp.TransactionHandler) error
}

// IngestWorker moves TransactionRecorded messages into the transaction store.
type IngestWorker struct {
	consumer      Consumer
	ingester      Ingester
	statsInterval time.Duration

	processed atomic.Int64
	failed    atomic.Int64
}

func NewIngestWorker(consumer Consumer, ingester Ingester, statsInterval time.Duration) *IngestWorker {
	return &IngestWorker{
		consumer:      consumer,
		ingester:      ingester,
		statsInterval: statsInterval,
	}
}

// HandleTransaction processes a single transaction message from AMQP
func (w *IngestWorker) HandleTransaction(ctx context.Context, tx core.Transaction) error {
	if err := w.ingester.Ingest(ctx, tx); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("ingest transaction %d: %w", tx.ID, err)
	}
	w.processed.Add(1)
	return nil
}

// Run consumes until ctx is cancelled. Cancellation is a clean stop.
func (w *IngestWorker) Run(ctx context.Context) error {
	if w.statsInterval > 0 {
		go w.reportStats(ctx)
	}

	slog.InfoContext(ctx, "Ingest worker started")
	err := w.consumer.ConsumeTransactions(ctx, w.HandleTransaction)
	processed, failed := w.Stats()
	slog.InfoContext(ctx, "Ingest worker stopped", "processed", processed, "failed", failed)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Stats returns how many messages were stored and how many failed.
func (w *IngestWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

func (w *IngestWorker) reportStats(ctx context.Context) {
	ticker := time.NewTicker(w.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, failed := w.Stats()
			slog.InfoContext(ctx, "Ingest worker stats", "processed", processed, "failed", failed)
		}
	}
}
