package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rewards/internal/core"
	applog "rewards/internal/log"
	"rewards/internal/ports"
)

// TransactionPublisher announces recorded transactions to other processes.
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, tx core.Transaction) error
}

// TransactionService is the single entry point for new transactions,
// whether they arrive from the queue or from a file import.
type TransactionService struct {
	writer    ports.TransactionWriter
	publisher TransactionPublisher
	onSaved   []func(ctx context.Context, tx core.Transaction)
}

func NewTransactionService(writer ports.TransactionWriter, publisher TransactionPublisher) *TransactionService {
	return &TransactionService{
		writer:    writer,
		publisher: publisher,
	}
}

// OnSaved registers fn to run after every successful Ingest.
func (s *TransactionService) OnSaved(fn func(ctx context.Context, tx core.Transaction)) {
	s.onSaved = append(s.onSaved, fn)
}

// Ingest validates tx and upserts it into the writable store.
func (s *TransactionService) Ingest(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction %d: %w", tx.ID, err)
	}
	if s.writer == nil {
		return errors.New("no writable transaction store configured")
	}
	if err := s.writer.SaveTransaction(ctx, tx); err != nil {
		return fmt.Errorf("save transaction %d: %w", tx.ID, err)
	}

	slog.InfoContext(ctx, "Transaction ingested",
		applog.FieldOperation, applog.OpIngest,
		applog.FieldTransactionID, tx.ID,
		applog.FieldCustomerID, tx.CustomerID,
		"amount", tx.Amount.String(),
		"date", tx.Date.String())

	for _, fn := range s.onSaved {
		fn(ctx, tx)
	}
	return nil
}

// IngestAll ingests txs in order and stops at the first failure, returning
// how many were stored before it.
func (s *TransactionService) IngestAll(ctx context.Context, txs []core.Transaction) (int, error) {
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := s.Ingest(ctx, tx); err != nil {
			return i, err
		}
	}
	return len(txs), nil
}

// PublishAll validates every transaction up front, then publishes each one for
// asynchronous ingestion.
func (s *TransactionService) PublishAll(ctx context.Context, txs []core.Transaction) (int, error) {
	if s.publisher == nil {
		return 0, errors.New("no transaction publisher configured")
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("invalid transaction %d: %w", tx.ID, err)
		}
	}
	for i, tx := range txs {
		if err := s.publisher.PublishTransaction(ctx, tx); err != nil {
			return i, fmt.Errorf("publish transaction %d: %w", tx.ID, err)
		}
	}
	slog.InfoContext(ctx, "Transactions published", applog.FieldOperation, applog.OpPublish, applog.FieldTransactions, len(txs))
	return len(txs), nil
}
