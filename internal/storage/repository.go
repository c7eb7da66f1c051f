package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"rewards/internal/core"
	"rewards/internal/ports"

	_ "modernc.org/sqlite"
)

var (
	_ ports.TransactionSource = (*SQLiteRepository)(nil)
	_ ports.TransactionWriter = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FindTransactions implements ports.TransactionSource
func (r *SQLiteRepository) FindTransactions(ctx context.Context, customerID int64, dr *core.DateRange) ([]core.Transaction, error) {
	var (
		rows []Transaction
		err  error
	)
	if dr == nil {
		rows, err = r.queries.ListTransactionsByCustomer(ctx, customerID)
	} else {
		rows, err = r.queries.ListTransactionsByCustomerBetween(ctx, ListTransactionsByCustomerBetweenParams{
			CustomerID: customerID,
			StartDate:  dr.Start.String(),
			EndDate:    dr.End.String(),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions for customer %d: %w", customerID, err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			return nil, fmt.Errorf("decode transaction %d: %w", row.TransactionID, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// DistinctCustomerIDs implements ports.TransactionSource
func (r *SQLiteRepository) DistinctCustomerIDs(ctx context.Context) ([]int64, error) {
	ids, err := r.queries.ListDistinctCustomerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customer ids: %w", err)
	}
	return ids, nil
}

// SaveTransaction implements ports.TransactionWriter
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := r.queries.UpsertTransaction(ctx, upsertParams(tx)); err != nil {
		return fmt.Errorf("upsert transaction %d: %w", tx.ID, err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"transaction_id", tx.ID,
		"customer_id", tx.CustomerID,
		"amount", tx.Amount.String(),
		"date", tx.Date.String())
	return nil
}

// SaveTransactions writes txs atomically; one invalid row rolls back the batch.
func (r *SQLiteRepository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	q := r.queries.WithTx(sqlTx)
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", tx.ID, err)
		}
		if err := q.UpsertTransaction(ctx, upsertParams(tx)); err != nil {
			return fmt.Errorf("upsert transaction %d: %w", tx.ID, err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", len(txs))
	return nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func upsertParams(tx core.Transaction) UpsertTransactionParams {
	return UpsertTransactionParams{
		TransactionID:   tx.ID,
		CustomerID:      tx.CustomerID,
		CustomerName:    tx.CustomerName,
		Amount:          tx.Amount.String(),
		TransactionDate: tx.Date.String(),
	}
}

func (t Transaction) toCore() (core.Transaction, error) {
	amount, err := core.ParseMoney(t.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", t.Amount, err)
	}
	date, err := core.ParseDate(t.TransactionDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", t.TransactionDate, err)
	}
	return core.Transaction{
		ID:           t.TransactionID,
		CustomerID:   t.CustomerID,
		CustomerName: t.CustomerName,
		Amount:       amount,
		Date:         date,
	}, nil
}
