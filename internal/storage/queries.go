package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*) FROM transactions
`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listDistinctCustomerIDs = `-- name: ListDistinctCustomerIDs :many
SELECT DISTINCT customer_id FROM transactions
ORDER BY customer_id
`

func (q *Queries) ListDistinctCustomerIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listDistinctCustomerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []int64{}
	for rows.Next() {
		var customerID int64
		if err := rows.Scan(&customerID); err != nil {
			return nil, err
		}
		items = append(items, customerID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTransactionsByCustomer = `-- name: ListTransactionsByCustomer :many
SELECT transaction_id, customer_id, customer_name, amount, transaction_date
FROM transactions
WHERE customer_id = ?
ORDER BY transaction_date, transaction_id
`

func (q *Queries) ListTransactionsByCustomer(ctx context.Context, customerID int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByCustomer, customerID)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const listTransactionsByCustomerBetween = `-- name: ListTransactionsByCustomerBetween :many
SELECT transaction_id, customer_id, customer_name, amount, transaction_date
FROM transactions
WHERE customer_id = ?
  AND transaction_date BETWEEN ? AND ?
ORDER BY transaction_date, transaction_id
`

type ListTransactionsByCustomerBetweenParams struct {
	CustomerID int64
	StartDate  string
	EndDate    string
}

func (q *Queries) ListTransactionsByCustomerBetween(ctx context.Context, arg ListTransactionsByCustomerBetweenParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByCustomerBetween, arg.CustomerID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const upsertTransaction = `-- name: UpsertTransaction :exec
INSERT INTO transactions (transaction_id, customer_id, customer_name, amount, transaction_date)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (transaction_id) DO UPDATE SET
    customer_id      = excluded.customer_id,
    customer_name    = excluded.customer_name,
    amount           = excluded.amount,
    transaction_date = excluded.transaction_date,
    updated_at       = CURRENT_TIMESTAMP
`

type UpsertTransactionParams struct {
	TransactionID   int64
	CustomerID      int64
	CustomerName    string
	Amount          string
	TransactionDate string
}

func (q *Queries) UpsertTransaction(ctx context.Context, arg UpsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, upsertTransaction,
		arg.TransactionID,
		arg.CustomerID,
		arg.CustomerName,
		arg.Amount,
		arg.TransactionDate,
	)
	return err
}

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.TransactionID,
			&i.CustomerID,
			&i.CustomerName,
			&i.Amount,
			&i.TransactionDate,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
