package ports

import (
	"context"

	"rewards/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionSource is the read side every backend provides.
	TransactionSource interface {
		// FindTransactions returns the customer's transactions ordered by date
		// then ID, restricted to r when r is non-nil. No match yields an empty
		// slice and a nil error.
		FindTransactions(ctx context.Context, customerID int64, r *core.DateRange) ([]core.Transaction, error)

		// DistinctCustomerIDs returns every customer with at least one
		// transaction, in ascending order.
		DistinctCustomerIDs(ctx context.Context) ([]int64, error)
	}

	// TransactionWriter persists transactions. Saving an existing ID replaces it.
	TransactionWriter interface {
		SaveTransaction(ctx context.Context, tx core.Transaction) error
	}
)
