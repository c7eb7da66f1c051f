package core

// TransactionReward is the points breakdown for a single transaction.
type TransactionReward struct {
	TransactionID int64
	Amount        Money
	Date          Date
	Points        int64
}

// CustomerRewardSummary aggregates every reward earned by one customer.
type CustomerRewardSummary struct {
	CustomerID   int64
	CustomerName string
	TotalPoints  int64
	// MonthlyRewards maps "YYYY-MM" to the points earned that month.
	// Months where nothing was earned have no entry.
	MonthlyRewards map[string]int64
	Transactions   []TransactionReward
}

// Aggregate builds the reward summary for customerID in a single pass over txs.
//
// txs must already be filtered to the customer and the requested window;
// their order is preserved in the Transactions breakdown. The customer name
// is taken from the first transaction. An empty slice yields a
// *CustomerNotFoundError rather than an empty summary.
func Aggregate(customerID int64, txs []Transaction) (CustomerRewardSummary, error) {
	if len(txs) == 0 {
		return CustomerRewardSummary{}, &CustomerNotFoundError{CustomerID: customerID}
	}

	summary := CustomerRewardSummary{
		CustomerID:     customerID,
		CustomerName:   txs[0].CustomerName,
		MonthlyRewards: make(map[string]int64),
		Transactions:   make([]TransactionReward, 0, len(txs)),
	}

	for _, tx := range txs {
		points := PointsFor(tx.Amount)
		summary.TotalPoints += points
		if points > 0 {
			summary.MonthlyRewards[tx.Date.MonthKey()] += points
		}
		summary.Transactions = append(summary.Transactions, TransactionReward{
			TransactionID: tx.ID,
			Amount:        tx.Amount,
			Date:          tx.Date,
			Points:        points,
		})
	}

	return summary, nil
}
