package storage

// Transaction mirrors a row of the transactions table.
type Transaction struct {
	TransactionID   int64
	CustomerID      int64
	CustomerName    string
	Amount          string
	TransactionDate string
}
