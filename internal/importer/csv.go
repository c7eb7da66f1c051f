package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"rewards/internal/core"
)

// Columns of a transaction export, in order.
const (
	colTransactionID = iota
	colCustomerID
	colCustomerName
	colAmount
	colDate
	numFields
)

var header = []string{"transaction_id", "customer_id", "customer_name", "amount", "transaction_date"}

// ParseFile reads a transaction CSV from path.
func ParseFile(path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a CSV with a header row and returns validated transactions.
// Any malformed row fails the whole import with its 1-based line number.
func Parse(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	txs := make([]core.Transaction, 0, len(records)-1)
	seen := make(map[int64]int, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		tx, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if prev, dup := seen[tx.ID]; dup {
			return nil, fmt.Errorf("row %d: transaction id %d already used on row %d", line, tx.ID, prev)
		}
		seen[tx.ID] = line
		txs = append(txs, tx)
	}
	return txs, nil
}

func checkHeader(rec []string) error {
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), want) {
			return fmt.Errorf("unexpected header %q in column %d, want %q", rec[i], i+1, want)
		}
	}
	return nil
}

func parseRow(rec []string) (core.Transaction, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rec[colTransactionID]), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parsing transaction id %q: %w", rec[colTransactionID], err)
	}
	customerID, err := strconv.ParseInt(strings.TrimSpace(rec[colCustomerID]), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parsing customer id %q: %w", rec[colCustomerID], err)
	}
	amount, err := core.ParseMoney(rec[colAmount])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}
	date, err := core.ParseDate(rec[colDate])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}

	tx := core.Transaction{
		ID:           id,
		CustomerID:   customerID,
		CustomerName: strings.TrimSpace(rec[colCustomerName]),
		Amount:       amount,
		Date:         date,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
