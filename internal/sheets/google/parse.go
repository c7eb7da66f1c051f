package google

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rewards/internal/core"
)

// firstDataRow is the spreadsheet row number of values[0]; row 1 is the header.
const firstDataRow = 2

// RowError describes a sheet row that could not be turned into a transaction.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// parseRows converts a values matrix into transactions. Blank rows are
// ignored silently; malformed rows are reported and skipped.
func parseRows(values [][]interface{}) ([]core.Transaction, []RowError) {
	txs := make([]core.Transaction, 0, len(values))
	var skipped []RowError
	for i, row := range values {
		cols := toStrings(row)
		if isBlank(cols) {
			continue
		}
		tx, err := parseRow(cols)
		if err != nil {
			skipped = append(skipped, RowError{Row: i + firstDataRow, Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped
}

func parseRow(cols []string) (core.Transaction, error) {
	if len(cols) < 5 {
		return core.Transaction{}, fmt.Errorf("expected 5 columns, got %d", len(cols))
	}

	id, err := parseID(cols[0])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id %q: %w", cols[0], err)
	}
	customerID, err := parseID(cols[1])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("customer id %q: %w", cols[1], err)
	}
	amount, err := core.ParseMoney(cols[3])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", cols[3], err)
	}
	date, err := core.ParseDate(cols[4])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", cols[4], core.ErrInvalidDate)
	}

	tx := core.Transaction{
		ID:           id,
		CustomerID:   customerID,
		CustomerName: cols[2],
		Amount:       amount,
		Date:         date,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

var errNotInteger = errors.New("not an integer")

// parseID accepts "42" and the "42.0" an unformatted numeric cell can render as.
func parseID(s string) (int64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errNotInteger
	}
	return n, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return out
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

func distinctCustomers(txs []core.Transaction) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, tx := range txs {
		if _, ok := seen[tx.CustomerID]; ok {
			continue
		}
		seen[tx.CustomerID] = struct{}{}
		ids = append(ids, tx.CustomerID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
