package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"rewards/internal/core"
	"rewards/internal/ports"
)

// Ensure interface conformance
var (
	_ ports.TransactionSource = (*Store)(nil)
	_ ports.TransactionWriter = (*Store)(nil)
)

type Store struct {
	mu    sync.RWMutex
	items map[int64]core.Transaction
}

// seedFile is the YAML layout accepted by NewFromFile.
type seedFile struct {
	Transactions []seedTransaction `yaml:"transactions"`
}

type seedTransaction struct {
	ID           int64  `yaml:"id"`
	CustomerID   int64  `yaml:"customer_id"`
	CustomerName string `yaml:"customer_name"`
	Amount       string `yaml:"amount"`
	Date         string `yaml:"date"`
}

func New(txs []core.Transaction) *Store {
	s := &Store{items: make(map[int64]core.Transaction, len(txs))}
	for _, tx := range txs {
		s.items[tx.ID] = tx
	}
	return s
}

// NewFromFile seeds the store from a YAML fixture. A missing file falls back
// to DefaultTransactions; a malformed one is an error.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(DefaultTransactions()), nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	txs, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return New(txs), nil
}

// ParseSeed decodes a YAML fixture into validated transactions.
func ParseSeed(data []byte) ([]core.Transaction, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, err
	}

	txs := make([]core.Transaction, 0, len(seed.Transactions))
	for i, st := range seed.Transactions {
		amount, err := core.ParseMoney(st.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: amount %q: %w", i+1, st.Amount, err)
		}
		date, err := core.ParseDate(st.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: date %q: %w", i+1, st.Date, err)
		}
		tx := core.Transaction{
			ID:           st.ID,
			CustomerID:   st.CustomerID,
			CustomerName: st.CustomerName,
			Amount:       amount,
			Date:         date,
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// DefaultTransactions is the built-in data set used when no seed file exists.
func DefaultTransactions() []core.Transaction {
	tx := func(id, customer int64, name string, amount int64, y, m, d int) core.Transaction {
		return core.Transaction{ID: id, CustomerID: customer, CustomerName: name, Amount: core.MoneyFromInt(amount), Date: core.NewDate(y, m, d)}
	}
	return []core.Transaction{
		tx(1, 101, "John Doe", 120, 2024, 1, 10),
		tx(2, 101, "John Doe", 75, 2024, 2, 15),
		tx(3, 101, "John Doe", 30, 2024, 3, 20),
		tx(4, 102, "Jane Smith", 200, 2024, 1, 5),
		tx(5, 102, "Jane Smith", 51, 2024, 1, 28),
		tx(6, 102, "Jane Smith", 99, 2024, 3, 2),
		tx(7, 103, "Alex Brown", 45, 2024, 2, 14),
		tx(8, 103, "Alex Brown", 101, 2024, 3, 30),
	}
}

func (s *Store) FindTransactions(_ context.Context, customerID int64, r *core.DateRange) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0)
	for _, tx := range s.items {
		if tx.CustomerID != customerID {
			continue
		}
		if r != nil && !r.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}
	core.SortTransactions(out)
	return out, nil
}

func (s *Store) DistinctCustomerIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, tx := range s.items {
		if _, ok := seen[tx.CustomerID]; ok {
			continue
		}
		seen[tx.CustomerID] = struct{}{}
		ids = append(ids, tx.CustomerID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// SaveTransaction stores tx, replacing any transaction with the same ID.
func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tx.ID] = tx
	return nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
