package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
)

// TransactionRecordedMessage announces a purchase to be stored for rewards.
// The amount travels as a decimal string so no precision is lost in transit.
type TransactionRecordedMessage struct {
	TransactionID   int64           `json:"transactionId"`
	CustomerID      int64           `json:"customerId"`
	CustomerName    string          `json:"customerName"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transactionDate"`
	Timestamp       time.Time       `json:"timestamp"`
}

func NewTransactionRecordedMessage(tx core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		TransactionID:   tx.ID,
		CustomerID:      tx.CustomerID,
		CustomerName:    tx.CustomerName,
		Amount:          tx.Amount.Decimal,
		TransactionDate: tx.Date.String(),
		Timestamp:       time.Now().UTC(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Transaction converts the payload into a validated domain transaction.
func (m *TransactionRecordedMessage) Transaction() (core.Transaction, error) {
	date, err := core.ParseDate(m.TransactionDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction date %q: %w", m.TransactionDate, core.ErrInvalidDate)
	}
	tx := core.Transaction{
		ID:           m.TransactionID,
		CustomerID:   m.CustomerID,
		CustomerName: m.CustomerName,
		Amount:       core.Money{Decimal: m.Amount},
		Date:         date,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
