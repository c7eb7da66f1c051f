package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []Transaction {
	return []Transaction{
		{ID: 1, CustomerID: 101, CustomerName: "John Doe", Amount: MoneyFromInt(120), Date: NewDate(2024, 1, 10)},
		{ID: 2, CustomerID: 101, CustomerName: "John Doe", Amount: MoneyFromInt(75), Date: NewDate(2024, 2, 15)},
		{ID: 3, CustomerID: 101, CustomerName: "John Doe", Amount: MoneyFromInt(30), Date: NewDate(2024, 3, 20)},
	}
}

func TestAggregate(t *testing.T) {
	summary, err := Aggregate(101, sampleTransactions())
	require.NoError(t, err)

	assert.Equal(t, int64(101), summary.CustomerID)
	assert.Equal(t, "John Doe", summary.CustomerName)
	assert.Equal(t, int64(115), summary.TotalPoints)
	assert.Equal(t, map[string]int64{"2024-01": 90, "2024-02": 25}, summary.MonthlyRewards)

	require.Len(t, summary.Transactions, 3)
	var points []int64
	var ids []int64
	for _, r := range summary.Transactions {
		points = append(points, r.Points)
		ids = append(ids, r.TransactionID)
	}
	assert.Equal(t, []int64{90, 25, 0}, points)
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Equal(t, "2024-03-20", summary.Transactions[2].Date.String())
	assert.Equal(t, "30", summary.Transactions[2].Amount.String())
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(102, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCustomerNotFound))

	var nf *CustomerNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(102), nf.CustomerID)
	assert.Equal(t, "Customer with ID 102 not found.", err.Error())
}

func TestAggregateSameMonthAccumulates(t *testing.T) {
	txs := []Transaction{
		{ID: 10, CustomerID: 7, CustomerName: "Ann", Amount: MoneyFromInt(60), Date: NewDate(2024, 5, 1)},
		{ID: 11, CustomerID: 7, CustomerName: "Ann", Amount: MoneyFromInt(10), Date: NewDate(2024, 5, 2)},
		{ID: 12, CustomerID: 7, CustomerName: "Ann", Amount: MoneyFromInt(110), Date: NewDate(2024, 5, 31)},
	}
	summary, err := Aggregate(7, txs)
	require.NoError(t, err)
	assert.Equal(t, int64(80), summary.TotalPoints)
	assert.Equal(t, map[string]int64{"2024-05": 80}, summary.MonthlyRewards)
	assert.Len(t, summary.Transactions, 3)
}

func TestAggregateAllZeroPoints(t *testing.T) {
	txs := []Transaction{
		{ID: 1, CustomerID: 3, CustomerName: "Low Spender", Amount: MoneyFromInt(5), Date: NewDate(2024, 1, 1)},
		{ID: 2, CustomerID: 3, CustomerName: "Low Spender", Amount: MoneyFromInt(50), Date: NewDate(2024, 2, 1)},
	}
	summary, err := Aggregate(3, txs)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalPoints)
	assert.NotNil(t, summary.MonthlyRewards)
	assert.Empty(t, summary.MonthlyRewards)
	assert.Len(t, summary.Transactions, 2)
}

func TestAggregateInvariants(t *testing.T) {
	var txs []Transaction
	for i := int64(1); i <= 60; i++ {
		txs = append(txs, Transaction{
			ID:           i,
			CustomerID:   9,
			CustomerName: "Prop",
			Amount:       MoneyFromInt(i * 7 % 180),
			Date:         NewDate(2024, int(i%12)+1, 1),
		})
	}
	summary, err := Aggregate(9, txs)
	require.NoError(t, err)

	var sum, monthly int64
	for _, r := range summary.Transactions {
		sum += r.Points
	}
	for key, v := range summary.MonthlyRewards {
		assert.Positive(t, v, "month %s", key)
		monthly += v
	}
	assert.Equal(t, sum, summary.TotalPoints)
	assert.Equal(t, sum, monthly)
	assert.Len(t, summary.Transactions, len(txs))
}

func TestAggregateNameFromFirstTransaction(t *testing.T) {
	txs := sampleTransactions()
	txs[1].CustomerName = "J. Doe"
	summary, err := Aggregate(101, txs)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", summary.CustomerName)
}
