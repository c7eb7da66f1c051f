package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "rewards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustMoney(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseMoney(s)
	require.NoError(t, err)
	return m
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	txs := []core.Transaction{
		{ID: 3, CustomerID: 101, CustomerName: "John Doe", Amount: mustMoney(t, "30.00"), Date: core.NewDate(2024, 3, 20)},
		{ID: 1, CustomerID: 101, CustomerName: "John Doe", Amount: mustMoney(t, "120.50"), Date: core.NewDate(2024, 1, 10)},
		{ID: 2, CustomerID: 101, CustomerName: "John Doe", Amount: mustMoney(t, "75"), Date: core.NewDate(2024, 2, 15)},
		{ID: 4, CustomerID: 102, CustomerName: "Jane Smith", Amount: mustMoney(t, "200"), Date: core.NewDate(2024, 1, 5)},
	}
	require.NoError(t, repo.SaveTransactions(ctx, txs))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	got, err := repo.FindTransactions(ctx, 101, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, int64(3), got[2].ID)
	assert.Equal(t, "120.5", got[0].Amount.String())
	assert.Equal(t, "2024-01-10", got[0].Date.String())
	assert.Equal(t, "John Doe", got[0].CustomerName)

	ids, err := repo.DistinctCustomerIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102}, ids)
}

func TestSQLiteRepositoryDateRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveTransactions(ctx, []core.Transaction{
		{ID: 1, CustomerID: 7, CustomerName: "Ann", Amount: core.MoneyFromInt(60), Date: core.NewDate(2024, 1, 1)},
		{ID: 2, CustomerID: 7, CustomerName: "Ann", Amount: core.MoneyFromInt(60), Date: core.NewDate(2024, 1, 31)},
		{ID: 3, CustomerID: 7, CustomerName: "Ann", Amount: core.MoneyFromInt(60), Date: core.NewDate(2024, 2, 1)},
	}))

	r, err := core.NewDateRange(core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(t, err)

	got, err := repo.FindTransactions(ctx, 7, r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestSQLiteRepositoryUnknownCustomer(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.FindTransactions(context.Background(), 999, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	ids, err := repo.DistinctCustomerIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSQLiteRepositoryUpsertReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := core.Transaction{ID: 1, CustomerID: 5, CustomerName: "Ann", Amount: core.MoneyFromInt(10), Date: core.NewDate(2024, 1, 1)}
	require.NoError(t, repo.SaveTransaction(ctx, tx))
	tx.Amount = core.MoneyFromInt(110)
	tx.CustomerName = "Ann B."
	require.NoError(t, repo.SaveTransaction(ctx, tx))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.FindTransactions(ctx, 5, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "110", got[0].Amount.String())
	assert.Equal(t, "Ann B.", got[0].CustomerName)
}

func TestSQLiteRepositoryRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.SaveTransaction(ctx, core.Transaction{ID: 1})
	assert.Error(t, err)

	good := core.Transaction{ID: 1, CustomerID: 5, CustomerName: "Ann", Amount: core.MoneyFromInt(10), Date: core.NewDate(2024, 1, 1)}
	err = repo.SaveTransactions(ctx, []core.Transaction{good, {ID: 2}})
	assert.Error(t, err)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "batch must roll back")
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}
