package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"rewards/internal/core"
)

func newFakeSheets(t *testing.T, rows [][]interface{}) (*Client, *atomic.Int32) {
	t.Helper()
	var reads atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/values/") {
			reads.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"range":          "Transactions!A2:E100",
				"majorDimension": "ROWS",
				"values":         rows,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1"})
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return NewWithService(svc, "sheet-1", ""), &reads
}

func TestClientFindTransactions(t *testing.T) {
	c, _ := newFakeSheets(t, [][]interface{}{
		{3, 101, "John Doe", 30, "2024-03-20"},
		{1, 101, "John Doe", 120, "2024-01-10"},
		{2, 101, "John Doe", 75, "2024-02-15"},
		{4, 102, "Jane Smith", 200, "2024-01-05"},
		{"bad", 102, "Jane Smith", 200, "2024-01-05"},
	})
	ctx := context.Background()

	txs, err := c.FindTransactions(ctx, 101, nil)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{txs[0].ID, txs[1].ID, txs[2].ID})

	r, err := core.NewDateRange(core.NewDate(2024, 2, 1), core.NewDate(2024, 12, 31))
	require.NoError(t, err)
	txs, err = c.FindTransactions(ctx, 101, r)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	txs, err = c.FindTransactions(ctx, 999, nil)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)

	ids, err := c.DistinctCustomerIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102}, ids)
}

func TestClientSnapshotReuse(t *testing.T) {
	c, reads := newFakeSheets(t, [][]interface{}{
		{1, 101, "John Doe", 120, "2024-01-10"},
	})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.DistinctCustomerIDs(ctx)
	require.NoError(t, err)
	_, err = c.FindTransactions(ctx, 101, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), reads.Load())

	now = now.Add(time.Minute)
	_, err = c.FindTransactions(ctx, 101, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), reads.Load())

	c.Invalidate()
	_, err = c.FindTransactions(ctx, 101, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), reads.Load())
}

func TestClientPing(t *testing.T) {
	c, _ := newFakeSheets(t, nil)
	assert.NoError(t, c.Ping(context.Background()))

	assert.Error(t, (&Client{}).Ping(context.Background()))
}

func TestNewFromConfigRequiresSpreadsheet(t *testing.T) {
	_, err := NewFromConfig(context.Background(), Config{})
	assert.ErrorContains(t, err, "GOOGLE_SPREADSHEET_ID")
}
