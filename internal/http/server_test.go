package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards/internal/core"
	applog "rewards/internal/log"
	"rewards/internal/memory"
	"rewards/internal/services"
)

type countingReader struct {
	inner RewardReader
	err   error
	calls atomic.Int32
}

func (c *countingReader) CustomerRewards(ctx context.Context, id int64, r *core.DateRange) (core.CustomerRewardSummary, error) {
	c.calls.Add(1)
	if c.err != nil {
		return core.CustomerRewardSummary{}, c.err
	}
	return c.inner.CustomerRewards(ctx, id, r)
}

func (c *countingReader) AllCustomerRewards(ctx context.Context, r *core.DateRange) ([]core.CustomerRewardSummary, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.AllCustomerRewards(ctx, r)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type brokenSource struct{}

func (brokenSource) FindTransactions(context.Context, int64, *core.DateRange) ([]core.Transaction, error) {
	return nil, errors.New("boom")
}

func (brokenSource) DistinctCustomerIDs(context.Context) ([]int64, error) {
	return []int64{1}, nil
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Rewards == nil {
		opts.Rewards = services.NewRewardService(memory.New(memory.DefaultTransactions()), 2)
	}
	opts.Logger = quietLogger()
	s := NewServer(opts)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCustomerRewardsEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s, "/api/rewards/101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body CustomerRewardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(101), body.CustomerID)
	assert.Equal(t, "John Doe", body.CustomerName)
	assert.Equal(t, int64(115), body.TotalRewardPoints)
	assert.Equal(t, map[string]int64{"2024-01": 90, "2024-02": 25}, body.MonthlyRewards)
	require.Len(t, body.Transactions, 3)
	assert.Equal(t, json.Number("120"), body.Transactions[0].TransactionAmount)
	assert.Equal(t, "2024-01-10", body.Transactions[0].TransactionDate)
	assert.Equal(t, int64(0), body.Transactions[2].TransactionRewardPoints)

	assert.Contains(t, rec.Body.String(), `"transactionAmount":120,`)
}

func TestCustomerRewardsDecimalAmount(t *testing.T) {
	amount, err := core.ParseMoney("120.99")
	require.NoError(t, err)
	store := memory.New([]core.Transaction{
		{ID: 9, CustomerID: 5, CustomerName: "Ann", Amount: amount, Date: core.NewDate(2024, 6, 1)},
	})
	s := newTestServer(t, Options{Rewards: services.NewRewardService(store, 1)})

	rec := get(t, s, "/api/rewards/5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"transactionAmount":120.99`)
	assert.Contains(t, rec.Body.String(), `"totalRewardPoints":90`)
}

func TestCustomerRewardsDateRange(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s, "/api/rewards/101?startDate=2024-01-01&endDate=2024-01-31")
	require.Equal(t, http.StatusOK, rec.Code)
	var body CustomerRewardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(90), body.TotalRewardPoints)
	assert.Len(t, body.Transactions, 1)

	// A single bound is ignored.
	rec = get(t, s, "/api/rewards/101?startDate=2024-03-01")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(115), body.TotalRewardPoints)
}

func TestCustomerRewardsErrors(t *testing.T) {
	s := newTestServer(t, Options{})

	cases := []struct {
		name    string
		target  string
		status  int
		message string
	}{
		{"unknown customer", "/api/rewards/999", http.StatusNotFound, "Customer with ID 999 not found."},
		{"empty window", "/api/rewards/101?startDate=2023-01-01&endDate=2023-12-31", http.StatusNotFound, "Customer with ID 101 not found."},
		{"inverted range", "/api/rewards/101?startDate=2024-03-31&endDate=2024-01-01", http.StatusBadRequest,
			"Invalid date range: startDate (2024-03-31) must be before or equal to endDate (2024-01-01)"},
		{"bad start date", "/api/rewards/101?startDate=2024-13-01&endDate=2024-12-31", http.StatusBadRequest,
			"Invalid startDate '2024-13-01': expected format YYYY-MM-DD"},
		{"bad end date", "/api/rewards/101?startDate=2024-01-01&endDate=31/12/2024", http.StatusBadRequest,
			"Invalid endDate '31/12/2024': expected format YYYY-MM-DD"},
		{"bad customer id", "/api/rewards/abc", http.StatusBadRequest, "Invalid customerId 'abc': must be an integer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, s, tc.target)
			require.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, http.StatusText(tc.status), body.Error)
			assert.Equal(t, tc.message, body.Message)
			assert.NotEmpty(t, body.Timestamp)
		})
	}
}

func TestUnexpectedErrorIs500(t *testing.T) {
	s := newTestServer(t, Options{Rewards: services.NewRewardService(brokenSource{}, 1)})

	rec := get(t, s, "/api/rewards/1")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "An unexpected error occurred: find transactions for customer 1: boom", body.Message)

	rec = get(t, s, "/api/rewards")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAllRewardsEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s, "/api/rewards")
	require.Equal(t, http.StatusOK, rec.Code)
	var body []CustomerRewardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 3)
	assert.Equal(t, int64(101), body[0].CustomerID)
	assert.Equal(t, int64(102), body[1].CustomerID)
	assert.Equal(t, int64(103), body[2].CustomerID)

	// Customer 102 has nothing in February, which fails the whole batch.
	rec = get(t, s, "/api/rewards?startDate=2024-02-01&endDate=2024-02-29")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Customer with ID 102 not found.", decodeError(t, rec).Message)
}

func TestAllRewardsEmptySource(t *testing.T) {
	s := newTestServer(t, Options{Rewards: services.NewRewardService(memory.New(nil), 1)})

	rec := get(t, s, "/api/rewards")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestSummariesAreCached(t *testing.T) {
	reader := &countingReader{inner: services.NewRewardService(memory.New(memory.DefaultTransactions()), 1)}
	s := newTestServer(t, Options{Rewards: reader})

	get(t, s, "/api/rewards/101")
	get(t, s, "/api/rewards/101")
	assert.Equal(t, int32(1), reader.calls.Load())

	get(t, s, "/api/rewards/101?startDate=2024-01-01&endDate=2024-01-31")
	assert.Equal(t, int32(2), reader.calls.Load(), "different window is a different entry")

	get(t, s, "/api/rewards")
	get(t, s, "/api/rewards")
	assert.Equal(t, int32(3), reader.calls.Load())

	s.InvalidateCache()
	get(t, s, "/api/rewards/101")
	assert.Equal(t, int32(4), reader.calls.Load())
}

func TestErrorsAreNotCached(t *testing.T) {
	reader := &countingReader{inner: services.NewRewardService(memory.New(memory.DefaultTransactions()), 1)}
	s := newTestServer(t, Options{Rewards: reader})

	require.Equal(t, http.StatusNotFound, get(t, s, "/api/rewards/999").Code)
	require.Equal(t, http.StatusNotFound, get(t, s, "/api/rewards/999").Code)
	assert.Equal(t, int32(2), reader.calls.Load())
}

func TestHealthAndReadiness(t *testing.T) {
	s := newTestServer(t, Options{Readiness: pingFunc(func(context.Context) error { return nil })})

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = get(t, s, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"ok"`)

	down := newTestServer(t, Options{Readiness: pingFunc(func(context.Context) error { return errors.New("db locked") })})
	rec = get(t, down, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed: db locked")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})
	get(t, s, "/api/rewards/101")
	get(t, s, "/api/rewards/101")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, "http_requests_total 2")
	assert.Contains(t, out, "reward_summaries_computed_total 1")
	assert.Contains(t, out, `cache_hits_total{cache="summary"} 1`)
	assert.Contains(t, out, `cache_entries{cache="summary"} 1`)
}

func TestRoutingErrorsAreJSON(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decodeError(t, rec).Status)

	rec = httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rewards/101", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{RateLimitPerMinute: 2})

	assert.Equal(t, http.StatusOK, get(t, s, "/api/rewards/101").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/rewards/101").Code)
	rec := get(t, s, "/api/rewards/101")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", decodeError(t, rec).Message)

	// Probes are not limited.
	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := get(t, s, "/api/rewards/101")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
