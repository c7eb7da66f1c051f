package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"rewards/internal/core"
	"rewards/internal/ports"
)

// Ensure interface conformance
var _ ports.TransactionSource = (*Client)(nil)

// Client reads transactions from a single sheet laid out as
// id | customer_id | customer_name | amount | date, with a header in row 1.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	// Rows are re-read at most once per snapshotTTL so a batch over every
	// customer costs one API call instead of one per customer.
	snapshotTTL time.Duration
	mu          sync.Mutex
	snapshot    []core.Transaction
	snapshotAt  time.Time
	now         func() time.Time
}

type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
	SnapshotTTL        time.Duration
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS
// Optional: GOOGLE_SHEET_NAME (default "Transactions")
func NewFromEnv(ctx context.Context) (*Client, error) {
	return NewFromConfig(ctx, Config{
		SpreadsheetID:      os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:          os.Getenv("GOOGLE_SHEET_NAME"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
}

func NewFromConfig(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID, "sheet", cfg.SheetName)
	c := NewWithService(svc, spreadsheetID, cfg.SheetName)
	if cfg.SnapshotTTL > 0 {
		c.snapshotTTL = cfg.SnapshotTTL
	}
	return c, nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		snapshotTTL:   30 * time.Second,
		now:           time.Now,
	}
}

func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm between reads.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// FindTransactions implements ports.TransactionSource
func (c *Client) FindTransactions(ctx context.Context, customerID int64, r *core.DateRange) ([]core.Transaction, error) {
	all, err := c.transactions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.Transaction, 0)
	for _, tx := range all {
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

// DistinctCustomerIDs implements ports.TransactionSource
func (c *Client) DistinctCustomerIDs(ctx context.Context) ([]int64, error) {
	all, err := c.transactions(ctx)
	if err != nil {
		return nil, err
	}
	return distinctCustomers(all), nil
}

// Ping checks that the spreadsheet is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	return nil
}

// Invalidate forces the next read to hit the API.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.snapshotAt = time.Time{}
}

func (c *Client) transactions(ctx context.Context) ([]core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && c.now().Sub(c.snapshotAt) < c.snapshotTTL {
		return c.snapshot, nil
	}

	txs, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	c.snapshot = txs
	c.snapshotAt = c.now()
	return txs, nil
}

func (c *Client) readAll(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A2:E", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	txs, skipped := parseRows(resp.Values)
	for _, s := range skipped {
		slog.WarnContext(ctx, "Skipping malformed sheet row",
			"sheet", c.sheetName,
			"row", s.Row,
			"error", s.Err)
	}
	slog.DebugContext(ctx, "Transactions read from sheet",
		"sheet", c.sheetName,
		"rows", len(resp.Values),
		"transactions", len(txs),
		"skipped", len(skipped))
	return txs, nil
}
