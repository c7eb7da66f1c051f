package backend

import (
	"context"
	"time"

	"rewards/internal/ports"
)

// Pinger is implemented by backends that can check their own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is what the rest of the application sees of a backend.
type BackendResult struct {
	Type   BackendType
	Source ports.TransactionSource
	// Writer is nil for read-only backends.
	Writer  ports.TransactionWriter
	Cleanup CleanupFunc
}

// Ping checks the backend, falling back to a customer listing when the
// source has no cheaper probe.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Source.(Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := r.Source.DistinctCustomerIDs(ctx)
	return err
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleSnapshotTTL        time.Duration

	// Memory specific
	SeedFile string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Writable reports whether the backend accepts new transactions.
func (bt BackendType) Writable() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}
