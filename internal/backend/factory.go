package backend

import (
	"context"
	"fmt"

	applog "rewards/internal/log"
	"rewards/internal/memory"
	gsheet "rewards/internal/sheets/google"
	"rewards/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.WithComponent(applog.ComponentStorage).Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Type:    SQLiteBackend,
		Source:  repo,
		Writer:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.NewFromConfig(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		SnapshotTTL:        config.GoogleSnapshotTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.WithComponent(applog.ComponentSheets).Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &BackendResult{
		Type:   SheetsBackend,
		Source: cli,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	var (
		store *memory.Store
		err   error
	)
	if config.SeedFile == "" {
		store = memory.New(memory.DefaultTransactions())
	} else if store, err = memory.NewFromFile(config.SeedFile); err != nil {
		return nil, fmt.Errorf("failed to load seed file: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile, "transactions", store.Len())

	return &BackendResult{
		Type:   MemoryBackend,
		Source: store,
		Writer: store,
	}, nil
}
