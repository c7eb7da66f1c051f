package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rewards/internal/config"
	applog "rewards/internal/log"
	"rewards/internal/storage"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = config.Load().SQLiteDBPath
			}
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return fmt.Errorf("create db directory: %w", err)
			}
			if err := storage.RunMigrations(dbPath); err != nil {
				return err
			}
			root.logger.Info("Migrations applied", applog.FieldOperation, applog.OpMigrate, "db", dbPath)
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied to %s\n", dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (defaults to SQLITE_DB_PATH)")
	return cmd
}
