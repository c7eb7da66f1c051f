package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rewards/internal/amqp"
	"rewards/internal/core"
	"rewards/internal/importer"
	applog "rewards/internal/log"
	"rewards/internal/services"
	"rewards/internal/storage"
)

func newImportCommand(root *rootOptions) *cobra.Command {
	var (
		publish bool
		atomic  bool
		dbPath  string
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Load transactions from a CSV file into SQLite or onto the queue",
		Long: "Reads rows of transaction_id,customer_id,customer_name,amount,transaction_date.\n" +
			"By default rows are upserted into the SQLite store one by one; --atomic stores\n" +
			"them in a single database transaction and --publish sends them to AMQP for the\n" +
			"ingest worker instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := importer.ParseFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.SQLiteDBPath
			}

			logger := root.logger.With(applog.FieldOperation, applog.OpImport, "file", args[0])
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var n int
			switch {
			case publish:
				client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
				if err != nil {
					return fmt.Errorf("connect to AMQP: %w", err)
				}
				defer client.Close()
				if err := client.Ping(ctx); err != nil {
					return fmt.Errorf("AMQP broker not ready: %w", err)
				}
				n, err = services.NewTransactionService(nil, client).PublishAll(ctx, txs)
				if err != nil {
					return err
				}
				logger.Info("Transactions published", applog.FieldTransactions, n)
			default:
				repo, err := storage.NewSQLiteRepository(dbPath)
				if err != nil {
					return err
				}
				defer repo.Close()

				if atomic {
					if err := repo.SaveTransactions(ctx, txs); err != nil {
						return err
					}
					n = len(txs)
				} else {
					svc := services.NewTransactionService(repo, nil)
					svc.OnSaved(func(ctx context.Context, tx core.Transaction) {
						logger.DebugContext(ctx, "Row imported", applog.FieldTransactionID, tx.ID)
					})
					if n, err = svc.IngestAll(ctx, txs); err != nil {
						return fmt.Errorf("imported %d of %d rows: %w", n, len(txs), err)
					}
				}
				logger.Info("Transactions imported", applog.FieldTransactions, n, "db", dbPath)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d transactions processed\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "publish rows to AMQP instead of writing SQLite")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "store all rows in one database transaction")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (defaults to SQLITE_DB_PATH)")
	cmd.MarkFlagsMutuallyExclusive("publish", "atomic")

	return cmd
}
