// Package migrate provides the migrate command, which copies a SQLite
// database into the configured database.
package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/datastore"
	"github.com/sheriffhq/sheriff/internal/logger"
)

// Command creates and returns the migrate command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		sqlitePath string
		opts       datastore.TransferOptions
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy a SQLite database into the configured database",
		Long: `Migrate reads every project, category, asset, annotation and dataset version
from a SQLite file and writes them to the database selected in the config,
typically MySQL. Original IDs are preserved and existing rows are skipped, so
an interrupted migration can be rerun.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if settings.Database.Type == conf.DatabaseSQLite && settings.Database.SQLite.Path == sqlitePath {
				return fmt.Errorf("source and target are the same database: %s", sqlitePath)
			}
			if _, err := os.Stat(sqlitePath); err != nil {
				return fmt.Errorf("sqlite database not found: %w", err)
			}

			sourceSettings := *settings
			sourceSettings.Database.Type = conf.DatabaseSQLite
			sourceSettings.Database.SQLite.Path = sqlitePath

			source, err := openStore(&sourceSettings)
			if err != nil {
				return err
			}
			defer closeStore(source)

			target, err := openStore(settings)
			if err != nil {
				return err
			}
			defer closeStore(target)

			stats, err := datastore.Transfer(cmd.Context(), source, target, opts)
			if stats != nil {
				stats.Print(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			if failed := stats.Failed(); failed > 0 {
				return fmt.Errorf("%d rows could not be written", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", "", "Path to the source SQLite database")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", datastore.DefaultTransferBatchSize, "Rows per insert batch")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Delete all target rows before copying")
	_ = cmd.MarkFlagRequired("sqlite-path")

	return cmd
}

func openStore(settings *conf.Settings) (datastore.Interface, error) {
	ds := datastore.New(settings)
	if ds == nil {
		return nil, fmt.Errorf("unsupported database type: %s", settings.Database.Type)
	}
	if err := ds.Open(); err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", settings.Database.Type, err)
	}
	return ds, nil
}

func closeStore(ds datastore.Interface) {
	if err := ds.Close(); err != nil {
		logger.Global().Module("migrate").Error("failed to close database", logger.Error(err))
	}
}
