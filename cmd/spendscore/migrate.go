package main

import (
	"fmt"

	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply any pending schema migrations to the report database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStorage(settings.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status {
				fmt.Fprintf(out, "Database: %s\n", store.Path())
				fmt.Fprintf(out, "Schema version: %d (latest %d)\n", current, storage.ExpectedSchemaVersion)
				if current < storage.ExpectedSchemaVersion {
					fmt.Fprintln(out, cli.FormatWarning("Migrations pending; run 'spendscore migrate'"))
				}
				return nil
			}

			if current >= storage.ExpectedSchemaVersion {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Database is up to date (version %d)", current)))
				return nil
			}

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Migrated database from version %d to %d",
				current, storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show the current schema version without migrating")

	return cmd
}
