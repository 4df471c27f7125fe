package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/config"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/Veraticus/spendscore/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportCmd() *cobra.Command {
	var spreadsheetName string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a completed report to Google Sheets",
		Long: `Write a report's score summary, category breakdown and transactions to a Google
Sheets spreadsheet. Authenticate with a service account (sheets.service_account_path)
or OAuth credentials (sheets.client_id, sheets.client_secret, sheets.refresh_token).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return err
			}
			if spreadsheetName != "" {
				sheetsCfg.SpreadsheetName = spreadsheetName
			}

			return withService(ctx, func(svc *reporting.Service) error {
				report, getErr := svc.Get(ctx, args[0])
				if getErr != nil {
					return getErr
				}
				if report.Status != model.ReportCompleted {
					return fmt.Errorf("report %s is %s; only completed reports can be exported", report.ID, report.Status)
				}

				transactions, getErr := svc.Transactions(ctx, report.ID)
				if getErr != nil {
					return getErr
				}

				writer, getErr := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
				if getErr != nil {
					return getErr
				}

				url, getErr := writer.Write(ctx, report, transactions)
				if getErr != nil {
					return fmt.Errorf("failed to export report: %w", getErr)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported report to "+url))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&spreadsheetName, "spreadsheet", "", "spreadsheet name to create or reuse")

	return cmd
}
