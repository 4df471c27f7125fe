package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/config"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/plaid"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/Veraticus/spendscore/internal/simplefin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importPlaidCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		days      int
		title     string
	)

	cmd := &cobra.Command{
		Use:   "import-plaid",
		Short: "Fetch transactions from Plaid and score them",
		Long: `Fetch transactions for a date range from a linked Plaid item and store them as a
new report. Requires plaid.client_id, plaid.secret and plaid.access_token in the config
file or the SPENDSCORE_PLAID_* environment variables.`,
		Example: `  spendscore import-plaid --days 30
  spendscore import-plaid --start-date 2024-01-01 --end-date 2024-03-31 --title "Q1"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := parseDateRange(startDate, endDate, days, time.Now())
			if err != nil {
				return err
			}

			plaidCfg, err := config.LoadPlaidConfig(viper.GetViper())
			var client *plaid.Client
			if err == nil {
				client, err = plaid.NewClient(plaidCfg)
			}
			if err != nil {
				return &common.UserError{
					Err:         err,
					UserMessage: "Plaid is not configured; set SPENDSCORE_PLAID_CLIENT_ID, SPENDSCORE_PLAID_SECRET and SPENDSCORE_PLAID_ACCESS_TOKEN",
				}
			}

			return withService(ctx, func(svc *reporting.Service) error {
				report, runErr := runImportFeed(ctx, client, svc, "plaid", start, end, title)
				if runErr != nil {
					return runErr
				}
				printImported(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "first day to fetch (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "last day to fetch (YYYY-MM-DD, default: today)")
	cmd.Flags().IntVar(&days, "days", 30, "days to fetch when --start-date is not given")
	cmd.Flags().StringVarP(&title, "title", "t", "", "report title")

	return cmd
}

func importSimpleFINCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		days      int
		title     string
		token     string
	)

	cmd := &cobra.Command{
		Use:   "import-simplefin",
		Short: "Fetch transactions from SimpleFIN Bridge and score them",
		Long: `Fetch posted transactions for a date range through SimpleFIN Bridge and store them as
a new report. The first run claims a setup token (--token, simplefin.token or
SIMPLEFIN_TOKEN) and saves the resulting access URL for later runs.`,
		Example: `  spendscore import-simplefin --token aHR0cHM6Ly9icmlkZ2Uu...
  spendscore import-simplefin --days 60`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := parseDateRange(startDate, endDate, days, time.Now())
			if err != nil {
				return err
			}

			cfg := config.LoadSimpleFINConfig(viper.GetViper())
			if token != "" {
				cfg.Token = token
			}
			client, err := simplefin.NewClient(ctx, cfg)
			if err != nil {
				return &common.UserError{
					Err:         err,
					UserMessage: "SimpleFIN is not configured; pass --token with a setup token from bridge.simplefin.org",
				}
			}

			return withService(ctx, func(svc *reporting.Service) error {
				report, runErr := runImportFeed(ctx, client, svc, "simplefin", start, end, title)
				if runErr != nil {
					return runErr
				}
				printImported(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "first day to fetch (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "last day to fetch (YYYY-MM-DD, default: today)")
	cmd.Flags().IntVar(&days, "days", 30, "days to fetch when --start-date is not given")
	cmd.Flags().StringVarP(&title, "title", "t", "", "report title")
	cmd.Flags().StringVar(&token, "token", "", "SimpleFIN setup token (only needed once)")

	return cmd
}

// runImportFeed fetches a date range from a bank feed and turns it into a report.
func runImportFeed(ctx context.Context, fetcher plaid.TransactionFetcher, svc *reporting.Service, source string, start, end time.Time, title string) (*model.Report, error) {
	slog.Info("Fetching transactions",
		"source", source,
		"start", start.Format(model.DateLayout),
		"end", end.Format(model.DateLayout))

	transactions, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	if title == "" {
		title = fmt.Sprintf("%s %s to %s", feedName(source), start.Format(model.DateLayout), end.Format(model.DateLayout))
	}

	return svc.Generate(ctx, reporting.Request{
		Title:        title,
		FileFormat:   source,
		Transactions: transactions,
	})
}

func feedName(source string) string {
	switch source {
	case "plaid":
		return "Plaid"
	case "simplefin":
		return "SimpleFIN"
	default:
		return source
	}
}

func printImported(w io.Writer, report *model.Report) {
	fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions into report %s",
		report.TotalTransactions, report.ID)))
	if report.Score != nil {
		fmt.Fprintf(w, "  SpendScore: %.1f (%s)\n", report.Score.OverallScore, report.Score.Tier)
	}
}
