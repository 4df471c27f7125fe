package main

import (
	"fmt"

	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/importer"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var (
		format      string
		title       string
		description string
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transaction files as a scored report",
		Long: `Import one or more CSV or OFX/QFX exports into a new report. The transactions are
stored with the report and scored immediately; a report that cannot be scored is kept
in the failed state so the reason can be inspected later.

Supported CSV layouts are detected from the header row, or forced with --format.`,
		Example: `  spendscore import export.csv --title "March"
  spendscore import ~/Downloads/*.ofx
  spendscore import books.csv --format quickbooks`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			fileFormat, err := resolveFormat(format, settings)
			if err != nil {
				return err
			}

			files, err := collectFiles(args)
			if err != nil {
				return err
			}

			results, err := loadTransactions(ctx, settings, files, fileFormat, quiet)
			if err != nil {
				return err
			}
			filename, formatName := describeSource(results)

			return withService(ctx, func(svc *reporting.Service) error {
				report, genErr := svc.Generate(ctx, reporting.Request{
					Title:            title,
					Description:      description,
					OriginalFilename: filename,
					FileFormat:       formatName,
					Transactions:     importer.Merge(results),
				})
				if genErr != nil {
					if report != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(
							fmt.Sprintf("Report %s marked as failed", report.ID)))
					}
					return genErr
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
					"Imported %d transactions from %d file(s) into report %s",
					report.TotalTransactions, len(results), report.ID)))
				fmt.Fprintf(out, "  SpendScore: %.1f (%s)\n", report.Score.OverallScore, report.Score.Tier)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format ("+formatList()+")")
	cmd.Flags().StringVarP(&title, "title", "t", "", "report title (default: file name)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "report description")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	return cmd
}
