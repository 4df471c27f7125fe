package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/spendscore/internal/analysis"
	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/importer"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/Veraticus/spendscore/internal/spendscore"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	var (
		format string
		title  string
		save   bool
		asJSON bool
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Score transaction files without importing them",
		Long: `Parse one or more CSV or OFX/QFX exports, merge their transactions and print the
SpendScore with its metric breakdown, spending trends and category totals.

Nothing is written to the database unless --save is given.`,
		Example: `  spendscore analyze statement.csv
  spendscore analyze ~/Downloads/*.qfx --save --title "Q1 spending"
  spendscore analyze revolut.csv --format revolut --json`,
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

			results, err := loadTransactions(ctx, settings, files, fileFormat, quiet || asJSON)
			if err != nil {
				return err
			}
			transactions := importer.Merge(results)
			filename, formatName := describeSource(results)

			if save {
				return withService(ctx, func(svc *reporting.Service) error {
					report, genErr := svc.Generate(ctx, reporting.Request{
						Title:            title,
						OriginalFilename: filename,
						FileFormat:       formatName,
						Transactions:     transactions,
					})
					if genErr != nil {
						return genErr
					}
					return printAnalysis(cmd.OutOrStdout(), report, transactions, asJSON)
				})
			}

			score, err := newEngine(settings).Score(transactions)
			if err != nil {
				return err
			}

			report := &model.Report{
				Title:            title,
				OriginalFilename: filename,
				FileFormat:       formatName,
				Status:           model.ReportCompleted,
				Score:            score,
			}
			if report.Title == "" {
				report.Title = filename
			}
			report.Summarize(transactions)

			return printAnalysis(cmd.OutOrStdout(), report, transactions, asJSON)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format ("+formatList()+")")
	cmd.Flags().StringVarP(&title, "title", "t", "", "report title")
	cmd.Flags().BoolVar(&save, "save", false, "store the result as a report")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	return cmd
}

type analysisOutput struct {
	Report     *model.Report              `json:"report"`
	Trends     analysis.Trends            `json:"trends"`
	Categories analysis.Categories        `json:"categories"`
	Duplicates []spendscore.DuplicatePair `json:"duplicates"`
}

func printAnalysis(w io.Writer, report *model.Report, transactions []model.Transaction, asJSON bool) error {
	trends := analysis.SpendingTrends(transactions)
	categories := analysis.CategoryBreakdown(transactions)
	duplicates := spendscore.FindDuplicates(transactions)
	if duplicates == nil {
		duplicates = []spendscore.DuplicatePair{}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analysisOutput{Report: report, Trends: trends, Categories: categories, Duplicates: duplicates})
	}

	formatter := analysis.NewCLIFormatter()
	fmt.Fprintln(w, formatter.FormatReport(report, &trends, &categories))
	if len(duplicates) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatter.FormatDuplicates(duplicates))
	}
	if report.ID != "" {
		fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Saved report %s", report.ID)))
	}
	return nil
}

func formatList() string {
	var s string
	for i, f := range importer.Formats() {
		if i > 0 {
			s += ", "
		}
		s += string(f)
	}
	return s
}
