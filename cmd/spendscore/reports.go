package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spendscore/internal/analysis"
	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/Veraticus/spendscore/internal/service"
	"github.com/Veraticus/spendscore/internal/tui"
	"github.com/spf13/cobra"
)

func reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Browse stored reports",
	}

	cmd.AddCommand(reportsListCmd())
	cmd.AddCommand(reportsShowCmd())
	cmd.AddCommand(reportsTrendsCmd())
	cmd.AddCommand(reportsCategoriesCmd())
	cmd.AddCommand(reportsDuplicatesCmd())
	cmd.AddCommand(reportsDeleteCmd())
	cmd.AddCommand(reportsRegenerateCmd())
	cmd.AddCommand(reportsStatsCmd())

	return cmd
}

func reportsListCmd() *cobra.Command {
	var (
		status string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.ReportFilter{Limit: limit, Offset: offset}
			if status != "" {
				filter.Status = model.ReportStatus(status)
				switch filter.Status {
				case model.ReportProcessing, model.ReportCompleted, model.ReportFailed:
				default:
					return fmt.Errorf("invalid status %q (want processing, completed or failed)", status)
				}
			}

			return withService(cmd.Context(), func(svc *reporting.Service) error {
				reports, err := svc.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), analysis.NewCLIFormatter().FormatReportList(reports))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show reports with this status")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum reports to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "reports to skip")

	return cmd
}

func reportsShowCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a report with its trends and categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withService(ctx, func(svc *reporting.Service) error {
				report, err := svc.Get(ctx, args[0])
				if err != nil {
					return err
				}

				var trends *analysis.Trends
				var categories *analysis.Categories
				if report.TotalTransactions > 0 {
					if trends, err = svc.Trends(ctx, report.ID); err != nil {
						return err
					}
					if categories, err = svc.Categories(ctx, report.ID); err != nil {
						return err
					}
				}

				content := analysis.NewCLIFormatter().FormatReport(report, trends, categories)
				if interactive {
					return tui.ViewReport(ctx, report.Title, content)
				}
				fmt.Fprintln(cmd.OutOrStdout(), content)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "open the report in a scrollable viewer")

	return cmd
}

func reportsTrendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trends <id>",
		Short: "Show daily spending trends for a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withService(ctx, func(svc *reporting.Service) error {
				trends, err := svc.Trends(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), analysis.NewCLIFormatter().FormatTrends(*trends))
				return nil
			})
		},
	}
}

func reportsCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories <id>",
		Short: "Show spending by category for a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withService(ctx, func(svc *reporting.Service) error {
				categories, err := svc.Categories(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), analysis.NewCLIFormatter().FormatCategories(*categories))
				return nil
			})
		},
	}
}

func reportsDuplicatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates <id>",
		Short: "List likely repeated charges in a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withService(ctx, func(svc *reporting.Service) error {
				pairs, err := svc.Duplicates(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), analysis.NewCLIFormatter().FormatDuplicates(pairs))
				return nil
			})
		},
	}
}

func reportsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report and its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withService(ctx, func(svc *reporting.Service) error {
				if err := svc.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted report "+args[0]))
				return nil
			})
		},
	}
}

func reportsRegenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <id>",
		Short: "Re-score a report from its stored transactions",
		Long: `Re-run the SpendScore engine over the transactions stored with a report.
Reports left in processing or marked failed are completed again when scoring succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withService(ctx, func(svc *reporting.Service) error {
				report, err := svc.Regenerate(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Regenerated report "+report.ID))
				fmt.Fprintln(cmd.OutOrStdout(), analysis.NewCLIFormatter().FormatScore(report.Score))
				return nil
			})
		},
	}
}

func reportsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show report counts and the average score of completed reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withService(ctx, func(svc *reporting.Service) error {
				stats, err := svc.Stats(ctx)
				if err != nil {
					return err
				}
				summary, err := svc.Summary(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatStats(stats, summary))
				return nil
			})
		},
	}
}

func formatStats(stats *reporting.Stats, summary *reporting.Summary) string {
	lines := []string{
		fmt.Sprintf("Reports:       %d", stats.Total),
		fmt.Sprintf("  completed:   %d", stats.Completed),
		fmt.Sprintf("  processing:  %d", stats.Processing),
		fmt.Sprintf("  failed:      %d", stats.Failed),
	}
	if summary.TotalReports > 0 {
		lines = append(lines,
			"",
			fmt.Sprintf("Transactions:  %d", summary.TotalTransactions),
			fmt.Sprintf("Average score: %.2f", summary.AverageScore),
		)
		if latest := summary.Latest; latest != nil && latest.Score != nil {
			lines = append(lines, fmt.Sprintf("Latest:        %s (%.1f %s)",
				latest.Title, latest.Score.OverallScore, latest.Score.Tier))
		}
	}
	return cli.RenderBox("SpendScore Reports", strings.Join(lines, "\n"))
}
