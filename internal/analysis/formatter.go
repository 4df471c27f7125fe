package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/spendscore"
)

var metricLabels = map[spendscore.MetricName]string{
	spendscore.MetricFrequency:         "Frequency",
	spendscore.MetricCategoryDiversity: "Category diversity",
	spendscore.MetricBudgetAdherence:   "Budget adherence",
	spendscore.MetricRedundancy:        "Redundancy",
	spendscore.MetricSpike:             "Spikes",
	spendscore.MetricWasteRatio:        "Waste ratio",
}

const (
	barWidth           = 24
	maxCategoryRows    = 10
	maxTrendRows       = 14
	categoryNameWidth  = 22
	reportIDWidth      = 36
	reportTitleWidth   = 28
	reportStatusWidth  = 11
	reportScoreColumns = 8
)

// CLIFormatter renders scores and reports for the terminal.
type CLIFormatter struct {
	styles *Styles
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{styles: NewStyles()}
}

// FormatScore renders the overall score, the tier and one bar per sub-score.
func (f *CLIFormatter) FormatScore(score *model.SpendScore) string {
	if score == nil {
		return f.styles.Error.Render("No score available")
	}

	tierStyle := f.styles.ForTier(score.Tier)
	headline := tierStyle.Bold(true).Render(fmt.Sprintf("%s SpendScore: %.1f / 100  [%s]",
		tierIcon(score.Tier), score.OverallScore, score.Tier))
	bar := tierStyle.Render(f.styles.RenderProgressBar(score.OverallScore/100, barWidth*2))

	weights := spendscore.Weights()
	lines := []string{f.styles.Subtitle.Render("Metrics")}
	for _, name := range spendscore.MetricNames() {
		value, _ := spendscore.MetricValue(score.Metrics, name)
		style := f.styles.ForScore(value)
		lines = append(lines, fmt.Sprintf("%-20s %s %6.1f  %s",
			metricLabels[name],
			style.Render(f.styles.RenderProgressBar(value/100, barWidth)),
			value,
			f.styles.Subtle.Render(fmt.Sprintf("weight %.0f%%", weights[name]*100))))
	}

	totals := f.styles.Subtle.Render(fmt.Sprintf("%d transactions · $%.2f spent · $%.2f average",
		score.Metrics.TotalTransactions, score.Metrics.TotalSpending, score.Metrics.AverageTransaction))

	return strings.Join([]string{headline, bar, "", strings.Join(lines, "\n"), "", totals}, "\n")
}

// FormatReport renders a stored report with its optional trend and category views.
func (f *CLIFormatter) FormatReport(report *model.Report, trends *Trends, categories *Categories) string {
	if report == nil {
		return f.styles.Error.Render("No report available")
	}

	sections := []string{f.formatHeader(report)}

	switch report.Status {
	case model.ReportCompleted:
		sections = append(sections, f.FormatScore(report.Score))
	case model.ReportFailed:
		sections = append(sections, f.styles.Error.Render("Scoring failed: "+report.ErrorMessage))
	default:
		sections = append(sections, f.styles.Warning.Render("Report is still processing"))
	}

	if trends != nil {
		sections = append(sections, f.FormatTrends(*trends))
	}
	if categories != nil {
		sections = append(sections, f.FormatCategories(*categories))
	}

	return strings.Join(sections, "\n\n")
}

func (f *CLIFormatter) formatHeader(report *model.Report) string {
	lines := []string{f.styles.Title.UnsetMargins().Render("📊 " + report.Title)}
	if report.Description != "" {
		lines = append(lines, report.Description)
	}
	if report.DateRangeStart != nil && report.DateRangeEnd != nil {
		lines = append(lines, f.styles.Subtle.Render(fmt.Sprintf("Period: %s to %s",
			report.DateRangeStart.Format("Jan 2, 2006"), report.DateRangeEnd.Format("Jan 2, 2006"))))
	}
	var meta []string
	if report.ID != "" {
		meta = append(meta, "ID: "+report.ID, "Created: "+report.CreatedAt.Format(time.RFC3339))
	}
	if report.OriginalFilename != "" {
		meta = append(meta, "Source: "+report.OriginalFilename)
	}
	if len(meta) > 0 {
		lines = append(lines, f.styles.Subtle.Render(strings.Join(meta, " · ")))
	}
	return strings.Join(lines, "\n")
}

// FormatTrends renders daily spending, most recent days last.
func (f *CLIFormatter) FormatTrends(t Trends) string {
	title := f.styles.Subtitle.Render("Spending trend: " + trendLabel(t.Trend))
	if t.TotalDays == 0 {
		return title + "\n" + f.styles.Subtle.Render("No spending recorded")
	}

	dates := make([]string, 0, len(t.DailySpending))
	var peak float64
	for d, amount := range t.DailySpending {
		dates = append(dates, d)
		peak = max(peak, amount)
	}
	sort.Strings(dates)
	if len(dates) > maxTrendRows {
		dates = dates[len(dates)-maxTrendRows:]
	}

	lines := []string{title, f.styles.Subtle.Render(fmt.Sprintf("%d days · $%.2f per day on average",
		t.TotalDays, t.AverageDailySpending))}
	for _, d := range dates {
		amount := t.DailySpending[d]
		lines = append(lines, fmt.Sprintf("%s %s $%.2f", d,
			f.styles.Info.Render(f.styles.RenderProgressBar(amount/peak, barWidth)), amount))
	}
	return strings.Join(lines, "\n")
}

// FormatCategories renders the category breakdown table.
func (f *CLIFormatter) FormatCategories(c Categories) string {
	title := f.styles.Subtitle.Render("Spending by category")
	if len(c.Categories) == 0 {
		return title + "\n" + f.styles.Subtle.Render("No spending recorded")
	}

	header := fmt.Sprintf("%-*s %12s %8s %6s", categoryNameWidth, "Category", "Amount", "Share", "Count")
	rows := []string{title, f.styles.TableHeader.Render(header), f.styles.Subtle.Render(strings.Repeat("─", len(header)))}

	limit := min(len(c.Categories), maxCategoryRows)
	for _, cat := range c.Categories[:limit] {
		rows = append(rows, fmt.Sprintf("%-*s %12s %7.1f%% %6d",
			categoryNameWidth, truncate(cat.Name, categoryNameWidth),
			fmt.Sprintf("$%.2f", cat.Amount), cat.Percentage, cat.TransactionCount))
	}
	if len(c.Categories) > limit {
		rows = append(rows, f.styles.Subtle.Render(fmt.Sprintf("... and %d more categories", len(c.Categories)-limit)))
	}
	rows = append(rows, f.styles.Subtle.Render(fmt.Sprintf("Total spending: $%.2f", c.TotalSpending)))

	return strings.Join(rows, "\n")
}

// FormatDuplicates lists transactions that repeat an earlier one within a day at the
// same amount.
func (f *CLIFormatter) FormatDuplicates(pairs []spendscore.DuplicatePair) string {
	title := f.styles.Subtitle.Render(fmt.Sprintf("Likely duplicates (%d)", len(pairs)))
	if len(pairs) == 0 {
		return title + "\n" + f.styles.Subtle.Render("No repeated charges found")
	}

	lines := []string{title}
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("%s  %-*s %10.2f  %s",
			p.Repeated.DateKey(),
			categoryNameWidth, truncate(p.Repeated.Description, categoryNameWidth),
			p.Repeated.Amount,
			f.styles.Subtle.Render("repeats "+p.First.DateKey())))
	}
	return strings.Join(lines, "\n")
}

// FormatReportList renders one line per stored report.
func (f *CLIFormatter) FormatReportList(reports []model.Report) string {
	if len(reports) == 0 {
		return f.styles.Subtle.Render("No reports yet. Import a file with: spendscore import <file>")
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %*s %s",
		reportIDWidth, "ID", reportTitleWidth, "Title", reportStatusWidth, "Status",
		reportScoreColumns, "Score", "Created")
	lines := []string{f.styles.TableHeader.Render(header)}

	for _, r := range reports {
		score, tier := "-", ""
		if r.Score != nil {
			score = fmt.Sprintf("%.1f", r.Score.OverallScore)
			tier = string(r.Score.Tier)
		}
		scoreCell := fmt.Sprintf("%*s", reportScoreColumns, score)
		if tier != "" {
			scoreCell = f.styles.ForTier(r.Score.Tier).Render(scoreCell)
		}
		lines = append(lines, fmt.Sprintf("%-*s %-*s %-*s %s %s",
			reportIDWidth, r.ID,
			reportTitleWidth, truncate(r.Title, reportTitleWidth),
			reportStatusWidth, r.Status,
			scoreCell,
			r.CreatedAt.Format("2006-01-02 15:04")))
	}
	return strings.Join(lines, "\n")
}

func tierIcon(tier model.Tier) string {
	switch tier {
	case model.TierGreen:
		return "🟢"
	case model.TierAmber:
		return "🟠"
	default:
		return "🔴"
	}
}

func trendLabel(d Direction) string {
	switch d {
	case DirectionIncreasing:
		return "↑ increasing"
	case DirectionDecreasing:
		return "↓ decreasing"
	default:
		return "→ stable"
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
