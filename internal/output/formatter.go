package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/hyunseo/orgusage/internal/types"
)

type Formatter struct {
	options FormatterOptions
}

type FormatterOptions struct {
	Format   string // "table", "json", "csv"
	NoColor  bool
	Chart    bool
	MaxWidth int
}

func NewFormatter(opts FormatterOptions) *Formatter {
	if opts.MaxWidth == 0 {
		opts.MaxWidth = 120
	}
	if !opts.NoColor && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		opts.NoColor = true
	}
	return &Formatter{options: opts}
}

// FormatSummary renders the aggregated summary in the configured
// format. A nil summary means no data is loaded yet.
func (f *Formatter) FormatSummary(summary *types.AggregatedSummary) (string, error) {
	if summary == nil {
		return "No usage data loaded.\n", nil
	}

	switch f.options.Format {
	case "json":
		return f.formatJSON(summary)
	case "csv":
		return f.formatCSV(summary), nil
	default:
		return f.formatTables(summary), nil
	}
}

func (f *Formatter) FormatOverages(overages []types.BudgetOverage) (string, error) {
	switch f.options.Format {
	case "json":
		return f.formatJSON(overages)
	default:
		return f.formatOveragesTable(overages), nil
	}
}

func (f *Formatter) FormatJSON(data interface{}) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (f *Formatter) formatJSON(data interface{}) (string, error) {
	return f.FormatJSON(data)
}

// formatCSV flattens the per-user, per-project and per-model views into
// one delimited table tagged by row kind. Costs keep 4 decimals so
// small per-request amounts survive the export.
func (f *Formatter) formatCSV(summary *types.AggregatedSummary) string {
	var output strings.Builder
	writeCSVRow(&output, []string{"Type", "Name/ID", "Cost", "Requests", "Tokens"})

	for _, u := range summary.ByUser {
		writeCSVRow(&output, []string{
			"User",
			u.UserName,
			fmt.Sprintf("%.4f", u.Cost),
			strconv.Itoa(u.Requests),
			strconv.Itoa(u.Tokens),
		})
	}
	for _, p := range summary.ByProject {
		writeCSVRow(&output, []string{
			"Project",
			p.ProjectName,
			fmt.Sprintf("%.4f", p.Cost),
			strconv.Itoa(p.Requests),
			strconv.Itoa(p.Tokens),
		})
	}
	for _, m := range summary.ByModel {
		writeCSVRow(&output, []string{
			"Model",
			m.Model,
			fmt.Sprintf("%.4f", m.Cost),
			strconv.Itoa(m.Requests),
			strconv.Itoa(m.Tokens),
		})
	}

	return output.String()
}

func writeCSVRow(output *strings.Builder, row []string) {
	for i, cell := range row {
		if i > 0 {
			output.WriteString(",")
		}
		if strings.ContainsAny(cell, "\",\n") {
			output.WriteString("\"")
			output.WriteString(strings.ReplaceAll(cell, "\"", "\"\""))
			output.WriteString("\"")
		} else {
			output.WriteString(cell)
		}
	}
	output.WriteString("\n")
}

func (f *Formatter) formatTables(summary *types.AggregatedSummary) string {
	var output strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true)
	summaryStyle := lipgloss.NewStyle().Padding(1)
	if !f.options.NoColor {
		headerStyle = headerStyle.Foreground(lipgloss.Color("205"))
		summaryStyle = summaryStyle.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	}

	output.WriteString(headerStyle.Render("Organization Usage Summary"))
	output.WriteString("\n\n")

	totals := fmt.Sprintf(
		"Total Cost: $%.4f\nTotal Requests: %s\nActive Users: %d",
		summary.TotalCost,
		formatNumber(summary.TotalRequests),
		summary.ActiveUsers,
	)
	output.WriteString(summaryStyle.Render(totals))
	output.WriteString("\n\n")

	if f.options.Chart && len(summary.ByDate) > 1 {
		output.WriteString(DailyCostChart(summary.ByDate, f.options.MaxWidth-20, 10))
		output.WriteString("\n\n")
	}

	if len(summary.ByDate) > 0 {
		output.WriteString(headerStyle.Render("Usage by Date"))
		output.WriteString("\n")
		output.WriteString(dateTable(summary.ByDate))
		output.WriteString("\n")
	}

	if len(summary.ByModel) > 0 {
		output.WriteString(headerStyle.Render("Usage by Model"))
		output.WriteString("\n")
		output.WriteString(modelTable(summary.ByModel))
		output.WriteString("\n")
	}

	if len(summary.ByUser) > 0 {
		output.WriteString(headerStyle.Render("Usage by User"))
		output.WriteString("\n")
		output.WriteString(userTable(summary.ByUser))
		output.WriteString("\n")
	}

	if len(summary.ByProject) > 0 {
		output.WriteString(headerStyle.Render("Usage by Project"))
		output.WriteString("\n")
		output.WriteString(projectTable(summary.ByProject))
		output.WriteString("\n")
	}

	return output.String()
}

func (f *Formatter) formatOveragesTable(overages []types.BudgetOverage) string {
	if len(overages) == 0 {
		return "No budget overages.\n"
	}

	var output strings.Builder
	headerStyle := lipgloss.NewStyle().Bold(true)
	if !f.options.NoColor {
		headerStyle = headerStyle.Foreground(lipgloss.Color("203"))
	}

	output.WriteString(headerStyle.Render("Budget Overages"))
	output.WriteString("\n")
	output.WriteString(overageTable(overages))
	return output.String()
}

func formatNumber(n int) string {
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
