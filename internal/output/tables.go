package output

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/hyunseo/orgusage/internal/types"
)

func newTable(buf *bytes.Buffer) *tablewriter.Table {
	return tablewriter.NewTable(buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignRight},
			},
		}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}

func dateTable(byDate []types.DateUsage) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Date", "Cost (USD)", "Requests"})

	var totalCost float64
	var totalRequests int
	for _, d := range byDate {
		table.Append([]string{
			d.Date,
			fmt.Sprintf("$%.4f", d.Cost),
			formatNumber(d.Requests),
		})
		totalCost += d.Cost
		totalRequests += d.Requests
	}

	table.Footer([]string{
		"Total",
		fmt.Sprintf("$%.4f", totalCost),
		formatNumber(totalRequests),
	})
	table.Render()
	return buf.String()
}

func modelTable(byModel []types.ModelUsage) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Model", "Cost (USD)", "Requests", "Tokens"})

	for _, m := range byModel {
		table.Append([]string{
			truncateString(m.Model, 30),
			fmt.Sprintf("$%.4f", m.Cost),
			formatNumber(m.Requests),
			formatNumber(m.Tokens),
		})
	}

	table.Render()
	return buf.String()
}

func userTable(byUser []types.UserUsage) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"User", "Cost (USD)", "Requests", "Tokens"})

	for _, u := range byUser {
		table.Append([]string{
			truncateString(u.UserName, 30),
			fmt.Sprintf("$%.4f", u.Cost),
			formatNumber(u.Requests),
			formatNumber(u.Tokens),
		})
	}

	table.Render()
	return buf.String()
}

func projectTable(byProject []types.ProjectUsage) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Project", "Cost (USD)", "Requests", "Tokens"})

	for _, p := range byProject {
		table.Append([]string{
			truncateString(p.ProjectName, 30),
			fmt.Sprintf("$%.4f", p.Cost),
			formatNumber(p.Requests),
			formatNumber(p.Tokens),
		})
	}

	table.Render()
	return buf.String()
}

func overageTable(overages []types.BudgetOverage) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Project", "Budget", "Spent", "Over", "Over %"})

	for _, o := range overages {
		table.Append([]string{
			truncateString(o.ProjectName, 30),
			fmt.Sprintf("$%.2f", o.Budget),
			fmt.Sprintf("$%.4f", o.Spent),
			fmt.Sprintf("$%.4f", o.Overage),
			strconv.FormatFloat(o.Percentage, 'f', 1, 64) + "%",
		})
	}

	table.Render()
	return buf.String()
}

// ProjectListTable renders the organization project listing.
func ProjectListTable(projects []types.ProjectInfo) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Project ID", "Name"})

	for _, p := range projects {
		table.Append([]string{p.ID, p.Name})
	}

	table.Render()
	return buf.String()
}
