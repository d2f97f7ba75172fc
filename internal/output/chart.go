package output

import (
	"github.com/guptarohit/asciigraph"

	"github.com/hyunseo/orgusage/internal/types"
)

// DailyCostChart plots the per-day cost series as an ASCII line chart.
func DailyCostChart(byDate []types.DateUsage, width, height int) string {
	if len(byDate) == 0 {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	data := make([]float64, len(byDate))
	for i, d := range byDate {
		data[i] = d.Cost
	}

	caption := byDate[0].Date + " .. " + byDate[len(byDate)-1].Date + " (cost USD/day)"
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
