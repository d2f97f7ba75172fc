package output

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/hyunseo/orgusage/internal/orgapi"
)

// RateLimitTable renders one project's per-model limits.
func RateLimitTable(limits []orgapi.RateLimit) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Rate Limit ID", "Model", "Requests/min", "Tokens/min"})

	for _, rl := range limits {
		table.Append([]string{
			rl.ID,
			rl.Model,
			strconv.Itoa(rl.MaxRequestsPer1Minute),
			strconv.Itoa(rl.MaxTokensPer1Minute),
		})
	}

	table.Render()
	return buf.String()
}

// AllRateLimitsTable renders the organization-wide sweep, grouped by
// project in stable order.
func AllRateLimitsTable(all map[string][]orgapi.RateLimit) string {
	projectIDs := make([]string, 0, len(all))
	for id := range all {
		projectIDs = append(projectIDs, id)
	}
	sort.Strings(projectIDs)

	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Project", "Model", "Requests/min", "Tokens/min"})

	for _, id := range projectIDs {
		for _, rl := range all[id] {
			table.Append([]string{
				id,
				rl.Model,
				strconv.Itoa(rl.MaxRequestsPer1Minute),
				strconv.Itoa(rl.MaxTokensPer1Minute),
			})
		}
	}

	table.Render()
	return buf.String()
}
