// Package aggregate turns flattened usage records into the summary
// every view renders. Summarize is a pure function of its inputs: the
// whole summary is rebuilt on each call, so readers can swap snapshots
// without locking individual fields.
package aggregate

import (
	"sort"

	"github.com/samber/lo"

	"github.com/hyunseo/orgusage/internal/extract"
	"github.com/hyunseo/orgusage/internal/types"
)

// Inputs are the four values the summary is derived from. UserData and
// ProjectData are parsed dataset payloads (or nil when not loaded).
type Inputs struct {
	UserData    any
	ProjectData any
	Identity    types.IdentityMap
	Projects    types.ProjectNameMap
}

// Summarize builds the aggregated summary. It returns nil when neither
// dataset is loaded, which is distinct from "loaded but all zero".
//
// Request counting differs by dimension: totals, per-user and
// per-project sums weight by n_requests, while per-model and per-date
// requests in ByModel count one per record. Both behaviors are what
// the views were built against and must not be unified.
func Summarize(in Inputs) *types.AggregatedSummary {
	if in.UserData == nil && in.ProjectData == nil {
		return nil
	}

	summary := &types.AggregatedSummary{}
	var combined []types.UsageRecord

	if in.UserData != nil {
		records := extract.Records(in.UserData)
		summary.TotalCost += lo.SumBy(records, recordCost)
		summary.TotalRequests += lo.SumBy(records, recordRequests)

		keys, groups := groupRecords(records, func(r types.UsageRecord) string {
			if r.UserID == "" {
				return types.UnknownKey
			}
			return r.UserID
		})
		for _, key := range keys {
			items := groups[key]
			summary.ByUser = append(summary.ByUser, types.UserUsage{
				UserID:   key,
				UserName: NameOrFallback(key, in.Identity),
				Cost:     lo.SumBy(items, recordCost),
				Requests: lo.SumBy(items, recordRequests),
				Tokens:   lo.SumBy(items, recordTokens),
			})
			if key != types.UnknownKey {
				summary.ActiveUsers++
			}
		}
		combined = append(combined, records...)
	}

	if in.ProjectData != nil {
		records := extract.Records(in.ProjectData)
		summary.TotalCost += lo.SumBy(records, recordCost)
		summary.TotalRequests += lo.SumBy(records, recordRequests)

		keys, groups := groupRecords(records, func(r types.UsageRecord) string {
			if r.ProjectID == "" {
				return types.UnknownKey
			}
			return r.ProjectID
		})
		for _, key := range keys {
			items := groups[key]
			name := key
			if p, ok := in.Projects[key]; ok && p.Name != "" {
				name = p.Name
			}
			summary.ByProject = append(summary.ByProject, types.ProjectUsage{
				ProjectID:   key,
				ProjectName: name,
				Cost:        lo.SumBy(items, recordCost),
				Requests:    lo.SumBy(items, recordRequests),
				Tokens:      lo.SumBy(items, recordTokens),
			})
		}
		combined = append(combined, records...)
	}

	// Date and model views see both datasets together.
	dayKeys, dayGroups := groupRecords(combined, func(r types.UsageRecord) string {
		return r.Timestamp.UTC().Format("2006-01-02")
	})
	sort.Strings(dayKeys)
	for _, day := range dayKeys {
		items := dayGroups[day]
		summary.ByDate = append(summary.ByDate, types.DateUsage{
			Date:     day,
			Cost:     lo.SumBy(items, recordCost),
			Requests: lo.SumBy(items, recordRequests),
		})
	}

	modelKeys, modelGroups := groupRecords(combined, func(r types.UsageRecord) string {
		return r.Model
	})
	for _, model := range modelKeys {
		items := modelGroups[model]
		summary.ByModel = append(summary.ByModel, types.ModelUsage{
			Model:    model,
			Cost:     lo.SumBy(items, recordCost),
			Requests: len(items),
			Tokens:   lo.SumBy(items, recordTokens),
		})
	}

	return summary
}

// Overages reports projects whose spend exceeds their configured
// budget, largest overage first. Projects without a budget are skipped.
func Overages(byProject []types.ProjectUsage, budgets map[string]types.Budget) []types.BudgetOverage {
	var overages []types.BudgetOverage

	for _, p := range byProject {
		budget, ok := budgets[p.ProjectID]
		if !ok || budget.Amount <= 0 || p.Cost <= budget.Amount {
			continue
		}
		over := p.Cost - budget.Amount
		overages = append(overages, types.BudgetOverage{
			ProjectID:   p.ProjectID,
			ProjectName: p.ProjectName,
			Budget:      budget.Amount,
			Spent:       p.Cost,
			Overage:     over,
			Percentage:  over / budget.Amount * 100,
		})
	}

	sort.Slice(overages, func(i, j int) bool {
		return overages[i].Overage > overages[j].Overage
	})

	return overages
}

// groupRecords groups by key, remembering first-occurrence order so
// output sequences are deterministic for identical input.
func groupRecords(records []types.UsageRecord, key func(types.UsageRecord) string) ([]string, map[string][]types.UsageRecord) {
	var order []string
	groups := make(map[string][]types.UsageRecord)

	for _, r := range records {
		k := key(r)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	return order, groups
}

func recordCost(r types.UsageRecord) float64 { return r.Cost }
func recordRequests(r types.UsageRecord) int { return r.RequestCount }
func recordTokens(r types.UsageRecord) int   { return r.Usage.TotalTokens }
