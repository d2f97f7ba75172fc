package types

// DateUsage is one calendar day of combined usage.
type DateUsage struct {
	Date     string  `json:"date"`
	Cost     float64 `json:"cost"`
	Requests int     `json:"requests"`
}

// ModelUsage is combined usage for one model. Requests here counts
// extracted records, not the n_requests field; the dashboard views
// depend on that number.
type ModelUsage struct {
	Model    string  `json:"model"`
	Cost     float64 `json:"cost"`
	Requests int     `json:"requests"`
	Tokens   int     `json:"tokens"`
}

// UserUsage is per-user usage from the user dataset.
type UserUsage struct {
	UserID   string  `json:"user_id"`
	UserName string  `json:"user_name"`
	Cost     float64 `json:"cost"`
	Requests int     `json:"requests"`
	Tokens   int     `json:"tokens"`
}

// ProjectUsage is per-project usage from the project dataset.
type ProjectUsage struct {
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Cost        float64 `json:"cost"`
	Requests    int     `json:"requests"`
	Tokens      int     `json:"tokens"`
}

// AggregatedSummary is the full rollup every view consumes. It is
// recomputed wholesale whenever an input changes and never mutated
// in place.
type AggregatedSummary struct {
	TotalCost     float64        `json:"total_cost"`
	TotalRequests int            `json:"total_requests"`
	ActiveUsers   int            `json:"active_users"`
	ByDate        []DateUsage    `json:"usage_by_date"`
	ByModel       []ModelUsage   `json:"usage_by_model"`
	ByUser        []UserUsage    `json:"usage_by_user,omitempty"`
	ByProject     []ProjectUsage `json:"usage_by_project,omitempty"`
}
