package types

// Budget is a per-project spend limit.
type Budget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// BudgetOverage reports a project whose spend exceeds its budget.
type BudgetOverage struct {
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Budget      float64 `json:"budget"`
	Spent       float64 `json:"spent"`
	Overage     float64 `json:"overage"`
	Percentage  float64 `json:"percentage"`
}
