package types

import (
	"time"
)

// DataKind classifies an uploaded payload.
type DataKind string

const (
	KindUser     DataKind = "user"
	KindProject  DataKind = "project"
	KindIdentity DataKind = "userinfo"
)

// UnknownKey is the grouping key used for records that carry no
// user or project identifier.
const UnknownKey = "unknown"

// TokenUsage holds the token counts reported on a single usage line.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// UsageRecord is one flattened billing line extracted from a time bucket.
// IDs are positional (bucketIndex-itemIndex) so extraction is deterministic.
type UsageRecord struct {
	ID           string     `json:"id"`
	Timestamp    time.Time  `json:"timestamp"`
	Model        string     `json:"model"`
	UserID       string     `json:"user_id,omitempty"`
	ProjectID    string     `json:"project_id,omitempty"`
	Operation    string     `json:"operation"`
	Usage        TokenUsage `json:"usage"`
	Cost         float64    `json:"cost"`
	RequestCount int        `json:"n_requests"`
	RequestID    string     `json:"request_id,omitempty"`
}
