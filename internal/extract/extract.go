// Package extract flattens nested time-bucket usage payloads into a
// uniform record list. Producers of these exports have shipped several
// schema vintages (results vs result keys, amount.value vs bare cost,
// line_item vs model), so every field is probed permissively and
// defaulted rather than rejected.
package extract

import (
	"fmt"
	"time"

	"github.com/hyunseo/orgusage/internal/types"
)

// Records flattens a parsed dataset into usage records, preserving
// bucket order then item order. A payload that is already a flat list
// is passed through. Anything unrecognizable yields an empty slice,
// never an error; per-item strictness belongs to the validator.
func Records(v any) []types.UsageRecord {
	switch data := v.(type) {
	case []types.UsageRecord:
		return data
	case []any:
		return flatRecords(data)
	case map[string]any:
		buckets, ok := data["data"].([]any)
		if !ok {
			return nil
		}
		return bucketRecords(buckets)
	default:
		return nil
	}
}

func bucketRecords(buckets []any) []types.UsageRecord {
	var records []types.UsageRecord

	for bucketIdx, b := range buckets {
		bucket, ok := b.(map[string]any)
		if !ok {
			continue
		}

		// 2025 exports use "results", older ones "result".
		items, ok := bucket["results"].([]any)
		if !ok {
			items, ok = bucket["result"].([]any)
		}
		if !ok {
			continue
		}

		for itemIdx, it := range items {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			records = append(records, recordFromItem(item, bucket, bucketIdx, itemIdx))
		}
	}

	return records
}

// flatRecords handles payloads whose top level is already an extracted
// record array rather than a bucket list.
func flatRecords(items []any) []types.UsageRecord {
	var records []types.UsageRecord

	for i, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rec := recordFromItem(item, nil, 0, i)
		if id := stringField(item, "id"); id != "" {
			rec.ID = id
		}
		if ts := stringField(item, "timestamp"); ts != "" {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				rec.Timestamp = parsed.UTC()
			}
		}
		records = append(records, rec)
	}

	return records
}

func recordFromItem(item, bucket map[string]any, bucketIdx, itemIdx int) types.UsageRecord {
	rec := types.UsageRecord{
		ID:           fmt.Sprintf("%d-%d", bucketIdx, itemIdx),
		RequestID:    fmt.Sprintf("req_%d_%d", bucketIdx, itemIdx),
		Operation:    "completion",
		RequestCount: 1,
	}

	// Item-level window start wins, then the bucket window, then now.
	if ts, ok := numberField(item, "start_time"); ok {
		rec.Timestamp = time.Unix(int64(ts), 0).UTC()
	} else if ts, ok := numberField(bucket, "start_time"); ok {
		rec.Timestamp = time.Unix(int64(ts), 0).UTC()
	} else {
		rec.Timestamp = time.Now().UTC()
	}

	rec.Model = stringField(item, "line_item")
	if rec.Model == "" {
		rec.Model = stringField(item, "model")
	}
	if rec.Model == "" {
		rec.Model = types.UnknownKey
	}

	rec.UserID = stringField(item, "user_id")
	rec.ProjectID = stringField(item, "project_id")

	if op := stringField(item, "operation"); op != "" {
		rec.Operation = op
	}

	if usage, ok := item["usage"].(map[string]any); ok {
		if n, ok := numberField(usage, "prompt_tokens"); ok {
			rec.Usage.PromptTokens = int(n)
		}
		if n, ok := numberField(usage, "completion_tokens"); ok {
			rec.Usage.CompletionTokens = int(n)
		}
		if n, ok := numberField(usage, "total_tokens"); ok {
			rec.Usage.TotalTokens = int(n)
		}
	}

	// Structured amount.value is the modern shape; the bare cost field
	// only applies when no amount value is present.
	costSet := false
	if amount, ok := item["amount"].(map[string]any); ok {
		if v, ok := numberField(amount, "value"); ok {
			rec.Cost = v
			costSet = true
		}
	}
	if !costSet {
		if c, ok := numberField(item, "cost"); ok {
			rec.Cost = c
		}
	}

	if n, ok := numberField(item, "n_requests"); ok && n >= 1 {
		rec.RequestCount = int(n)
	}

	return rec
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func numberField(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	if n, ok := m[key].(float64); ok {
		return n, true
	}
	return 0, false
}
