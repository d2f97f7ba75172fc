// Package sample synthesizes datasets in the exact nested-bucket shape
// real exports use, so the rest of the pipeline can be exercised
// without an upload.
package sample

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hyunseo/orgusage/internal/types"
)

var models = []string{"gpt-4", "gpt-3.5-turbo", "gpt-4-turbo", "gpt-4-vision-preview"}

// Dataset generates roughly count records of the given kind spread over
// five weekly buckets. Every item carries both the structured
// amount.value cost and the legacy bare cost field, matching what real
// producers emit, so extraction rules get exercised on both paths.
func Dataset(kind types.DataKind, count int) map[string]any {
	now := time.Now()
	buckets := make([]any, 0, 5)

	for bucketIdx := 0; bucketIdx < 5; bucketIdx++ {
		bucketTime := now.Add(-time.Duration(bucketIdx) * 7 * 24 * time.Hour).Unix()
		itemsInBucket := count/5 + rand.Intn(10)
		items := make([]any, 0, itemsInBucket)

		for i := 0; i < itemsInBucket; i++ {
			model := models[rand.Intn(len(models))]
			promptTokens := rand.Intn(1000) + 100
			completionTokens := rand.Intn(500) + 50
			cost := rand.Float64()*0.1 + 0.001

			item := map[string]any{
				"start_time": float64(bucketTime + int64(rand.Intn(86400))),
				"line_item":  model,
				"model":      model,
				"operation":  "completion",
				"usage": map[string]any{
					"prompt_tokens":     float64(promptTokens),
					"completion_tokens": float64(completionTokens),
					"total_tokens":      float64(promptTokens + completionTokens),
				},
				"amount": map[string]any{
					"value":    cost,
					"currency": "USD",
				},
				"cost":       cost,
				"n_requests": float64(rand.Intn(5) + 1),
			}

			if kind == types.KindProject {
				item["project_id"] = fmt.Sprintf("proj_%d", rand.Intn(5)+1)
			} else {
				item["user_id"] = fmt.Sprintf("user_%d", rand.Intn(10)+1)
			}
			items = append(items, item)
		}

		buckets = append(buckets, map[string]any{
			"start_time": float64(bucketTime),
			"end_time":   float64(bucketTime + 86400),
			"results":    items,
		})
	}

	return map[string]any{"data": buckets}
}

// Identity generates a userinfo mapping matching the user ids Dataset
// emits, so samples of both kinds resolve against each other.
func Identity(count int) map[string]any {
	if count <= 0 || count > 10 {
		count = 10
	}
	users := make(map[string]any, count)
	for i := 1; i <= count; i++ {
		users[fmt.Sprintf("user_%d", i)] = map[string]any{
			"name":  fmt.Sprintf("Sample User %d", i),
			"email": fmt.Sprintf("user%d@example.com", i),
		}
	}
	return users
}
