// Package detect classifies uploaded JSON payloads before anything is
// extracted or aggregated. Detection decides whether bytes look like
// identity data, user usage, or project usage; validation separately
// checks that a payload is plausible for an expected kind.
package detect

import (
	"fmt"

	"github.com/hyunseo/orgusage/internal/types"
)

// How much of the payload gets sampled when classifying. Usage exports
// are homogeneous, so a handful of items is enough evidence.
const (
	sampleBuckets          = 3
	sampleItems            = 5
	validateItemsPerBucket = 3
)

// Classification is the detection result. Ambiguous is set when
// neither identifier kind was seen and user data was assumed; callers
// should surface that guess instead of silently routing.
type Classification struct {
	Kind      types.DataKind
	Ambiguous bool
}

// Detect classifies a parsed JSON value. Identity-shaped data wins over
// usage-shaped data. An error means the value is not a recognizable
// payload of any kind.
func Detect(v any) (Classification, error) {
	if isIdentityShape(v) {
		return Classification{Kind: types.KindIdentity}, nil
	}

	data, ok := v.(map[string]any)
	if !ok {
		return Classification{}, fmt.Errorf("detect: %w: expected an object with a data array", types.ErrInvalidFormat)
	}
	buckets, ok := data["data"].([]any)
	if !ok {
		return Classification{}, fmt.Errorf("detect: %w: missing data array", types.ErrInvalidFormat)
	}

	userHits, projectHits := 0, 0
	for bucketIdx, b := range buckets {
		if bucketIdx >= sampleBuckets {
			break
		}
		for itemIdx, it := range bucketItems(b) {
			if itemIdx >= sampleItems {
				break
			}
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := item["user_id"].(string); ok && s != "" {
				userHits++
			}
			if s, ok := item["project_id"].(string); ok && s != "" {
				projectHits++
			}
		}
	}

	if projectHits > userHits {
		return Classification{Kind: types.KindProject}, nil
	}
	if userHits > 0 {
		return Classification{Kind: types.KindUser}, nil
	}
	return Classification{Kind: types.KindUser, Ambiguous: true}, nil
}

// Validate checks a payload against an expected kind. Identity data is
// accepted unconditionally. Usage data needs a data array whose sampled
// items look like billing lines; an empty data array is valid (a real
// export for a quiet period).
func Validate(v any, kind types.DataKind) error {
	if kind == types.KindIdentity {
		return nil
	}

	data, ok := v.(map[string]any)
	if !ok {
		return types.ValidationError{Kind: kind, Message: "payload is not an object"}
	}
	buckets, ok := data["data"].([]any)
	if !ok {
		return types.ValidationError{Kind: kind, Message: "missing data array"}
	}
	if len(buckets) == 0 {
		return nil
	}

	sampled := 0
	for _, b := range buckets {
		for itemIdx, it := range bucketItems(b) {
			if itemIdx >= validateItemsPerBucket {
				break
			}
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			sampled++
			if plausibleUsageItem(item) {
				return nil
			}
		}
	}

	if sampled == 0 {
		return types.ValidationError{Kind: kind, Message: "no result items found in any bucket"}
	}
	return types.ValidationError{Kind: kind, Message: "no recognizable usage records found"}
}

// plausibleUsageItem applies the loose structural match: some identifier,
// some model identifier, and something cost-bearing. Full schema
// validation is deliberately avoided; export vintages differ too much.
func plausibleUsageItem(item map[string]any) bool {
	hasID := item["user_id"] != nil || item["project_id"] != nil
	hasModel := item["line_item"] != nil || item["model"] != nil
	_, hasCost := item["cost"]
	hasCostBearing := item["amount"] != nil || hasCost || item["usage"] != nil
	return hasID && hasModel && hasCostBearing
}

func bucketItems(b any) []any {
	bucket, ok := b.(map[string]any)
	if !ok {
		return nil
	}
	if items, ok := bucket["results"].([]any); ok {
		return items
	}
	if items, ok := bucket["result"].([]any); ok {
		return items
	}
	return nil
}

func isIdentityShape(v any) bool {
	switch data := v.(type) {
	case []any:
		if len(data) == 0 {
			return false
		}
		for _, it := range data {
			item, ok := it.(map[string]any)
			if !ok {
				return false
			}
			if item["id"] == nil || item["name"] == nil {
				return false
			}
		}
		return true
	case map[string]any:
		if len(data) == 0 {
			return false
		}
		for _, val := range data {
			entry, ok := val.(map[string]any)
			if !ok {
				return false
			}
			if _, ok := entry["name"]; !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// BuildIdentityMap converts identity data in either accepted form
// (an array of {id, name} entries or an id-keyed map) into an
// IdentityMap. Entries without an id are skipped; a missing name falls
// back to email, then to the id itself.
func BuildIdentityMap(v any) types.IdentityMap {
	identity := types.IdentityMap{}

	switch data := v.(type) {
	case []any:
		for _, it := range data {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			id, _ := item["id"].(string)
			if id == "" {
				continue
			}
			info := types.IdentityInfo{}
			info.Name, _ = item["name"].(string)
			info.Email, _ = item["email"].(string)
			info.Organization, _ = item["organization"].(string)
			if info.Name == "" {
				info.Name = info.Email
			}
			if info.Name == "" {
				info.Name = id
			}
			identity[id] = info
		}
	case map[string]any:
		for id, val := range data {
			entry, ok := val.(map[string]any)
			if !ok {
				continue
			}
			info := types.IdentityInfo{}
			info.Name, _ = entry["name"].(string)
			info.Email, _ = entry["email"].(string)
			info.Organization, _ = entry["organization"].(string)
			identity[id] = info
		}
	}

	return identity
}
