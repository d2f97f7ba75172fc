package extract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunseo/orgusage/internal/types"
)

func parseJSON(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestRecordsBucketShape(t *testing.T) {
	v := parseJSON(t, `{
		"data": [
			{
				"start_time": 1700000000,
				"results": [
					{
						"user_id": "user_1",
						"line_item": "gpt-4",
						"amount": {"value": 0.02, "currency": "USD"},
						"n_requests": 3,
						"usage": {"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150}
					},
					{
						"user_id": "user_2",
						"model": "gpt-3.5-turbo",
						"cost": 0.01
					}
				]
			},
			{
				"start_time": 1700604800,
				"results": [
					{"project_id": "proj_1", "line_item": "gpt-4", "cost": 0.5}
				]
			}
		]
	}`)

	records := Records(v)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "0-0", first.ID)
	assert.Equal(t, "req_0_0", first.RequestID)
	assert.Equal(t, "gpt-4", first.Model)
	assert.Equal(t, "user_1", first.UserID)
	assert.Equal(t, 0.02, first.Cost)
	assert.Equal(t, 3, first.RequestCount)
	assert.Equal(t, 150, first.Usage.TotalTokens)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), first.Timestamp)

	second := records[1]
	assert.Equal(t, "0-1", second.ID)
	assert.Equal(t, "gpt-3.5-turbo", second.Model)
	assert.Equal(t, 0.01, second.Cost)
	assert.Equal(t, 1, second.RequestCount)

	third := records[2]
	assert.Equal(t, "1-0", third.ID)
	assert.Equal(t, "proj_1", third.ProjectID)
}

func TestRecordsFieldResolution(t *testing.T) {
	testCases := []struct {
		desc string
		item string
		want func(t *testing.T, rec types.UsageRecord)
	}{
		{
			desc: "line_item wins over model",
			item: `{"line_item": "gpt-4-turbo", "model": "gpt-4"}`,
			want: func(t *testing.T, rec types.UsageRecord) {
				assert.Equal(t, "gpt-4-turbo", rec.Model)
			},
		},
		{
			desc: "missing model falls back to unknown",
			item: `{"user_id": "user_1"}`,
			want: func(t *testing.T, rec types.UsageRecord) {
				assert.Equal(t, types.UnknownKey, rec.Model)
			},
		},
		{
			desc: "amount value wins over bare cost",
			item: `{"amount": {"value": 0.25}, "cost": 0.99}`,
			want: func(t *testing.T, rec types.UsageRecord) {
				assert.Equal(t, 0.25, rec.Cost)
			},
		},
		{
			desc: "amount without value falls through to bare cost",
			item: `{"amount": {"currency": "USD"}, "cost": 0.99}`,
			want: func(t *testing.T, rec types.UsageRecord) {
				assert.Equal(t, 0.99, rec.Cost)
			},
		},
		{
			desc: "no cost at all defaults to zero",
			item: `{"user_id": "user_1"}`,
			want: func(t *testing.T, rec types.UsageRecord) {
				assert.Equal(t, 0.0, rec.Cost)
			},
		},
		{
			desc: "n_requests below one is ignored",
			item: `{"n_requests": 0}`,
			want: func(t *testing.T, rec types.UsageRecord) {
				assert.Equal(t, 1, rec.RequestCount)
			},
		},
		{
			desc: "item start_time wins over bucket start_time",
			item: `{"start_time": 1700086400}`,
			want: func(t *testing.T, rec types.UsageRecord) {
				assert.Equal(t, time.Unix(1700086400, 0).UTC(), rec.Timestamp)
			},
		},
		{
			desc: "operation default is completion",
			item: `{}`,
			want: func(t *testing.T, rec types.UsageRecord) {
				assert.Equal(t, "completion", rec.Operation)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			v := parseJSON(t, `{"data": [{"start_time": 1700000000, "results": [`+tc.item+`]}]}`)
			records := Records(v)
			require.Len(t, records, 1)
			tc.want(t, records[0])
		})
	}
}

func TestRecordsBucketTimestampFallback(t *testing.T) {
	v := parseJSON(t, `{"data": [{"start_time": 1700000000, "results": [{"cost": 0.1}]}]}`)
	records := Records(v)
	require.Len(t, records, 1)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), records[0].Timestamp)
}

func TestRecordsLegacyResultKey(t *testing.T) {
	v := parseJSON(t, `{"data": [{"result": [{"user_id": "user_1", "cost": 0.1}]}]}`)
	records := Records(v)
	require.Len(t, records, 1)
	assert.Equal(t, "user_1", records[0].UserID)
}

func TestRecordsFlatArray(t *testing.T) {
	v := parseJSON(t, `[
		{"id": "rec_1", "timestamp": "2024-01-15T10:00:00Z", "user_id": "user_1", "model": "gpt-4", "cost": 0.3},
		{"user_id": "user_2", "cost": 0.1}
	]`)

	records := Records(v)
	require.Len(t, records, 2)
	assert.Equal(t, "rec_1", records[0].ID)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), records[0].Timestamp)
	assert.Equal(t, "0-1", records[1].ID)
}

func TestRecordsPassthrough(t *testing.T) {
	in := []types.UsageRecord{{ID: "a", Cost: 1}}
	assert.Equal(t, in, Records(in))
}

func TestRecordsUnrecognizable(t *testing.T) {
	testCases := []struct {
		desc string
		in   any
	}{
		{"nil input", nil},
		{"scalar", 42.0},
		{"object without data", parseJSON(t, `{"foo": "bar"}`)},
		{"data is not an array", parseJSON(t, `{"data": "nope"}`)},
		{"bucket without results", parseJSON(t, `{"data": [{"start_time": 1}]}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Empty(t, Records(tc.in))
		})
	}
}

func TestRecordsDeterministic(t *testing.T) {
	raw := `{"data": [{"start_time": 1700000000, "results": [
		{"user_id": "user_1", "line_item": "gpt-4", "cost": 0.2, "n_requests": 2},
		{"user_id": "user_2", "line_item": "gpt-3.5-turbo", "cost": 0.1}
	]}]}`

	first := Records(parseJSON(t, raw))
	second := Records(parseJSON(t, raw))
	assert.Equal(t, first, second)
}
