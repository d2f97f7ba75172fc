package detect

import (
	"encoding/json"
	"testing"

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

func TestDetect(t *testing.T) {
	testCases := []struct {
		desc      string
		raw       string
		kind      types.DataKind
		ambiguous bool
		wantErr   bool
	}{
		{
			desc: "user data",
			raw:  `{"data": [{"results": [{"user_id": "user_1", "cost": 0.1}]}]}`,
			kind: types.KindUser,
		},
		{
			desc: "project data",
			raw:  `{"data": [{"results": [{"project_id": "proj_1", "cost": 0.1}]}]}`,
			kind: types.KindProject,
		},
		{
			desc: "both ids present, user wins ties",
			raw:  `{"data": [{"results": [{"user_id": "u", "project_id": "p"}]}]}`,
			kind: types.KindUser,
		},
		{
			desc: "more project hits than user hits",
			raw: `{"data": [{"results": [
				{"user_id": "u", "project_id": "p1"},
				{"project_id": "p2"}
			]}]}`,
			kind: types.KindProject,
		},
		{
			desc:      "no identifiers assumes user and flags it",
			raw:       `{"data": [{"results": [{"cost": 0.1}]}]}`,
			kind:      types.KindUser,
			ambiguous: true,
		},
		{
			desc:      "empty data array",
			raw:       `{"data": []}`,
			kind:      types.KindUser,
			ambiguous: true,
		},
		{
			desc: "identity array",
			raw:  `[{"id": "user_1", "name": "Alice"}]`,
			kind: types.KindIdentity,
		},
		{
			desc: "identity map",
			raw:  `{"user_1": {"name": "Alice"}, "user_2": {"name": "Bob"}}`,
			kind: types.KindIdentity,
		},
		{
			desc:    "object without data array",
			raw:     `{"foo": "bar"}`,
			wantErr: true,
		},
		{
			desc:    "scalar payload",
			raw:     `42`,
			wantErr: true,
		},
		{
			desc:    "empty array is not identity",
			raw:     `[]`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cls, err := Detect(parseJSON(t, tc.raw))
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.kind, cls.Kind)
			assert.Equal(t, tc.ambiguous, cls.Ambiguous)
		})
	}
}

func TestDetectSamplesOnlyLeadingBuckets(t *testing.T) {
	// Identifiers appearing past the sampled window are not seen.
	raw := `{"data": [
		{"results": [{"cost": 0.1}]},
		{"results": [{"cost": 0.1}]},
		{"results": [{"cost": 0.1}]},
		{"results": [{"project_id": "proj_1"}]}
	]}`

	cls, err := Detect(parseJSON(t, raw))
	require.NoError(t, err)
	assert.Equal(t, types.KindUser, cls.Kind)
	assert.True(t, cls.Ambiguous)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		desc    string
		raw     string
		kind    types.DataKind
		wantErr string
	}{
		{
			desc: "identity is always valid",
			raw:  `"anything"`,
			kind: types.KindIdentity,
		},
		{
			desc: "plausible user data",
			raw:  `{"data": [{"results": [{"user_id": "u", "line_item": "gpt-4", "cost": 0.1}]}]}`,
			kind: types.KindUser,
		},
		{
			desc: "empty data array is a valid quiet period",
			raw:  `{"data": []}`,
			kind: types.KindUser,
		},
		{
			desc: "usage object counts as cost-bearing",
			raw:  `{"data": [{"results": [{"project_id": "p", "model": "gpt-4", "usage": {"total_tokens": 10}}]}]}`,
			kind: types.KindProject,
		},
		{
			desc:    "not an object",
			raw:     `[1, 2]`,
			kind:    types.KindUser,
			wantErr: "payload is not an object",
		},
		{
			desc:    "missing data array",
			raw:     `{"foo": 1}`,
			kind:    types.KindUser,
			wantErr: "missing data array",
		},
		{
			desc:    "buckets without items",
			raw:     `{"data": [{"start_time": 1}, {"start_time": 2}]}`,
			kind:    types.KindUser,
			wantErr: "no result items found in any bucket",
		},
		{
			desc:    "items but none plausible",
			raw:     `{"data": [{"results": [{"user_id": "u"}]}]}`,
			kind:    types.KindUser,
			wantErr: "no recognizable usage records found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			err := Validate(parseJSON(t, tc.raw), tc.kind)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr types.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Message, tc.wantErr)
		})
	}
}

func TestBuildIdentityMap(t *testing.T) {
	t.Run("array form with fallbacks", func(t *testing.T) {
		v := parseJSON(t, `[
			{"id": "user_1", "name": "Alice", "email": "alice@example.com"},
			{"id": "user_2", "email": "bob@example.com"},
			{"id": "user_3"},
			{"name": "no id, skipped"}
		]`)

		identity := BuildIdentityMap(v)
		require.Len(t, identity, 3)
		assert.Equal(t, "Alice", identity["user_1"].Name)
		assert.Equal(t, "bob@example.com", identity["user_2"].Name)
		assert.Equal(t, "user_3", identity["user_3"].Name)
	})

	t.Run("map form", func(t *testing.T) {
		v := parseJSON(t, `{"user_1": {"name": "Alice", "organization": "Acme"}}`)

		identity := BuildIdentityMap(v)
		require.Len(t, identity, 1)
		assert.Equal(t, "Alice", identity["user_1"].Name)
		assert.Equal(t, "Acme", identity["user_1"].Organization)
	})
}
