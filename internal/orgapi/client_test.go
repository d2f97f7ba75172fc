package orgapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunseo/orgusage/internal/types"
)

func TestListProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/organization/projects", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer sk-admin-test", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"id": "proj_1", "name": "Research"},
				{"id": "proj_2", "name": "Ops"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-admin-test")
	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Research", projects[0].Name)
}

func TestMissingAdminKey(t *testing.T) {
	client := NewClient("http://localhost:0", "")
	_, err := client.ListProjects(context.Background())
	assert.ErrorIs(t, err, types.ErrMissingAdminKey)
}

func TestAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "insufficient permissions"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-admin-test")
	_, err := client.ListUsers(context.Background())
	require.Error(t, err)

	var apiErr types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Contains(t, apiErr.Detail, "insufficient permissions")
}

func TestBuildIdentityMapFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/organization/users", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"id": "user_1", "name": "Alice", "email": "alice@example.com"},
				{"id": "user_2", "email": "bob@example.com"},
				{"id": "user_3"},
				{"name": "no id"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-admin-test")
	identity, err := client.BuildIdentityMap(context.Background())
	require.NoError(t, err)
	require.Len(t, identity, 3)
	assert.Equal(t, "Alice", identity["user_1"].Name)
	assert.Equal(t, "bob@example.com", identity["user_2"].Name)
	assert.Equal(t, "user_3", identity["user_3"].Name)
}

func TestUpdateRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/organization/projects/proj_1/rate_limits/rl_1", r.URL.Path)

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 500, body["max_requests_per_1_minute"])

		json.NewEncoder(w).Encode(RateLimit{ID: "rl_1", Model: "gpt-4", MaxRequestsPer1Minute: 500})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-admin-test")
	updated, err := client.UpdateRateLimit(context.Background(), "proj_1", "rl_1", 500)
	require.NoError(t, err)
	assert.Equal(t, 500, updated.MaxRequestsPer1Minute)
}

func TestAllRateLimitsSkipsFailedProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/organization/projects/proj_bad/rate_limits" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []RateLimit{{ID: "rl_1", Model: "gpt-4", MaxRequestsPer1Minute: 100}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-admin-test", WithWorkers(2))
	all, err := client.AllRateLimits(context.Background(), []types.ProjectInfo{
		{ID: "proj_1"}, {ID: "proj_bad"}, {ID: "proj_2"},
	})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Contains(t, all, "proj_1")
	assert.Contains(t, all, "proj_2")
	assert.NotContains(t, all, "proj_bad")
}

func TestTemplatesSaveLoad(t *testing.T) {
	dir := t.TempDir()
	limits := []RateLimit{
		{ID: "rl_1", Model: "gpt-4", MaxRequestsPer1Minute: 100},
		{ID: "rl_2", Model: "gpt-3.5-turbo", MaxRequestsPer1Minute: 500},
	}

	require.NoError(t, SaveTemplate(dir, "prod", limits))

	loaded, err := LoadTemplate(dir, "prod")
	require.NoError(t, err)
	assert.Equal(t, limits, loaded)

	_, err = LoadTemplate(dir, "missing")
	assert.ErrorIs(t, err, types.ErrTemplateNotFound)
}

func TestApplyTemplate(t *testing.T) {
	updates := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []RateLimit{
					{ID: "rl_1", Model: "gpt-4", MaxRequestsPer1Minute: 100},
					{ID: "rl_2", Model: "gpt-3.5-turbo", MaxRequestsPer1Minute: 500},
				},
			})
			return
		}

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		updates[r.URL.Path] = body["max_requests_per_1_minute"]
		json.NewEncoder(w).Encode(RateLimit{})
	}))
	defer srv.Close()

	// gpt-4 differs and gets updated; gpt-3.5-turbo already matches;
	// gpt-4-turbo does not exist on the project.
	template := []RateLimit{
		{Model: "gpt-4", MaxRequestsPer1Minute: 200},
		{Model: "gpt-3.5-turbo", MaxRequestsPer1Minute: 500},
		{Model: "gpt-4-turbo", MaxRequestsPer1Minute: 50},
	}

	client := NewClient(srv.URL, "sk-admin-test")
	applied, err := client.ApplyTemplate(context.Background(), "proj_1", template)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t,
		map[string]int{"/v1/organization/projects/proj_1/rate_limits/rl_1": 200},
		updates,
	)
}
