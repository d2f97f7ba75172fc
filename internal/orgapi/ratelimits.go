package orgapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/hyunseo/orgusage/internal/types"
)

// RateLimit is one per-model limit entry on a project.
type RateLimit struct {
	ID                    string `json:"id"`
	Model                 string `json:"model"`
	MaxRequestsPer1Minute int    `json:"max_requests_per_1_minute"`
	MaxTokensPer1Minute   int    `json:"max_tokens_per_1_minute,omitempty"`
}

func (c *Client) ProjectRateLimits(ctx context.Context, projectID string) ([]RateLimit, error) {
	var resp struct {
		Data []RateLimit `json:"data"`
	}
	path := fmt.Sprintf("/v1/organization/projects/%s/rate_limits?limit=%d", projectID, listLimit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) UpdateRateLimit(ctx context.Context, projectID, rateLimitID string, maxRequestsPerMinute int) (*RateLimit, error) {
	body := map[string]int{"max_requests_per_1_minute": maxRequestsPerMinute}
	path := fmt.Sprintf("/v1/organization/projects/%s/rate_limits/%s", projectID, rateLimitID)

	var updated RateLimit
	if err := c.doJSON(ctx, http.MethodPost, path, body, &updated); err != nil {
		return nil, err
	}
	c.logger.Info("rate limit updated",
		zap.String("project_id", projectID),
		zap.String("rate_limit_id", rateLimitID),
		zap.Int("max_requests_per_1_minute", maxRequestsPerMinute),
	)
	return &updated, nil
}

// AllRateLimits sweeps every listed project with a small worker pool.
// Projects that fail to fetch are skipped rather than failing the
// whole sweep; the dashboard still wants the rest.
func (c *Client) AllRateLimits(ctx context.Context, projects []types.ProjectInfo) (map[string][]RateLimit, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	type result struct {
		projectID string
		limits    []RateLimit
		err       error
	}

	jobs := make(chan types.ProjectInfo, len(projects))
	results := make(chan result, len(projects))

	workers := c.maxWorkers
	if workers > len(projects) {
		workers = len(projects)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					limits, err := c.ProjectRateLimits(ctx, p.ID)
					results <- result{projectID: p.ID, limits: limits, err: err}
				}
			}
		}()
	}

	for _, p := range projects {
		jobs <- p
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make(map[string][]RateLimit, len(projects))
	for res := range results {
		if res.err != nil {
			c.logger.Warn("rate limit fetch failed",
				zap.String("project_id", res.projectID),
				zap.Error(res.err),
			)
			continue
		}
		all[res.projectID] = res.limits
	}

	if err := ctx.Err(); err != nil && len(all) == 0 {
		return nil, err
	}
	return all, nil
}
