package orgapi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyunseo/orgusage/internal/types"
)

// Rate-limit templates are plain JSON files so they can be reviewed
// and versioned outside the tool.

func TemplatePath(dir, name string) string {
	return filepath.Join(dir, fmt.Sprintf("rate_limit_template_%s.json", name))
}

func SaveTemplate(dir, name string, limits []RateLimit) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(limits, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(TemplatePath(dir, name), data, 0o644)
}

func LoadTemplate(dir, name string) ([]RateLimit, error) {
	data, err := os.ReadFile(TemplatePath(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrTemplateNotFound
		}
		return nil, err
	}

	var limits []RateLimit
	if err := json.Unmarshal(data, &limits); err != nil {
		return nil, err
	}
	return limits, nil
}

// ApplyTemplate sets a project's per-model request limits to the
// template values. Models the project does not expose are skipped;
// limits already at the template value are left alone.
func (c *Client) ApplyTemplate(ctx context.Context, projectID string, limits []RateLimit) (int, error) {
	current, err := c.ProjectRateLimits(ctx, projectID)
	if err != nil {
		return 0, err
	}

	byModel := make(map[string]RateLimit, len(current))
	for _, rl := range current {
		byModel[rl.Model] = rl
	}

	applied := 0
	for _, want := range limits {
		have, ok := byModel[want.Model]
		if !ok || have.MaxRequestsPer1Minute == want.MaxRequestsPer1Minute {
			continue
		}
		if _, err := c.UpdateRateLimit(ctx, projectID, have.ID, want.MaxRequestsPer1Minute); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}
