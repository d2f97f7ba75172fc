// Package orgapi is the client for the organization administrative
// API: project and member listings plus rate-limit administration.
// Usage files are uploaded by hand; only this metadata is fetched.
package orgapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyunseo/orgusage/internal/types"
)

const (
	defaultTimeout = 10 * time.Second
	// Sweeping rate limits hits one endpoint per project and can take
	// a while on large organizations.
	sweepTimeout = 120 * time.Second

	listLimit = 100
)

type Client struct {
	baseURL    string
	adminKey   string
	client     *http.Client
	logger     *zap.Logger
	maxWorkers int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

func NewClient(baseURL, adminKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminKey:   adminKey,
		client:     &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
		maxWorkers: 10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OrgUser is one entry from the organization member listing.
type OrgUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (c *Client) ListProjects(ctx context.Context) ([]types.ProjectInfo, error) {
	var resp struct {
		Data []types.ProjectInfo `json:"data"`
	}
	path := fmt.Sprintf("/v1/organization/projects?limit=%d", listLimit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]OrgUser, error) {
	var resp struct {
		Data []OrgUser `json:"data"`
	}
	path := fmt.Sprintf("/v1/organization/users?limit=%d", listLimit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// BuildIdentityMap fetches the member listing and shapes it into the
// identity map the aggregator resolves display names from.
func (c *Client) BuildIdentityMap(ctx context.Context) (types.IdentityMap, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	identity := make(types.IdentityMap, len(users))
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		name := u.Name
		if name == "" {
			name = u.Email
		}
		if name == "" {
			name = u.ID
		}
		identity[u.ID] = types.IdentityInfo{Name: name, Email: u.Email}
	}
	return identity, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if c.adminKey == "" {
		return types.ErrMissingAdminKey
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.adminKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("admin API request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return types.APIError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(detail))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
