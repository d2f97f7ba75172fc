// Package settings persists user preferences between runs: the
// identity map, budgets, display preferences and the admin API key.
// The blob is written and restored wholesale; nothing diffs it.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hyunseo/orgusage/internal/types"
)

type Preferences struct {
	Theme      string `json:"theme"`
	Language   string `json:"language"`
	DateFormat string `json:"date_format"`
	Currency   string `json:"currency"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:      "system",
		Language:   "en",
		DateFormat: "2006-01-02",
		Currency:   "USD",
	}
}

type Blob struct {
	Identity    types.IdentityMap       `json:"userinfo"`
	Budgets     map[string]types.Budget `json:"budgets"`
	Preferences Preferences             `json:"settings"`
	AdminAPIKey string                  `json:"admin_api_key,omitempty"`
}

func DefaultBlob() *Blob {
	return &Blob{
		Identity:    types.IdentityMap{},
		Budgets:     map[string]types.Budget{},
		Preferences: DefaultPreferences(),
	}
}

// DefaultPath is ~/.orgusage/settings.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".orgusage", "settings.json")
	}
	return filepath.Join(home, ".orgusage", "settings.json")
}

// Load reads the blob from disk. A missing file yields defaults, not
// an error; corrupt contents do error so saved budgets are not lost
// silently.
func Load(path string) (*Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultBlob(), nil
		}
		return nil, err
	}

	blob := DefaultBlob()
	if err := json.Unmarshal(data, blob); err != nil {
		return nil, err
	}
	if blob.Identity == nil {
		blob.Identity = types.IdentityMap{}
	}
	if blob.Budgets == nil {
		blob.Budgets = map[string]types.Budget{}
	}
	return blob, nil
}

// Save writes the blob wholesale. The file may hold an admin key, so
// keep it owner-readable only.
func Save(path string, blob *Blob) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
