package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunseo/orgusage/internal/types"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	blob, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	assert.Empty(t, blob.Identity)
	assert.Empty(t, blob.Budgets)
	assert.Equal(t, "system", blob.Preferences.Theme)
	assert.Equal(t, "USD", blob.Preferences.Currency)
	assert.Empty(t, blob.AdminAPIKey)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	blob := DefaultBlob()
	blob.Identity["user_1"] = types.IdentityInfo{Name: "Alice", Email: "alice@example.com"}
	blob.Budgets["proj_1"] = types.Budget{Amount: 25, Currency: "USD"}
	blob.Preferences.Theme = "dark"
	blob.AdminAPIKey = "sk-admin-test"

	require.NoError(t, Save(path, blob))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, blob, loaded)
}

func TestSaveFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, Save(path, DefaultBlob()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFillsNilMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"settings": {"theme": "dark"}}`), 0o600))

	blob, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, blob.Identity)
	assert.NotNil(t, blob.Budgets)
	assert.Equal(t, "dark", blob.Preferences.Theme)
}
