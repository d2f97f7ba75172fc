package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "https://api.openai.com", cfg.OrgAPIBase)
	assert.Empty(t, cfg.AdminAPIKey)
	assert.NotEmpty(t, cfg.TemplateDir)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "listen_addr: \":9000\"\norg_api_base: https://api.example.com\nadmin_api_key: sk-admin-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "https://api.example.com", cfg.OrgAPIBase)
	assert.Equal(t, "sk-admin-file", cfg.AdminAPIKey)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9000\"\n"), 0o600))

	t.Setenv("ORGUSAGE_ADDR", ":7000")
	t.Setenv("ORGUSAGE_ADMIN_KEY", "sk-admin-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "sk-admin-env", cfg.AdminAPIKey)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [broken"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
