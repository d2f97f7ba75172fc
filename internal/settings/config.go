package settings

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime knobs: where the server listens, which
// administrative API it talks to, and where rate-limit templates live.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	OrgAPIBase  string `yaml:"org_api_base"`
	AdminAPIKey string `yaml:"admin_api_key"`
	TemplateDir string `yaml:"template_dir"`
}

func defaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		ListenAddr:  ":8000",
		OrgAPIBase:  "https://api.openai.com",
		TemplateDir: filepath.Join(home, ".orgusage", "templates"),
	}
}

// ConfigPath is ~/.orgusage/config.yaml.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".orgusage", "config.yaml")
	}
	return filepath.Join(home, ".orgusage", "config.yaml")
}

// LoadConfig layers defaults, the YAML config file and environment
// variables (a local .env file is honored). Missing file is fine.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if v := os.Getenv("ORGUSAGE_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ORGUSAGE_ORG_API_BASE"); v != "" {
		cfg.OrgAPIBase = v
	}
	if v := os.Getenv("ORGUSAGE_ADMIN_KEY"); v != "" {
		cfg.AdminAPIKey = v
	}
	if v := os.Getenv("ORGUSAGE_TEMPLATE_DIR"); v != "" {
		cfg.TemplateDir = v
	}

	return cfg, nil
}
