package commands

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hyunseo/orgusage/internal/orgapi"
	"github.com/hyunseo/orgusage/internal/settings"
	"github.com/hyunseo/orgusage/internal/store"
)

// inputFiles are the JSON exports a command reads. Any of them may be
// empty; the store works with whatever is loaded.
type inputFiles struct {
	userFile     string
	projectFile  string
	identityFile string
}

func (f inputFiles) empty() bool {
	return f.userFile == "" && f.projectFile == "" && f.identityFile == ""
}

// loadStore builds a store from persisted settings plus the given
// files. Each file goes through the same classify/validate path as a
// dashboard upload.
func loadStore(files inputFiles, logger *zap.Logger) (*store.Store, error) {
	st := store.New(logger)

	blob, err := settings.Load(settings.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	st.Restore(blob.Identity, blob.Budgets)

	for _, path := range []string{files.identityFile, files.userFile, files.projectFile} {
		if path == "" {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if _, err := st.LoadUpload(raw); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	return st, nil
}

// newOrgClient wires config, a persisted admin key and the logger into
// an admin API client. The config file's key wins over the settings
// blob so operators can override per machine.
func newOrgClient(configPath string, logger *zap.Logger) (*orgapi.Client, *settings.Config, error) {
	if configPath == "" {
		configPath = settings.ConfigPath()
	}
	cfg, err := settings.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.AdminAPIKey == "" {
		blob, err := settings.Load(settings.DefaultPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load settings: %w", err)
		}
		cfg.AdminAPIKey = blob.AdminAPIKey
	}

	client := orgapi.NewClient(cfg.OrgAPIBase, cfg.AdminAPIKey, orgapi.WithLogger(logger))
	return client, cfg, nil
}

func newLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
