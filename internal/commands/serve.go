package commands

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyunseo/orgusage/internal/server"
	"github.com/hyunseo/orgusage/internal/settings"
	"github.com/hyunseo/orgusage/internal/store"
)

func NewServeCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		Long:  `Serve the upload, summary, export, budget and organization admin endpoints over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = settings.ConfigPath()
			}
			cfg, err := settings.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			logger, err := zap.NewProduction()
			if debug {
				logger, err = zap.NewDevelopment()
			}
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer logger.Sync()

			st := store.New(logger)
			blob, err := settings.Load(settings.DefaultPath())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			st.Restore(blob.Identity, blob.Budgets)
			if cfg.AdminAPIKey == "" {
				cfg.AdminAPIKey = blob.AdminAPIKey
			}

			srv := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: server.New(st, cfg, logger).Handler(),
			}

			go func() {
				<-cmd.Context().Done()
				srv.Close()
			}()

			logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.orgusage/config.yaml)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Verbose logging")

	return cmd
}
