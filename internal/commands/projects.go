package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyunseo/orgusage/internal/output"
	"github.com/hyunseo/orgusage/internal/settings"
)

func NewProjectsCommand() *cobra.Command {
	var (
		configPath string
		format     string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List organization projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newOrgClient(configPath, newLogger(debug))
			if err != nil {
				return err
			}

			projects, err := client.ListProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			if format == "json" {
				data, err := json.MarshalIndent(projects, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), output.ProjectListTable(projects))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.orgusage/config.yaml)")
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show debug information")

	cmd.AddCommand(newProjectsUserinfoCommand(&configPath, &debug))

	return cmd
}

// userinfo fetches the member listing and persists it as the identity
// map summaries resolve display names from.
func newProjectsUserinfoCommand(configPath *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "userinfo",
		Short: "Fetch members and save the identity mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newOrgClient(*configPath, newLogger(*debug))
			if err != nil {
				return err
			}

			identity, err := client.BuildIdentityMap(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to build identity map: %w", err)
			}

			path := settings.DefaultPath()
			blob, err := settings.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			blob.Identity = identity
			if err := settings.Save(path, blob); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved identity mapping for %d users to %s\n", len(identity), path)
			return nil
		},
	}
}
