package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyunseo/orgusage/internal/orgapi"
	"github.com/hyunseo/orgusage/internal/output"
)

func NewRateLimitsCommand() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "ratelimits",
		Short: "Inspect and set project rate limits",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.orgusage/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show debug information")

	cmd.AddCommand(
		newRateLimitsListCommand(&configPath, &debug),
		newRateLimitsSetCommand(&configPath, &debug),
		newRateLimitsTemplateCommand(&configPath, &debug),
	)

	return cmd
}

func newRateLimitsListCommand(configPath *string, debug *bool) *cobra.Command {
	var (
		projectID string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rate limits for one project or the whole organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newOrgClient(*configPath, newLogger(*debug))
			if err != nil {
				return err
			}

			if projectID != "" {
				limits, err := client.ProjectRateLimits(cmd.Context(), projectID)
				if err != nil {
					return fmt.Errorf("failed to fetch rate limits: %w", err)
				}
				if format == "json" {
					return printJSON(cmd, limits)
				}
				fmt.Fprint(cmd.OutOrStdout(), output.RateLimitTable(limits))
				return nil
			}

			projects, err := client.ListProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}
			all, err := client.AllRateLimits(cmd.Context(), projects)
			if err != nil {
				return fmt.Errorf("failed to sweep rate limits: %w", err)
			}
			if format == "json" {
				return printJSON(cmd, all)
			}
			fmt.Fprint(cmd.OutOrStdout(), output.AllRateLimitsTable(all))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project ID (omit to sweep all projects)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")

	return cmd
}

func newRateLimitsSetCommand(configPath *string, debug *bool) *cobra.Command {
	var (
		projectID   string
		rateLimitID string
		rpm         int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a rate limit's max requests per minute",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectID == "" || rateLimitID == "" {
				return fmt.Errorf("--project and --id are required")
			}
			if rpm <= 0 {
				return fmt.Errorf("--rpm must be positive")
			}

			client, _, err := newOrgClient(*configPath, newLogger(*debug))
			if err != nil {
				return err
			}

			updated, err := client.UpdateRateLimit(cmd.Context(), projectID, rateLimitID, rpm)
			if err != nil {
				return fmt.Errorf("failed to update rate limit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s) to %d requests/min\n",
				updated.ID, updated.Model, updated.MaxRequestsPer1Minute)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project ID")
	cmd.Flags().StringVar(&rateLimitID, "id", "", "Rate limit ID")
	cmd.Flags().IntVar(&rpm, "rpm", 0, "Max requests per minute")

	return cmd
}

func newRateLimitsTemplateCommand(configPath *string, debug *bool) *cobra.Command {
	var (
		projectID string
		name      string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Save, show or apply rate-limit templates",
	}

	save := &cobra.Command{
		Use:   "save",
		Short: "Save a project's current limits as a template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectID == "" {
				return fmt.Errorf("--project is required")
			}
			client, cfg, err := newOrgClient(*configPath, newLogger(*debug))
			if err != nil {
				return err
			}
			limits, err := client.ProjectRateLimits(cmd.Context(), projectID)
			if err != nil {
				return fmt.Errorf("failed to fetch rate limits: %w", err)
			}
			if err := orgapi.SaveTemplate(cfg.TemplateDir, name, limits); err != nil {
				return fmt.Errorf("failed to save template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %q (%d limits) to %s\n",
				name, len(limits), orgapi.TemplatePath(cfg.TemplateDir, name))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show a saved template",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := newOrgClient(*configPath, newLogger(*debug))
			if err != nil {
				return err
			}
			limits, err := orgapi.LoadTemplate(cfg.TemplateDir, name)
			if err != nil {
				return fmt.Errorf("failed to load template: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), output.RateLimitTable(limits))
			return nil
		},
	}

	apply := &cobra.Command{
		Use:   "apply",
		Short: "Apply a saved template to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectID == "" {
				return fmt.Errorf("--project is required")
			}
			client, cfg, err := newOrgClient(*configPath, newLogger(*debug))
			if err != nil {
				return err
			}
			limits, err := orgapi.LoadTemplate(cfg.TemplateDir, name)
			if err != nil {
				return fmt.Errorf("failed to load template: %w", err)
			}
			applied, err := client.ApplyTemplate(cmd.Context(), projectID, limits)
			if err != nil {
				return fmt.Errorf("failed to apply template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied template %q to %s (%d limits changed)\n",
				name, projectID, applied)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&projectID, "project", "p", "", "Project ID")
	cmd.PersistentFlags().StringVarP(&name, "name", "n", "default", "Template name")
	cmd.AddCommand(save, show, apply)

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
