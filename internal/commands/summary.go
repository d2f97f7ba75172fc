package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyunseo/orgusage/internal/output"
)

func NewSummaryCommand() *cobra.Command {
	var (
		userFile     string
		projectFile  string
		identityFile string
		format       string
		noColor      bool
		chart        bool
		maxWidth     int
		debug        bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate usage exports into a summary report",
		Long:  `Load user and project usage exports, resolve identities and print the aggregated summary as a table, JSON or CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := inputFiles{
				userFile:     userFile,
				projectFile:  projectFile,
				identityFile: identityFile,
			}
			if files.empty() {
				return fmt.Errorf("no input files given, use --user and/or --project")
			}

			st, err := loadStore(files, newLogger(debug))
			if err != nil {
				return err
			}

			formatter := output.NewFormatter(output.FormatterOptions{
				Format:   format,
				NoColor:  noColor,
				Chart:    chart,
				MaxWidth: maxWidth,
			})

			report, err := formatter.FormatSummary(st.Summary())
			if err != nil {
				return fmt.Errorf("failed to format summary: %w", err)
			}
			fmt.Print(report)

			if overages := st.Overages(); len(overages) > 0 && format == "table" {
				rendered, err := formatter.FormatOverages(overages)
				if err != nil {
					return err
				}
				fmt.Print(rendered)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userFile, "user", "u", "", "Per-user usage export (JSON)")
	cmd.Flags().StringVarP(&projectFile, "project", "p", "", "Per-project usage export (JSON)")
	cmd.Flags().StringVar(&identityFile, "userinfo", "", "Identity mapping file (JSON)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, csv)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&chart, "chart", false, "Render a daily cost chart above the tables")
	cmd.Flags().IntVar(&maxWidth, "max-width", 0, "Maximum table width (0 = auto)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Show debug information")

	return cmd
}
