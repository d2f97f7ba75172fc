package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyunseo/orgusage/internal/monitor"
)

func NewWatchCommand() *cobra.Command {
	var (
		userFile     string
		projectFile  string
		identityFile string
		noColor      bool
		interval     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch export files and live-update the summary",
		Long:  `Open a terminal view that re-aggregates and re-renders the summary whenever the watched export files change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := inputFiles{
				userFile:     userFile,
				projectFile:  projectFile,
				identityFile: identityFile,
			}
			if files.empty() {
				return fmt.Errorf("no input files given, use --user and/or --project")
			}

			m := monitor.New(monitor.Options{
				UserFile:     userFile,
				ProjectFile:  projectFile,
				IdentityFile: identityFile,
				NoColor:      noColor,
				Interval:     interval,
			})
			return m.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&userFile, "user", "u", "", "Per-user usage export (JSON)")
	cmd.Flags().StringVarP(&projectFile, "project", "p", "", "Per-project usage export (JSON)")
	cmd.Flags().StringVar(&identityFile, "userinfo", "", "Identity mapping file (JSON)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 30*time.Second, "Fallback refresh interval")

	return cmd
}
