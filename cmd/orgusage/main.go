package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyunseo/orgusage/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "orgusage",
		Short: "Organization usage dashboard and admin tool",
		Long:  `Aggregate organization usage exports into per-user, per-project and per-model summaries, serve the dashboard API and administer project rate limits.`,
	}

	rootCmd.AddCommand(
		commands.NewSummaryCommand(),
		commands.NewSampleCommand(),
		commands.NewServeCommand(),
		commands.NewWatchCommand(),
		commands.NewProjectsCommand(),
		commands.NewRateLimitsCommand(),
		commands.NewBudgetCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
