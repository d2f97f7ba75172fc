package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyunseo/orgusage/internal/settings"
	"github.com/hyunseo/orgusage/internal/types"
)

func NewBudgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage per-project budgets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List configured budgets",
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := settings.Load(settings.DefaultPath())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			if len(blob.Budgets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No budgets configured.")
				return nil
			}
			for projectID, b := range blob.Budgets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %.2f %s\n", projectID, b.Amount, b.Currency)
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <project-id> <amount>",
		Short: "Set a project budget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("amount must be a positive number")
			}

			path := settings.DefaultPath()
			blob, err := settings.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			if blob.Budgets == nil {
				blob.Budgets = map[string]types.Budget{}
			}
			blob.Budgets[args[0]] = types.Budget{Amount: amount, Currency: blob.Preferences.Currency}
			if err := settings.Save(path, blob); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget for %s set to %.2f %s\n",
				args[0], amount, blob.Preferences.Currency)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <project-id>",
		Short: "Remove a project budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := settings.DefaultPath()
			blob, err := settings.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			delete(blob.Budgets, args[0])
			if err := settings.Save(path, blob); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget for %s removed\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, set, remove)
	return cmd
}
