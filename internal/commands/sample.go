package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyunseo/orgusage/internal/sample"
	"github.com/hyunseo/orgusage/internal/types"
)

func NewSampleCommand() *cobra.Command {
	var (
		kind  string
		count int
		out   string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a sample dataset",
		Long:  `Generate a synthetic usage or userinfo dataset in the upload format, for trying the tool without real exports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dataset map[string]any
			switch types.DataKind(kind) {
			case types.KindUser, types.KindProject:
				dataset = sample.Dataset(types.DataKind(kind), count)
			case types.KindIdentity:
				dataset = sample.Identity(count)
			default:
				return fmt.Errorf("unknown kind %q, use user, project or userinfo", kind)
			}

			data, err := json.MarshalIndent(dataset, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s sample to %s\n", kind, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "user", "Dataset kind (user, project, userinfo)")
	cmd.Flags().IntVarP(&count, "count", "c", 50, "Approximate record count")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	return cmd
}
