package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/haul/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove everything stored in the output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			opts := app.CleanOptions{ConfigPath: configPath}
			if cmd.Flags().Changed("output") {
				output, _ := cmd.Flags().GetString("output")
				opts.Output = &output
			}
			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory or bucket URL to clean")

	return cmd
}
