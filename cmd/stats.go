package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jackchuka/depsweep/internal/config"
	"github.com/jackchuka/depsweep/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <path>",
	Short: "Show file counts and sizes for a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ExpandHome(args[0])

		st, err := newWalker().Cache().DirectoryStats(cmd.Context(), path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return report.JSON(out, st)
		}
		return report.Stats(out, path, st)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
